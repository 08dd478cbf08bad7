package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
)

// ListVRFs returns VRFs matching the filter, ordered by name
func (ss *SQLiteStorage) ListVRFs(f filter.VRFFilter) ([]model.VRF, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var c cond
	c.addIn("id", f.IDIn)
	c.addIn("name", f.Names)
	c.addIn("rd", f.RDs)
	if f.EnforceUnique != nil {
		c.add("enforce_unique = ?", boolToInt(*f.EnforceUnique))
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		c.add("(name LIKE ? OR rd LIKE ? OR description LIKE ?)", pattern, pattern, pattern)
	}

	rows, err := ss.db.Query(`
		SELECT id, name, rd, enforce_unique, description, created_at, updated_at
		FROM vrfs`+c.where()+` ORDER BY name`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("querying VRFs: %w", err)
	}
	defer rows.Close()

	var vrfs []model.VRF
	for rows.Next() {
		var v model.VRF
		if err := rows.Scan(&v.ID, &v.Name, &v.RD, &v.EnforceUnique, &v.Description, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning VRF: %w", err)
		}
		vrfs = append(vrfs, v)
	}
	return vrfs, rows.Err()
}

// GetVRF retrieves a VRF by ID
func (ss *SQLiteStorage) GetVRF(id string) (*model.VRF, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.getVRF(id)
}

func (ss *SQLiteStorage) getVRF(id string) (*model.VRF, error) {
	var v model.VRF
	err := ss.db.QueryRow(`
		SELECT id, name, rd, enforce_unique, description, created_at, updated_at
		FROM vrfs WHERE id = ?
	`, id).Scan(&v.ID, &v.Name, &v.RD, &v.EnforceUnique, &v.Description, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVRFNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying VRF: %w", err)
	}
	return &v, nil
}

// CreateVRF adds a new VRF. The route distinguisher must be unique.
func (ss *SQLiteStorage) CreateVRF(v *model.VRF) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO vrfs (id, name, rd, enforce_unique, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.Name, v.RD, boolToInt(v.EnforceUnique), v.Description, v.CreatedAt, v.UpdatedAt)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting VRF: %w", err)
	}
	return nil
}

// UpdateVRF updates an existing VRF
func (ss *SQLiteStorage) UpdateVRF(v *model.VRF) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	v.UpdatedAt = time.Now()

	result, err := ss.db.Exec(`
		UPDATE vrfs
		SET name = ?, rd = ?, enforce_unique = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, v.Name, v.RD, boolToInt(v.EnforceUnique), v.Description, v.UpdatedAt, v.ID)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("updating VRF: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrVRFNotFound
	}
	return nil
}

// DeleteVRF removes a VRF. Prefixes and addresses inside it keep existing
// with their VRF reference cleared.
func (ss *SQLiteStorage) DeleteVRF(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("vrfs", id, ErrVRFNotFound)
}
