package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
)

// ListRoles returns roles matching the filter, ordered by weight then name
func (ss *SQLiteStorage) ListRoles(f filter.RoleFilter) ([]model.Role, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var c cond
	c.addIn("id", f.IDIn)
	c.addIn("name", f.Names)
	c.addIn("slug", f.Slugs)

	rows, err := ss.db.Query(`
		SELECT id, name, slug, weight, created_at, updated_at
		FROM roles`+c.where()+` ORDER BY weight, name`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("querying roles: %w", err)
	}
	defer rows.Close()

	var roles []model.Role
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug, &r.Weight, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// GetRole retrieves a role by ID
func (ss *SQLiteStorage) GetRole(id string) (*model.Role, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var r model.Role
	err := ss.db.QueryRow(`
		SELECT id, name, slug, weight, created_at, updated_at
		FROM roles WHERE id = ?
	`, id).Scan(&r.ID, &r.Name, &r.Slug, &r.Weight, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying role: %w", err)
	}
	return &r, nil
}

// CreateRole adds a new role
func (ss *SQLiteStorage) CreateRole(r *model.Role) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Weight == 0 {
		r.Weight = 1000
	}

	_, err := ss.db.Exec(`
		INSERT INTO roles (id, name, slug, weight, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.Slug, r.Weight, r.CreatedAt, r.UpdatedAt)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting role: %w", err)
	}
	return nil
}

// UpdateRole updates an existing role
func (ss *SQLiteStorage) UpdateRole(r *model.Role) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	r.UpdatedAt = time.Now()

	result, err := ss.db.Exec(`
		UPDATE roles
		SET name = ?, slug = ?, weight = ?, updated_at = ?
		WHERE id = ?
	`, r.Name, r.Slug, r.Weight, r.UpdatedAt, r.ID)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// DeleteRole removes a role
func (ss *SQLiteStorage) DeleteRole(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("roles", id, ErrRoleNotFound)
}
