package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
)

// ListRIRs returns RIRs matching the filter, ordered by name
func (ss *SQLiteStorage) ListRIRs(f filter.RIRFilter) ([]model.RIR, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var c cond
	c.addIn("id", f.IDIn)
	c.addIn("name", f.Names)
	c.addIn("slug", f.Slugs)
	if f.IsPrivate != nil {
		c.add("is_private = ?", boolToInt(*f.IsPrivate))
	}

	rows, err := ss.db.Query(`
		SELECT id, name, slug, is_private, created_at, updated_at
		FROM rirs`+c.where()+` ORDER BY name`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("querying RIRs: %w", err)
	}
	defer rows.Close()

	var rirs []model.RIR
	for rows.Next() {
		var r model.RIR
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug, &r.IsPrivate, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning RIR: %w", err)
		}
		rirs = append(rirs, r)
	}
	return rirs, rows.Err()
}

// GetRIR retrieves an RIR by ID
func (ss *SQLiteStorage) GetRIR(id string) (*model.RIR, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var r model.RIR
	err := ss.db.QueryRow(`
		SELECT id, name, slug, is_private, created_at, updated_at
		FROM rirs WHERE id = ?
	`, id).Scan(&r.ID, &r.Name, &r.Slug, &r.IsPrivate, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRIRNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying RIR: %w", err)
	}
	return &r, nil
}

// CreateRIR adds a new RIR
func (ss *SQLiteStorage) CreateRIR(r *model.RIR) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO rirs (id, name, slug, is_private, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.Slug, boolToInt(r.IsPrivate), r.CreatedAt, r.UpdatedAt)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting RIR: %w", err)
	}
	return nil
}

// UpdateRIR updates an existing RIR
func (ss *SQLiteStorage) UpdateRIR(r *model.RIR) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	r.UpdatedAt = time.Now()

	result, err := ss.db.Exec(`
		UPDATE rirs
		SET name = ?, slug = ?, is_private = ?, updated_at = ?
		WHERE id = ?
	`, r.Name, r.Slug, boolToInt(r.IsPrivate), r.UpdatedAt, r.ID)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("updating RIR: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRIRNotFound
	}
	return nil
}

// DeleteRIR removes an RIR along with its aggregates
func (ss *SQLiteStorage) DeleteRIR(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("rirs", id, ErrRIRNotFound)
}

// ListAggregates returns aggregates matching the filter, ordered by prefix
func (ss *SQLiteStorage) ListAggregates(f filter.AggregateFilter) ([]model.Aggregate, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var c cond
	c.addIn("id", f.IDIn)
	if f.Family != 0 {
		c.add("family = ?", f.Family)
	}
	if f.Prefix.IsValid() {
		c.add("prefix = ?", f.Prefix.String())
	}
	c.addIn("rir_id", f.RIRIDs)
	c.addInSelect("rir_id", "rirs", "slug", f.RIRSlugs)
	c.addIn("date_added", f.DateAdded)

	rows, err := ss.db.Query(`
		SELECT id, family, prefix, rir_id, date_added, description, created_at, updated_at
		FROM aggregates`+c.where()+` ORDER BY family, prefix`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("querying aggregates: %w", err)
	}
	defer rows.Close()

	var aggregates []model.Aggregate
	for rows.Next() {
		var a model.Aggregate
		if err := rows.Scan(&a.ID, &a.Family, &a.Prefix, &a.RIRID, &a.DateAdded, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning aggregate: %w", err)
		}
		aggregates = append(aggregates, a)
	}
	return aggregates, rows.Err()
}

// GetAggregate retrieves an aggregate by ID
func (ss *SQLiteStorage) GetAggregate(id string) (*model.Aggregate, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var a model.Aggregate
	err := ss.db.QueryRow(`
		SELECT id, family, prefix, rir_id, date_added, description, created_at, updated_at
		FROM aggregates WHERE id = ?
	`, id).Scan(&a.ID, &a.Family, &a.Prefix, &a.RIRID, &a.DateAdded, &a.Description, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAggregateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying aggregate: %w", err)
	}
	return &a, nil
}

// CreateAggregate adds a new aggregate. The prefix may not overlap an
// existing aggregate of the same family.
func (ss *SQLiteStorage) CreateAggregate(a *model.Aggregate) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := a.Normalize(); err != nil {
		return err
	}
	if err := ss.checkAggregateOverlap(a); err != nil {
		return err
	}

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO aggregates (id, family, prefix, rir_id, date_added, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Family, a.Prefix, a.RIRID, a.DateAdded, a.Description, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting aggregate: %w", err)
	}
	return nil
}

// UpdateAggregate updates an existing aggregate
func (ss *SQLiteStorage) UpdateAggregate(a *model.Aggregate) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := a.Normalize(); err != nil {
		return err
	}
	if err := ss.checkAggregateOverlap(a); err != nil {
		return err
	}

	a.UpdatedAt = time.Now()

	result, err := ss.db.Exec(`
		UPDATE aggregates
		SET family = ?, prefix = ?, rir_id = ?, date_added = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, a.Family, a.Prefix, a.RIRID, a.DateAdded, a.Description, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("updating aggregate: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrAggregateNotFound
	}
	return nil
}

// DeleteAggregate removes an aggregate
func (ss *SQLiteStorage) DeleteAggregate(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("aggregates", id, ErrAggregateNotFound)
}

// checkAggregateOverlap rejects an aggregate whose prefix overlaps another
// aggregate. Aggregates partition the registry space, so even a sub- or
// super-network of an existing one is an error.
func (ss *SQLiteStorage) checkAggregateOverlap(a *model.Aggregate) error {
	target, err := netip.ParsePrefix(a.Prefix)
	if err != nil {
		return fmt.Errorf("invalid aggregate prefix %q: %w", a.Prefix, err)
	}

	rows, err := ss.db.Query("SELECT id, prefix FROM aggregates WHERE family = ?", a.Family)
	if err != nil {
		return fmt.Errorf("querying aggregates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, prefix string
		if err := rows.Scan(&id, &prefix); err != nil {
			return fmt.Errorf("scanning aggregate: %w", err)
		}
		if id == a.ID {
			continue
		}
		existing, err := netip.ParsePrefix(prefix)
		if err != nil {
			continue
		}
		if existing.Overlaps(target) {
			return fmt.Errorf("aggregate %s overlaps existing aggregate %s", a.Prefix, prefix)
		}
	}
	return rows.Err()
}
