package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
)

// ListVLANGroups returns VLAN groups matching the filter, ordered by name
func (ss *SQLiteStorage) ListVLANGroups(f filter.VLANGroupFilter) ([]model.VLANGroup, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var c cond
	c.addIn("id", f.IDIn)
	c.addIn("name", f.Names)
	c.addIn("slug", f.Slugs)
	c.addIn("site_id", f.SiteIDs)
	c.addInSelect("site_id", "sites", "slug", f.SiteSlugs)
	if len(f.RegionIDs) > 0 {
		c.clauses = append(c.clauses,
			fmt.Sprintf("site_id IN (SELECT id FROM sites WHERE region_id IN (%s))", placeholders(len(f.RegionIDs))))
		for _, v := range f.RegionIDs {
			c.args = append(c.args, v)
		}
	}
	if len(f.RegionSlugs) > 0 {
		c.clauses = append(c.clauses,
			fmt.Sprintf("site_id IN (SELECT id FROM sites WHERE region_id IN (SELECT id FROM regions WHERE slug IN (%s)))", placeholders(len(f.RegionSlugs))))
		for _, v := range f.RegionSlugs {
			c.args = append(c.args, v)
		}
	}

	rows, err := ss.db.Query(`
		SELECT id, name, slug, site_id, created_at, updated_at
		FROM vlan_groups`+c.where()+` ORDER BY name`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("querying VLAN groups: %w", err)
	}
	defer rows.Close()

	var groups []model.VLANGroup
	for rows.Next() {
		var g model.VLANGroup
		var site nullString
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug, &site, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning VLAN group: %w", err)
		}
		g.SiteID = site.value()
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetVLANGroup retrieves a VLAN group by ID
func (ss *SQLiteStorage) GetVLANGroup(id string) (*model.VLANGroup, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var g model.VLANGroup
	var site nullString
	err := ss.db.QueryRow(`
		SELECT id, name, slug, site_id, created_at, updated_at
		FROM vlan_groups WHERE id = ?
	`, id).Scan(&g.ID, &g.Name, &g.Slug, &site, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVLANGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying VLAN group: %w", err)
	}
	g.SiteID = site.value()
	return &g, nil
}

// CreateVLANGroup adds a new VLAN group
func (ss *SQLiteStorage) CreateVLANGroup(g *model.VLANGroup) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO vlan_groups (id, name, slug, site_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, g.ID, g.Name, g.Slug, nullStr(g.SiteID), g.CreatedAt, g.UpdatedAt)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting VLAN group: %w", err)
	}
	return nil
}

// UpdateVLANGroup updates an existing VLAN group
func (ss *SQLiteStorage) UpdateVLANGroup(g *model.VLANGroup) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	g.UpdatedAt = time.Now()

	result, err := ss.db.Exec(`
		UPDATE vlan_groups
		SET name = ?, slug = ?, site_id = ?, updated_at = ?
		WHERE id = ?
	`, g.Name, g.Slug, nullStr(g.SiteID), g.UpdatedAt, g.ID)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("updating VLAN group: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrVLANGroupNotFound
	}
	return nil
}

// DeleteVLANGroup removes a VLAN group
func (ss *SQLiteStorage) DeleteVLANGroup(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("vlan_groups", id, ErrVLANGroupNotFound)
}

// ListVLANs returns VLANs matching the filter, ordered by VID
func (ss *SQLiteStorage) ListVLANs(f filter.VLANFilter) ([]model.VLAN, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var c cond
	c.addIn("id", f.IDIn)
	c.addIn("name", f.Names)
	c.addInInts("vid", f.VIDs)
	c.addIn("site_id", f.SiteIDs)
	c.addInSelect("site_id", "sites", "slug", f.SiteSlugs)
	c.addIn("group_id", f.GroupIDs)
	c.addInSelect("group_id", "vlan_groups", "slug", f.GroupSlugs)
	c.addIn("role_id", f.RoleIDs)
	c.addInSelect("role_id", "roles", "slug", f.RoleSlugs)
	c.addIn("status", f.Statuses)
	if len(f.RegionIDs) > 0 {
		c.clauses = append(c.clauses,
			fmt.Sprintf("site_id IN (SELECT id FROM sites WHERE region_id IN (%s))", placeholders(len(f.RegionIDs))))
		for _, v := range f.RegionIDs {
			c.args = append(c.args, v)
		}
	}
	if len(f.RegionSlugs) > 0 {
		c.clauses = append(c.clauses,
			fmt.Sprintf("site_id IN (SELECT id FROM sites WHERE region_id IN (SELECT id FROM regions WHERE slug IN (%s)))", placeholders(len(f.RegionSlugs))))
		for _, v := range f.RegionSlugs {
			c.args = append(c.args, v)
		}
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		c.add("name LIKE ?", pattern)
	}

	rows, err := ss.db.Query(`
		SELECT id, vid, name, site_id, group_id, role_id, status, created_at, updated_at
		FROM vlans`+c.where()+` ORDER BY vid, name`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("querying VLANs: %w", err)
	}
	defer rows.Close()

	var vlans []model.VLAN
	for rows.Next() {
		var v model.VLAN
		var site, group, role nullString
		if err := rows.Scan(&v.ID, &v.VID, &v.Name, &site, &group, &role, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning VLAN: %w", err)
		}
		v.SiteID = site.value()
		v.GroupID = group.value()
		v.RoleID = role.value()
		vlans = append(vlans, v)
	}
	return vlans, rows.Err()
}

// GetVLAN retrieves a VLAN by ID
func (ss *SQLiteStorage) GetVLAN(id string) (*model.VLAN, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var v model.VLAN
	var site, group, role nullString
	err := ss.db.QueryRow(`
		SELECT id, vid, name, site_id, group_id, role_id, status, created_at, updated_at
		FROM vlans WHERE id = ?
	`, id).Scan(&v.ID, &v.VID, &v.Name, &site, &group, &role, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVLANNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying VLAN: %w", err)
	}
	v.SiteID = site.value()
	v.GroupID = group.value()
	v.RoleID = role.value()
	return &v, nil
}

// CreateVLAN adds a new VLAN. The VID must be unique within its group.
func (ss *SQLiteStorage) CreateVLAN(v *model.VLAN) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := v.Normalize(); err != nil {
		return err
	}

	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO vlans (id, vid, name, site_id, group_id, role_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.VID, v.Name, nullStr(v.SiteID), nullStr(v.GroupID), nullStr(v.RoleID),
		v.Status, v.CreatedAt, v.UpdatedAt)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting VLAN: %w", err)
	}
	return nil
}

// UpdateVLAN updates an existing VLAN
func (ss *SQLiteStorage) UpdateVLAN(v *model.VLAN) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := v.Normalize(); err != nil {
		return err
	}

	v.UpdatedAt = time.Now()

	result, err := ss.db.Exec(`
		UPDATE vlans
		SET vid = ?, name = ?, site_id = ?, group_id = ?, role_id = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, v.VID, v.Name, nullStr(v.SiteID), nullStr(v.GroupID), nullStr(v.RoleID),
		v.Status, v.UpdatedAt, v.ID)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("updating VLAN: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrVLANNotFound
	}
	return nil
}

// DeleteVLAN removes a VLAN
func (ss *SQLiteStorage) DeleteVLAN(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("vlans", id, ErrVLANNotFound)
}
