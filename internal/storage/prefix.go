package storage

import (
	"database/sql"
	"fmt"
	"net/netip"
	"time"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/netcontain"
)

// ListPrefixes returns prefixes matching the filter. Scalar fields narrow
// the SQL query; the containment relations are applied afterwards since
// CIDR math lives outside the database.
func (ss *SQLiteStorage) ListPrefixes(f filter.PrefixFilter) ([]model.Prefix, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var c cond
	c.addIn("id", f.IDIn)
	if f.Family != 0 {
		c.add("family = ?", f.Family)
	}
	if f.MaskLength >= 0 {
		c.add("mask_length = ?", f.MaskLength)
	}
	if f.IsPool != nil {
		c.add("is_pool = ?", boolToInt(*f.IsPool))
	}
	c.addIn("vrf_id", f.VRFIDs)
	c.addInSelect("vrf_id", "vrfs", "rd", f.VRFRDs)
	c.addIn("site_id", f.SiteIDs)
	c.addInSelect("site_id", "sites", "slug", f.SiteSlugs)
	c.addIn("role_id", f.RoleIDs)
	c.addInSelect("role_id", "roles", "slug", f.RoleSlugs)
	c.addIn("vlan_id", f.VLANIDs)
	c.addIn("status", f.Statuses)
	if len(f.VLANVIDs) > 0 {
		c.clauses = append(c.clauses,
			fmt.Sprintf("vlan_id IN (SELECT id FROM vlans WHERE vid IN (%s))", placeholders(len(f.VLANVIDs))))
		for _, v := range f.VLANVIDs {
			c.args = append(c.args, v)
		}
	}
	// Region scoping goes through the prefix's site
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
		c.add("(prefix LIKE ? OR description LIKE ?)", pattern, pattern)
	}

	rows, err := ss.db.Query(`
		SELECT id, family, prefix, mask_length, site_id, vrf_id, vlan_id, role_id,
		       status, is_pool, description, created_at, updated_at
		FROM prefixes`+c.where()+` ORDER BY family, mask_length, prefix`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("querying prefixes: %w", err)
	}
	defer rows.Close()

	prefixes, err := scanPrefixes(rows)
	if err != nil {
		return nil, err
	}

	prefixes = filterByContainment(prefixes, netcontain.Within, f.Within)
	prefixes = filterByContainment(prefixes, netcontain.WithinInclude, f.WithinInclude)
	prefixes = filterByContainment(prefixes, netcontain.Contains, f.Contains)

	return prefixes, nil
}

func scanPrefixes(rows *sql.Rows) ([]model.Prefix, error) {
	var prefixes []model.Prefix
	for rows.Next() {
		var p model.Prefix
		var site, vrf, vlan, role nullString
		err := rows.Scan(&p.ID, &p.Family, &p.Prefix, &p.MaskLength, &site, &vrf, &vlan, &role,
			&p.Status, &p.IsPool, &p.Description, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning prefix: %w", err)
		}
		p.SiteID = site.value()
		p.VRFID = vrf.value()
		p.VLANID = vlan.value()
		p.RoleID = role.value()
		prefixes = append(prefixes, p)
	}
	return prefixes, rows.Err()
}

// filterByContainment keeps the prefixes standing in the given relation to
// the target. An invalid target means the relation was not requested.
func filterByContainment(prefixes []model.Prefix, rel netcontain.Relation, target netip.Prefix) []model.Prefix {
	if !target.IsValid() {
		return prefixes
	}
	var out []model.Prefix
	for _, p := range prefixes {
		candidate, err := netip.ParsePrefix(p.Prefix)
		if err != nil {
			continue
		}
		if netcontain.Matches(rel, candidate, target) {
			out = append(out, p)
		}
	}
	return out
}

// GetPrefix retrieves a prefix by ID
func (ss *SQLiteStorage) GetPrefix(id string) (*model.Prefix, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, family, prefix, mask_length, site_id, vrf_id, vlan_id, role_id,
		       status, is_pool, description, created_at, updated_at
		FROM prefixes WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying prefix: %w", err)
	}
	defer rows.Close()

	prefixes, err := scanPrefixes(rows)
	if err != nil {
		return nil, err
	}
	if len(prefixes) == 0 {
		return nil, ErrPrefixNotFound
	}
	return &prefixes[0], nil
}

// CreatePrefix adds a new prefix. In a VRF with enforce_unique set, the
// network may appear only once.
func (ss *SQLiteStorage) CreatePrefix(p *model.Prefix) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := p.Normalize(); err != nil {
		return err
	}
	if err := ss.checkPrefixUnique(p); err != nil {
		return err
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO prefixes (id, family, prefix, mask_length, site_id, vrf_id, vlan_id, role_id,
		                      status, is_pool, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Family, p.Prefix, p.MaskLength, nullStr(p.SiteID), nullStr(p.VRFID),
		nullStr(p.VLANID), nullStr(p.RoleID), p.Status, boolToInt(p.IsPool), p.Description,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting prefix: %w", err)
	}
	return nil
}

// UpdatePrefix updates an existing prefix
func (ss *SQLiteStorage) UpdatePrefix(p *model.Prefix) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := p.Normalize(); err != nil {
		return err
	}
	if err := ss.checkPrefixUnique(p); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()

	result, err := ss.db.Exec(`
		UPDATE prefixes
		SET family = ?, prefix = ?, mask_length = ?, site_id = ?, vrf_id = ?, vlan_id = ?,
		    role_id = ?, status = ?, is_pool = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, p.Family, p.Prefix, p.MaskLength, nullStr(p.SiteID), nullStr(p.VRFID), nullStr(p.VLANID),
		nullStr(p.RoleID), p.Status, boolToInt(p.IsPool), p.Description, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("updating prefix: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrPrefixNotFound
	}
	return nil
}

// DeletePrefix removes a prefix
func (ss *SQLiteStorage) DeletePrefix(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("prefixes", id, ErrPrefixNotFound)
}

// checkPrefixUnique rejects a duplicate network inside a VRF that enforces
// uniqueness. Prefixes outside any VRF are never checked.
func (ss *SQLiteStorage) checkPrefixUnique(p *model.Prefix) error {
	if p.VRFID == "" {
		return nil
	}
	vrf, err := ss.getVRF(p.VRFID)
	if err != nil {
		return err
	}
	if !vrf.EnforceUnique {
		return nil
	}

	var count int
	err = ss.db.QueryRow(`
		SELECT COUNT(*) FROM prefixes WHERE vrf_id = ? AND prefix = ? AND id != ?
	`, p.VRFID, p.Prefix, p.ID).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking prefix uniqueness: %w", err)
	}
	if count > 0 {
		return ErrDuplicatePrefix
	}
	return nil
}
