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

// ListIPAddresses returns addresses matching the filter. The parent and
// address matches are applied after the SQL query since they need CIDR math.
func (ss *SQLiteStorage) ListIPAddresses(f filter.IPAddressFilter) ([]model.IPAddress, error) {
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
	c.addIn("vrf_id", f.VRFIDs)
	c.addInSelect("vrf_id", "vrfs", "rd", f.VRFRDs)
	c.addIn("interface_id", f.InterfaceIDs)
	c.addInSelect("interface_id", "interfaces", "name", f.InterfaceNames)
	c.addIn("dns_name", f.DNSNames)
	c.addIn("status", f.Statuses)
	c.addIn("role", f.Roles)
	if f.AssignedToInterface != nil {
		if *f.AssignedToInterface {
			c.add("interface_id IS NOT NULL")
		} else {
			c.add("interface_id IS NULL")
		}
	}
	// Device and VM scoping go through the assigned interface
	if len(f.DeviceIDs) > 0 {
		c.clauses = append(c.clauses,
			fmt.Sprintf("interface_id IN (SELECT id FROM interfaces WHERE device_id IN (%s))", placeholders(len(f.DeviceIDs))))
		for _, v := range f.DeviceIDs {
			c.args = append(c.args, v)
		}
	}
	if len(f.DeviceNames) > 0 {
		c.clauses = append(c.clauses,
			fmt.Sprintf("interface_id IN (SELECT id FROM interfaces WHERE device_id IN (SELECT id FROM devices WHERE name IN (%s)))", placeholders(len(f.DeviceNames))))
		for _, v := range f.DeviceNames {
			c.args = append(c.args, v)
		}
	}
	if len(f.VMIDs) > 0 {
		c.clauses = append(c.clauses,
			fmt.Sprintf("interface_id IN (SELECT id FROM interfaces WHERE virtual_machine_id IN (%s))", placeholders(len(f.VMIDs))))
		for _, v := range f.VMIDs {
			c.args = append(c.args, v)
		}
	}
	if len(f.VMNames) > 0 {
		c.clauses = append(c.clauses,
			fmt.Sprintf("interface_id IN (SELECT id FROM interfaces WHERE virtual_machine_id IN (SELECT id FROM virtual_machines WHERE name IN (%s)))", placeholders(len(f.VMNames))))
		for _, v := range f.VMNames {
			c.args = append(c.args, v)
		}
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		c.add("(address LIKE ? OR dns_name LIKE ? OR description LIKE ?)", pattern, pattern, pattern)
	}

	rows, err := ss.db.Query(`
		SELECT id, family, address, mask_length, vrf_id, interface_id, status, role,
		       dns_name, description, dns_checked_at, dns_ok, created_at, updated_at
		FROM ip_addresses`+c.where()+` ORDER BY family, address`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("querying IP addresses: %w", err)
	}
	defer rows.Close()

	addresses, err := scanIPAddresses(rows)
	if err != nil {
		return nil, err
	}

	if f.Parent.IsValid() {
		addresses = filterByParent(addresses, f.Parent)
	}
	if len(f.Addresses) > 0 {
		addresses = filterByAddress(addresses, f.Addresses)
	}

	return addresses, nil
}

func scanIPAddresses(rows *sql.Rows) ([]model.IPAddress, error) {
	var addresses []model.IPAddress
	for rows.Next() {
		var ip model.IPAddress
		var vrf, iface, role, dnsName nullString
		var checkedAt sql.NullTime
		var dnsOK sql.NullBool
		err := rows.Scan(&ip.ID, &ip.Family, &ip.Address, &ip.MaskLength, &vrf, &iface,
			&ip.Status, &role, &dnsName, &ip.Description, &checkedAt, &dnsOK,
			&ip.CreatedAt, &ip.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning IP address: %w", err)
		}
		ip.VRFID = vrf.value()
		ip.InterfaceID = iface.value()
		ip.Role = role.value()
		ip.DNSName = dnsName.value()
		if checkedAt.Valid {
			t := checkedAt.Time
			ip.DNSCheckedAt = &t
		}
		if dnsOK.Valid {
			b := dnsOK.Bool
			ip.DNSOK = &b
		}
		addresses = append(addresses, ip)
	}
	return addresses, rows.Err()
}

// filterByParent keeps addresses whose host falls inside the parent network
func filterByParent(addresses []model.IPAddress, parent netip.Prefix) []model.IPAddress {
	var out []model.IPAddress
	for _, ip := range addresses {
		host, err := ip.Host()
		if err != nil {
			continue
		}
		if netcontain.ContainsAddr(parent, host) {
			out = append(out, ip)
		}
	}
	return out
}

// filterByAddress keeps addresses matching any of the requested values. A
// value with a mask must match host and mask exactly; a bare host matches
// under any mask.
func filterByAddress(addresses []model.IPAddress, matches []filter.AddressMatch) []model.IPAddress {
	var out []model.IPAddress
	for _, ip := range addresses {
		p, err := netip.ParsePrefix(ip.Address)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if m.HasMask {
				if p == m.Prefix {
					out = append(out, ip)
					break
				}
			} else if p.Addr() == m.Addr {
				out = append(out, ip)
				break
			}
		}
	}
	return out
}

// GetIPAddress retrieves an address by ID
func (ss *SQLiteStorage) GetIPAddress(id string) (*model.IPAddress, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, family, address, mask_length, vrf_id, interface_id, status, role,
		       dns_name, description, dns_checked_at, dns_ok, created_at, updated_at
		FROM ip_addresses WHERE id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying IP address: %w", err)
	}
	defer rows.Close()

	addresses, err := scanIPAddresses(rows)
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, ErrIPAddressNotFound
	}
	return &addresses[0], nil
}

// CreateIPAddress adds a new address. In a VRF with enforce_unique set, a
// host address may appear only once.
func (ss *SQLiteStorage) CreateIPAddress(ip *model.IPAddress) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := ip.Normalize(); err != nil {
		return err
	}
	if err := ss.checkAddressUnique(ip); err != nil {
		return err
	}

	now := time.Now()
	ip.CreatedAt = now
	ip.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO ip_addresses (id, family, address, mask_length, vrf_id, interface_id,
		                          status, role, dns_name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ip.ID, ip.Family, ip.Address, ip.MaskLength, nullStr(ip.VRFID), nullStr(ip.InterfaceID),
		ip.Status, ip.Role, ip.DNSName, ip.Description, ip.CreatedAt, ip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting IP address: %w", err)
	}
	return nil
}

// UpdateIPAddress updates an existing address
func (ss *SQLiteStorage) UpdateIPAddress(ip *model.IPAddress) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := ip.Normalize(); err != nil {
		return err
	}
	if err := ss.checkAddressUnique(ip); err != nil {
		return err
	}

	ip.UpdatedAt = time.Now()

	result, err := ss.db.Exec(`
		UPDATE ip_addresses
		SET family = ?, address = ?, mask_length = ?, vrf_id = ?, interface_id = ?,
		    status = ?, role = ?, dns_name = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, ip.Family, ip.Address, ip.MaskLength, nullStr(ip.VRFID), nullStr(ip.InterfaceID),
		ip.Status, ip.Role, ip.DNSName, ip.Description, ip.UpdatedAt, ip.ID)
	if err != nil {
		return fmt.Errorf("updating IP address: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrIPAddressNotFound
	}
	return nil
}

// DeleteIPAddress removes an address
func (ss *SQLiteStorage) DeleteIPAddress(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("ip_addresses", id, ErrIPAddressNotFound)
}

// UpdateIPAddressDNSStatus records the outcome of a forward DNS check
func (ss *SQLiteStorage) UpdateIPAddressDNSStatus(id string, checkedAt time.Time, ok bool) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	result, err := ss.db.Exec(`
		UPDATE ip_addresses SET dns_checked_at = ?, dns_ok = ? WHERE id = ?
	`, checkedAt, boolToInt(ok), id)
	if err != nil {
		return fmt.Errorf("updating DNS status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrIPAddressNotFound
	}
	return nil
}

// checkAddressUnique rejects a duplicate host address inside a VRF that
// enforces uniqueness. The mask is not part of the identity: 10.0.0.1/24
// and 10.0.0.1/25 are the same host.
func (ss *SQLiteStorage) checkAddressUnique(ip *model.IPAddress) error {
	if ip.VRFID == "" {
		return nil
	}
	vrf, err := ss.getVRF(ip.VRFID)
	if err != nil {
		return err
	}
	if !vrf.EnforceUnique {
		return nil
	}

	host, err := ip.Host()
	if err != nil {
		return err
	}

	rows, err := ss.db.Query(`
		SELECT id, address FROM ip_addresses WHERE vrf_id = ? AND id != ?
	`, ip.VRFID, ip.ID)
	if err != nil {
		return fmt.Errorf("checking address uniqueness: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, address string
		if err := rows.Scan(&id, &address); err != nil {
			return fmt.Errorf("scanning IP address: %w", err)
		}
		p, err := netip.ParsePrefix(address)
		if err != nil {
			continue
		}
		if p.Addr() == host {
			return ErrDuplicateAddress
		}
	}
	return rows.Err()
}
