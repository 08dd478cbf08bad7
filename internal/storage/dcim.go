package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/martinsuchenak/ipamd/internal/model"
)

// ListRegions returns all regions ordered by name
func (ss *SQLiteStorage) ListRegions() ([]model.Region, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, name, slug, parent_id, created_at, updated_at
		FROM regions ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying regions: %w", err)
	}
	defer rows.Close()

	var regions []model.Region
	for rows.Next() {
		var r model.Region
		var parent nullString
		if err := rows.Scan(&r.ID, &r.Name, &r.Slug, &parent, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning region: %w", err)
		}
		r.ParentID = parent.value()
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

// GetRegion retrieves a region by ID
func (ss *SQLiteStorage) GetRegion(id string) (*model.Region, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var r model.Region
	var parent nullString
	err := ss.db.QueryRow(`
		SELECT id, name, slug, parent_id, created_at, updated_at
		FROM regions WHERE id = ?
	`, id).Scan(&r.ID, &r.Name, &r.Slug, &parent, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRegionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying region: %w", err)
	}
	r.ParentID = parent.value()
	return &r, nil
}

// CreateRegion adds a new region
func (ss *SQLiteStorage) CreateRegion(r *model.Region) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO regions (id, name, slug, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.Slug, nullStr(r.ParentID), r.CreatedAt, r.UpdatedAt)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting region: %w", err)
	}
	return nil
}

// DeleteRegion removes a region
func (ss *SQLiteStorage) DeleteRegion(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("regions", id, ErrRegionNotFound)
}

// ListSites returns all sites ordered by name
func (ss *SQLiteStorage) ListSites() ([]model.Site, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, name, slug, region_id, created_at, updated_at
		FROM sites ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sites: %w", err)
	}
	defer rows.Close()

	var sites []model.Site
	for rows.Next() {
		var s model.Site
		var region nullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &region, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning site: %w", err)
		}
		s.RegionID = region.value()
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// GetSite retrieves a site by ID
func (ss *SQLiteStorage) GetSite(id string) (*model.Site, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var s model.Site
	var region nullString
	err := ss.db.QueryRow(`
		SELECT id, name, slug, region_id, created_at, updated_at
		FROM sites WHERE id = ?
	`, id).Scan(&s.ID, &s.Name, &s.Slug, &region, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSiteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying site: %w", err)
	}
	s.RegionID = region.value()
	return &s, nil
}

// CreateSite adds a new site
func (ss *SQLiteStorage) CreateSite(s *model.Site) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO sites (id, name, slug, region_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.Slug, nullStr(s.RegionID), s.CreatedAt, s.UpdatedAt)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting site: %w", err)
	}
	return nil
}

// DeleteSite removes a site
func (ss *SQLiteStorage) DeleteSite(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("sites", id, ErrSiteNotFound)
}

// ListDevices returns all devices ordered by name
func (ss *SQLiteStorage) ListDevices() ([]model.Device, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, name, site_id, created_at, updated_at
		FROM devices ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []model.Device
	for rows.Next() {
		var d model.Device
		var site nullString
		if err := rows.Scan(&d.ID, &d.Name, &site, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		d.SiteID = site.value()
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// GetDevice retrieves a device by ID
func (ss *SQLiteStorage) GetDevice(id string) (*model.Device, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var d model.Device
	var site nullString
	err := ss.db.QueryRow(`
		SELECT id, name, site_id, created_at, updated_at
		FROM devices WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &site, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying device: %w", err)
	}
	d.SiteID = site.value()
	return &d, nil
}

// CreateDevice adds a new device
func (ss *SQLiteStorage) CreateDevice(d *model.Device) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO devices (id, name, site_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, d.ID, d.Name, nullStr(d.SiteID), d.CreatedAt, d.UpdatedAt)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// DeleteDevice removes a device
func (ss *SQLiteStorage) DeleteDevice(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("devices", id, ErrDeviceNotFound)
}

// ListVirtualMachines returns all virtual machines ordered by name
func (ss *SQLiteStorage) ListVirtualMachines() ([]model.VirtualMachine, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, name, created_at, updated_at
		FROM virtual_machines ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying virtual machines: %w", err)
	}
	defer rows.Close()

	var vms []model.VirtualMachine
	for rows.Next() {
		var vm model.VirtualMachine
		if err := rows.Scan(&vm.ID, &vm.Name, &vm.CreatedAt, &vm.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning virtual machine: %w", err)
		}
		vms = append(vms, vm)
	}
	return vms, rows.Err()
}

// GetVirtualMachine retrieves a virtual machine by ID
func (ss *SQLiteStorage) GetVirtualMachine(id string) (*model.VirtualMachine, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var vm model.VirtualMachine
	err := ss.db.QueryRow(`
		SELECT id, name, created_at, updated_at
		FROM virtual_machines WHERE id = ?
	`, id).Scan(&vm.ID, &vm.Name, &vm.CreatedAt, &vm.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVirtualMachineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying virtual machine: %w", err)
	}
	return &vm, nil
}

// CreateVirtualMachine adds a new virtual machine
func (ss *SQLiteStorage) CreateVirtualMachine(vm *model.VirtualMachine) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	vm.CreatedAt = now
	vm.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO virtual_machines (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, vm.ID, vm.Name, vm.CreatedAt, vm.UpdatedAt)
	if isUniqueErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("inserting virtual machine: %w", err)
	}
	return nil
}

// DeleteVirtualMachine removes a virtual machine
func (ss *SQLiteStorage) DeleteVirtualMachine(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("virtual_machines", id, ErrVirtualMachineNotFound)
}

// ListInterfaces returns all interfaces ordered by name
func (ss *SQLiteStorage) ListInterfaces() ([]model.Interface, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	rows, err := ss.db.Query(`
		SELECT id, name, device_id, virtual_machine_id, created_at, updated_at
		FROM interfaces ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying interfaces: %w", err)
	}
	defer rows.Close()

	var ifaces []model.Interface
	for rows.Next() {
		var i model.Interface
		var device, vm nullString
		if err := rows.Scan(&i.ID, &i.Name, &device, &vm, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning interface: %w", err)
		}
		i.DeviceID = device.value()
		i.VirtualMachineID = vm.value()
		ifaces = append(ifaces, i)
	}
	return ifaces, rows.Err()
}

// GetInterface retrieves an interface by ID
func (ss *SQLiteStorage) GetInterface(id string) (*model.Interface, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var i model.Interface
	var device, vm nullString
	err := ss.db.QueryRow(`
		SELECT id, name, device_id, virtual_machine_id, created_at, updated_at
		FROM interfaces WHERE id = ?
	`, id).Scan(&i.ID, &i.Name, &device, &vm, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInterfaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying interface: %w", err)
	}
	i.DeviceID = device.value()
	i.VirtualMachineID = vm.value()
	return &i, nil
}

// CreateInterface adds a new interface
func (ss *SQLiteStorage) CreateInterface(i *model.Interface) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := i.Normalize(); err != nil {
		return err
	}

	now := time.Now()
	i.CreatedAt = now
	i.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO interfaces (id, name, device_id, virtual_machine_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, i.ID, i.Name, nullStr(i.DeviceID), nullStr(i.VirtualMachineID), i.CreatedAt, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting interface: %w", err)
	}
	return nil
}

// DeleteInterface removes an interface
func (ss *SQLiteStorage) DeleteInterface(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("interfaces", id, ErrInterfaceNotFound)
}

// deleteByID removes one row by primary key, mapping a missing row to the
// entity's sentinel error. The table name is always a compile-time constant.
func (ss *SQLiteStorage) deleteByID(table, id string, notFound error) error {
	result, err := ss.db.Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", table, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound
	}
	return nil
}
