package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
)

// ListServices returns services matching the filter, ordered by name
func (ss *SQLiteStorage) ListServices(f filter.ServiceFilter) ([]model.Service, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var c cond
	c.addIn("id", f.IDIn)
	c.addIn("name", f.Names)
	c.addIn("protocol", f.Protocols)
	c.addInInts("port", f.Ports)
	c.addIn("device_id", f.DeviceIDs)
	c.addInSelect("device_id", "devices", "name", f.DeviceNames)
	c.addIn("virtual_machine_id", f.VMIDs)
	c.addInSelect("virtual_machine_id", "virtual_machines", "name", f.VMNames)

	rows, err := ss.db.Query(`
		SELECT id, name, protocol, port, device_id, virtual_machine_id, description,
		       created_at, updated_at
		FROM services`+c.where()+` ORDER BY name, protocol, port`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("querying services: %w", err)
	}
	defer rows.Close()

	var services []model.Service
	for rows.Next() {
		var s model.Service
		var device, vm nullString
		err := rows.Scan(&s.ID, &s.Name, &s.Protocol, &s.Port, &device, &vm, &s.Description,
			&s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning service: %w", err)
		}
		s.DeviceID = device.value()
		s.VirtualMachineID = vm.value()
		services = append(services, s)
	}
	return services, rows.Err()
}

// GetService retrieves a service by ID
func (ss *SQLiteStorage) GetService(id string) (*model.Service, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	var s model.Service
	var device, vm nullString
	err := ss.db.QueryRow(`
		SELECT id, name, protocol, port, device_id, virtual_machine_id, description,
		       created_at, updated_at
		FROM services WHERE id = ?
	`, id).Scan(&s.ID, &s.Name, &s.Protocol, &s.Port, &device, &vm, &s.Description,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying service: %w", err)
	}
	s.DeviceID = device.value()
	s.VirtualMachineID = vm.value()
	return &s, nil
}

// CreateService adds a new service
func (ss *SQLiteStorage) CreateService(s *model.Service) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := s.Normalize(); err != nil {
		return err
	}

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := ss.db.Exec(`
		INSERT INTO services (id, name, protocol, port, device_id, virtual_machine_id,
		                      description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.Protocol, s.Port, nullStr(s.DeviceID), nullStr(s.VirtualMachineID),
		s.Description, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting service: %w", err)
	}
	return nil
}

// UpdateService updates an existing service
func (ss *SQLiteStorage) UpdateService(s *model.Service) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := s.Normalize(); err != nil {
		return err
	}

	s.UpdatedAt = time.Now()

	result, err := ss.db.Exec(`
		UPDATE services
		SET name = ?, protocol = ?, port = ?, device_id = ?, virtual_machine_id = ?,
		    description = ?, updated_at = ?
		WHERE id = ?
	`, s.Name, s.Protocol, s.Port, nullStr(s.DeviceID), nullStr(s.VirtualMachineID),
		s.Description, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("updating service: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// DeleteService removes a service
func (ss *SQLiteStorage) DeleteService(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.deleteByID("services", id, ErrServiceNotFound)
}
