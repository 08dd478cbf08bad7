package model

import (
	"fmt"
	"time"
)

// Region is a geographic grouping of sites. Regions may nest.
type Region struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ParentID  string    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Site is a physical location (data center, office, POP)
type Site struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	RegionID  string    `json:"region_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Device is a piece of hardware installed at a site
type Device struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SiteID    string    `json:"site_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VirtualMachine is a virtualized host
type VirtualMachine struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Interface is a network interface belonging to either a device or a
// virtual machine, never both.
type Interface struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	DeviceID         string    `json:"device_id,omitempty"`
	VirtualMachineID string    `json:"virtual_machine_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Normalize validates the interface's host association
func (i *Interface) Normalize() error {
	if i.DeviceID != "" && i.VirtualMachineID != "" {
		return fmt.Errorf("interface cannot belong to both a device and a virtual machine")
	}
	if i.DeviceID == "" && i.VirtualMachineID == "" {
		return fmt.Errorf("interface must belong to a device or a virtual machine")
	}
	return nil
}
