package model

import (
	"fmt"
	"time"
)

// VLANGroup is a scope for VLAN IDs, optionally tied to a site
type VLANGroup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	SiteID    string    `json:"site_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VLAN represents an 802.1Q VLAN, identified by its numeric tag within a group
type VLAN struct {
	ID        string    `json:"id"`
	VID       int       `json:"vid"`
	Name      string    `json:"name"`
	SiteID    string    `json:"site_id,omitempty"`
	GroupID   string    `json:"group_id,omitempty"`
	RoleID    string    `json:"role_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize validates the VLAN tag and status
func (v *VLAN) Normalize() error {
	if v.VID < 1 || v.VID > 4094 {
		return fmt.Errorf("invalid VLAN ID %d: must be 1-4094", v.VID)
	}
	if v.Status == "" {
		v.Status = VLANStatusActive
	}
	if !IsValidVLANStatus(v.Status) {
		return fmt.Errorf("invalid VLAN status %q", v.Status)
	}
	return nil
}

// Service represents a TCP or UDP service bound to a device or virtual machine
type Service struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Protocol         string    `json:"protocol"`
	Port             int       `json:"port"`
	DeviceID         string    `json:"device_id,omitempty"`
	VirtualMachineID string    `json:"virtual_machine_id,omitempty"`
	Description      string    `json:"description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Normalize validates the service protocol, port, and host association.
// A service must be bound to a device or a virtual machine, not both.
func (s *Service) Normalize() error {
	if !IsValidProtocol(s.Protocol) {
		return fmt.Errorf("invalid protocol %q", s.Protocol)
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 1-65535", s.Port)
	}
	if s.DeviceID != "" && s.VirtualMachineID != "" {
		return fmt.Errorf("service cannot be bound to both a device and a virtual machine")
	}
	return nil
}
