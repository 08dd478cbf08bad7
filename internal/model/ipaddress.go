package model

import (
	"fmt"
	"net/netip"
	"time"
)

// IPAddress represents an individual host address with its mask, e.g.
// "10.0.0.1/24". The mask records the subnet context of the assignment, so
// two entries may share a host address with different masks.
type IPAddress struct {
	ID           string     `json:"id"`
	Family       int        `json:"family"`
	Address      string     `json:"address"` // host/mask, e.g. "10.0.0.1/24"
	MaskLength   int        `json:"mask_length"`
	VRFID        string     `json:"vrf_id,omitempty"`
	InterfaceID  string     `json:"interface_id,omitempty"`
	Status       string     `json:"status"`
	Role         string     `json:"role,omitempty"`
	DNSName      string     `json:"dns_name,omitempty"`
	Description  string     `json:"description,omitempty"`
	DNSCheckedAt *time.Time `json:"dns_checked_at,omitempty"`
	DNSOK        *bool      `json:"dns_ok,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Normalize validates the address, deriving Family and MaskLength. Unlike
// Prefix, host bits are expected here; the mask is mandatory.
func (ip *IPAddress) Normalize() error {
	p, err := netip.ParsePrefix(ip.Address)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", ip.Address, err)
	}
	ip.Address = p.String()
	ip.Family = familyOf(p.Addr())
	ip.MaskLength = p.Bits()

	if ip.Status == "" {
		ip.Status = IPAddressStatusActive
	}
	if !IsValidIPAddressStatus(ip.Status) {
		return fmt.Errorf("invalid IP address status %q", ip.Status)
	}
	if ip.Role != "" && !IsValidIPAddressRole(ip.Role) {
		return fmt.Errorf("invalid IP address role %q", ip.Role)
	}
	return nil
}

// Host returns the host address without its mask
func (ip *IPAddress) Host() (netip.Addr, error) {
	p, err := netip.ParsePrefix(ip.Address)
	if err != nil {
		return netip.Addr{}, err
	}
	return p.Addr(), nil
}
