package model

import (
	"fmt"
	"net/netip"
	"time"
)

// VRF represents a virtual routing and forwarding instance. The route
// distinguisher is a free-form identifier; uniqueness of contained prefixes
// is only enforced when EnforceUnique is set.
type VRF struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	RD            string    `json:"rd"`
	EnforceUnique bool      `json:"enforce_unique"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RIR represents a regional internet registry (or a private registry)
type RIR struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsPrivate bool      `json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Aggregate represents a registry-level address block allocated to the
// organization, e.g. "10.0.0.0/8" from a private RIR.
type Aggregate struct {
	ID          string    `json:"id"`
	Family      int       `json:"family"`
	Prefix      string    `json:"prefix"` // CIDR notation
	RIRID       string    `json:"rir_id"`
	DateAdded   string    `json:"date_added,omitempty"` // YYYY-MM-DD
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Normalize parses and canonicalizes the aggregate's prefix, deriving the
// address family. Host bits are rejected.
func (a *Aggregate) Normalize() error {
	p, err := ParseNetwork(a.Prefix)
	if err != nil {
		return err
	}
	a.Prefix = p.String()
	a.Family = familyOf(p.Addr())
	return nil
}

// Role represents the functional role of a prefix or VLAN (e.g. production,
// lab, customer)
type Role struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Weight    int       `json:"weight,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseNetwork parses a CIDR string and requires the host bits to be zero,
// so "10.0.1.0/24" is accepted but "10.0.1.5/24" is not.
func ParseNetwork(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid network %q: %w", s, err)
	}
	if p.Masked() != p {
		return netip.Prefix{}, fmt.Errorf("invalid network %q: host bits set", s)
	}
	return p, nil
}

func familyOf(addr netip.Addr) int {
	if addr.Is4() {
		return FamilyIPv4
	}
	return FamilyIPv6
}
