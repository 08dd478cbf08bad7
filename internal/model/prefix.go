package model

import (
	"fmt"
	"time"
)

// Prefix represents an IPv4 or IPv6 network assigned within (optionally) a
// VRF, and optionally tied to a site, VLAN, and functional role.
type Prefix struct {
	ID          string    `json:"id"`
	Family      int       `json:"family"`
	Prefix      string    `json:"prefix"` // CIDR notation, e.g. "10.0.1.0/24"
	MaskLength  int       `json:"mask_length"`
	SiteID      string    `json:"site_id,omitempty"`
	VRFID       string    `json:"vrf_id,omitempty"`
	VLANID      string    `json:"vlan_id,omitempty"`
	RoleID      string    `json:"role_id,omitempty"`
	Status      string    `json:"status"`
	IsPool      bool      `json:"is_pool"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Normalize validates and canonicalizes the prefix, deriving Family and
// MaskLength from the CIDR string. A missing status defaults to active.
func (p *Prefix) Normalize() error {
	net, err := ParseNetwork(p.Prefix)
	if err != nil {
		return err
	}
	p.Prefix = net.String()
	p.Family = familyOf(net.Addr())
	p.MaskLength = net.Bits()

	if p.Status == "" {
		p.Status = PrefixStatusActive
	}
	if !IsValidPrefixStatus(p.Status) {
		return fmt.Errorf("invalid prefix status %q", p.Status)
	}
	return nil
}
