package filter

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"

	"github.com/martinsuchenak/ipamd/internal/model"
)

// VRFFilter selects VRFs by name, route distinguisher, or uniqueness flag
type VRFFilter struct {
	IDIn          []string
	Names         []string
	RDs           []string
	EnforceUnique *bool
	Query         string
}

// ParseVRF reads VRF list parameters from a query string
func ParseVRF(q url.Values) (VRFFilter, Errors) {
	errs := make(Errors)
	f := VRFFilter{
		IDIn:          idIn(q),
		Names:         values(q, "name"),
		RDs:           values(q, "rd"),
		EnforceUnique: parseBool(q, "enforce_unique", errs),
		Query:         q.Get("q"),
	}
	return f, errs
}

// RIRFilter selects RIRs by name, slug, or private flag
type RIRFilter struct {
	IDIn      []string
	Names     []string
	Slugs     []string
	IsPrivate *bool
}

// ParseRIR reads RIR list parameters from a query string
func ParseRIR(q url.Values) (RIRFilter, Errors) {
	errs := make(Errors)
	f := RIRFilter{
		IDIn:      idIn(q),
		Names:     values(q, "name"),
		Slugs:     values(q, "slug"),
		IsPrivate: parseBool(q, "is_private", errs),
	}
	return f, errs
}

// AggregateFilter selects aggregates by family, RIR, prefix, or date added
type AggregateFilter struct {
	IDIn      []string
	Family    int
	Prefix    netip.Prefix
	RIRIDs    []string
	RIRSlugs  []string
	DateAdded []string
}

// ParseAggregate reads aggregate list parameters from a query string
func ParseAggregate(q url.Values) (AggregateFilter, Errors) {
	errs := make(Errors)
	f := AggregateFilter{
		IDIn:      idIn(q),
		Family:    parseFamily(q, errs),
		Prefix:    parsePrefix(q, "prefix", errs),
		RIRIDs:    values(q, "rir_id"),
		RIRSlugs:  values(q, "rir"),
		DateAdded: values(q, "date_added"),
	}
	return f, errs
}

// RoleFilter selects prefix/VLAN roles by name or slug
type RoleFilter struct {
	IDIn  []string
	Names []string
	Slugs []string
}

// ParseRole reads role list parameters from a query string
func ParseRole(q url.Values) (RoleFilter, Errors) {
	f := RoleFilter{
		IDIn:  idIn(q),
		Names: values(q, "name"),
		Slugs: values(q, "slug"),
	}
	return f, make(Errors)
}

// PrefixFilter selects prefixes. Scalar and relation fields narrow by
// equality; Within, WithinInclude, and Contains narrow by network
// containment against the given target prefix.
type PrefixFilter struct {
	IDIn          []string
	Family        int
	Within        netip.Prefix
	WithinInclude netip.Prefix
	Contains      netip.Prefix
	MaskLength    int
	IsPool        *bool
	VRFIDs        []string
	VRFRDs        []string
	RegionIDs     []string
	RegionSlugs   []string
	SiteIDs       []string
	SiteSlugs     []string
	VLANIDs       []string
	VLANVIDs      []int
	RoleIDs       []string
	RoleSlugs     []string
	Statuses      []string
	Query         string
}

// ParsePrefixFilter reads prefix list parameters from a query string
func ParsePrefixFilter(q url.Values) (PrefixFilter, Errors) {
	errs := make(Errors)
	f := PrefixFilter{
		IDIn:          idIn(q),
		Family:        parseFamily(q, errs),
		Within:        parsePrefix(q, "within", errs),
		WithinInclude: parsePrefix(q, "within_include", errs),
		Contains:      parsePrefix(q, "contains", errs),
		MaskLength:    parseInt(q, "mask_length", -1, errs),
		IsPool:        parseBool(q, "is_pool", errs),
		VRFIDs:        values(q, "vrf_id"),
		VRFRDs:        values(q, "vrf"),
		RegionIDs:     values(q, "region_id"),
		RegionSlugs:   values(q, "region"),
		SiteIDs:       values(q, "site_id"),
		SiteSlugs:     values(q, "site"),
		VLANIDs:       values(q, "vlan_id"),
		RoleIDs:       values(q, "role_id"),
		RoleSlugs:     values(q, "role"),
		Statuses:      values(q, "status"),
		Query:         q.Get("q"),
	}
	for _, v := range values(q, "vlan_vid") {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			errs.Add("vlan_vid", fmt.Sprintf("invalid VLAN ID %q", v))
			continue
		}
		f.VLANVIDs = append(f.VLANVIDs, n)
	}
	for _, s := range f.Statuses {
		if !model.IsValidPrefixStatus(s) {
			errs.Add("status", fmt.Sprintf("invalid prefix status %q", s))
		}
	}
	return f, errs
}

// AddressMatch is one parsed value of the address parameter. With a mask
// the match is exact; without one it matches the host under any mask.
type AddressMatch struct {
	Addr    netip.Addr
	Prefix  netip.Prefix
	HasMask bool
}

// IPAddressFilter selects IP addresses. Parent narrows to hosts inside a
// network; Addresses narrows by host or exact host/mask.
type IPAddressFilter struct {
	IDIn                []string
	Family              int
	Parent              netip.Prefix
	Addresses           []AddressMatch
	MaskLength          int
	VRFIDs              []string
	VRFRDs              []string
	DeviceIDs           []string
	DeviceNames         []string
	VMIDs               []string
	VMNames             []string
	InterfaceIDs        []string
	InterfaceNames      []string
	AssignedToInterface *bool
	DNSNames            []string
	Statuses            []string
	Roles               []string
	Query               string
}

// ParseIPAddress reads IP address list parameters from a query string
func ParseIPAddress(q url.Values) (IPAddressFilter, Errors) {
	errs := make(Errors)
	f := IPAddressFilter{
		IDIn:                idIn(q),
		Family:              parseFamily(q, errs),
		Parent:              parsePrefix(q, "parent", errs),
		MaskLength:          parseInt(q, "mask_length", -1, errs),
		VRFIDs:              values(q, "vrf_id"),
		VRFRDs:              values(q, "vrf"),
		DeviceIDs:           values(q, "device_id"),
		DeviceNames:         values(q, "device"),
		VMIDs:               values(q, "virtual_machine_id"),
		VMNames:             values(q, "virtual_machine"),
		InterfaceIDs:        values(q, "interface_id"),
		InterfaceNames:      values(q, "interface"),
		AssignedToInterface: parseBool(q, "assigned_to_interface", errs),
		DNSNames:            values(q, "dns_name"),
		Statuses:            values(q, "status"),
		Roles:               values(q, "role"),
		Query:               q.Get("q"),
	}
	for _, v := range values(q, "address") {
		m, err := parseAddressMatch(v)
		if err != nil {
			errs.Add("address", err.Error())
			continue
		}
		f.Addresses = append(f.Addresses, m)
	}
	for _, s := range f.Statuses {
		if !model.IsValidIPAddressStatus(s) {
			errs.Add("status", fmt.Sprintf("invalid address status %q", s))
		}
	}
	for _, r := range f.Roles {
		if !model.IsValidIPAddressRole(r) {
			errs.Add("role", fmt.Sprintf("invalid address role %q", r))
		}
	}
	return f, errs
}

func parseAddressMatch(v string) (AddressMatch, error) {
	if strings.Contains(v, "/") {
		p, err := netip.ParsePrefix(v)
		if err != nil {
			return AddressMatch{}, fmt.Errorf("invalid address %q", v)
		}
		return AddressMatch{Addr: p.Addr(), Prefix: p, HasMask: true}, nil
	}
	a, err := netip.ParseAddr(v)
	if err != nil {
		return AddressMatch{}, fmt.Errorf("invalid address %q", v)
	}
	return AddressMatch{Addr: a}, nil
}
