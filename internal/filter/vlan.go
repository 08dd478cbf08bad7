package filter

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/martinsuchenak/ipamd/internal/model"
)

// VLANGroupFilter selects VLAN groups by name, slug, or scope
type VLANGroupFilter struct {
	IDIn        []string
	Names       []string
	Slugs       []string
	RegionIDs   []string
	RegionSlugs []string
	SiteIDs     []string
	SiteSlugs   []string
}

// ParseVLANGroup reads VLAN group list parameters from a query string
func ParseVLANGroup(q url.Values) (VLANGroupFilter, Errors) {
	f := VLANGroupFilter{
		IDIn:        idIn(q),
		Names:       values(q, "name"),
		Slugs:       values(q, "slug"),
		RegionIDs:   values(q, "region_id"),
		RegionSlugs: values(q, "region"),
		SiteIDs:     values(q, "site_id"),
		SiteSlugs:   values(q, "site"),
	}
	return f, make(Errors)
}

// VLANFilter selects VLANs by VID, group, role, scope, or status
type VLANFilter struct {
	IDIn        []string
	Names       []string
	VIDs        []int
	RegionIDs   []string
	RegionSlugs []string
	SiteIDs     []string
	SiteSlugs   []string
	GroupIDs    []string
	GroupSlugs  []string
	RoleIDs     []string
	RoleSlugs   []string
	Statuses    []string
	Query       string
}

// ParseVLAN reads VLAN list parameters from a query string
func ParseVLAN(q url.Values) (VLANFilter, Errors) {
	errs := make(Errors)
	f := VLANFilter{
		IDIn:        idIn(q),
		Names:       values(q, "name"),
		RegionIDs:   values(q, "region_id"),
		RegionSlugs: values(q, "region"),
		SiteIDs:     values(q, "site_id"),
		SiteSlugs:   values(q, "site"),
		GroupIDs:    values(q, "group_id"),
		GroupSlugs:  values(q, "group"),
		RoleIDs:     values(q, "role_id"),
		RoleSlugs:   values(q, "role"),
		Statuses:    values(q, "status"),
		Query:       q.Get("q"),
	}
	for _, v := range values(q, "vid") {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs.Add("vid", fmt.Sprintf("invalid VLAN ID %q", v))
			continue
		}
		f.VIDs = append(f.VIDs, n)
	}
	for _, s := range f.Statuses {
		if !model.IsValidVLANStatus(s) {
			errs.Add("status", fmt.Sprintf("invalid VLAN status %q", s))
		}
	}
	return f, errs
}

// ServiceFilter selects services by protocol, port, or parent
type ServiceFilter struct {
	IDIn        []string
	Names       []string
	Protocols   []string
	Ports       []int
	DeviceIDs   []string
	DeviceNames []string
	VMIDs       []string
	VMNames     []string
}

// ParseService reads service list parameters from a query string
func ParseService(q url.Values) (ServiceFilter, Errors) {
	errs := make(Errors)
	f := ServiceFilter{
		IDIn:        idIn(q),
		Names:       values(q, "name"),
		Protocols:   values(q, "protocol"),
		DeviceIDs:   values(q, "device_id"),
		DeviceNames: values(q, "device"),
		VMIDs:       values(q, "virtual_machine_id"),
		VMNames:     values(q, "virtual_machine"),
	}
	for _, v := range values(q, "port") {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 65535 {
			errs.Add("port", fmt.Sprintf("invalid port %q", v))
			continue
		}
		f.Ports = append(f.Ports, n)
	}
	for _, p := range f.Protocols {
		if !model.IsValidProtocol(p) {
			errs.Add("protocol", fmt.Sprintf("invalid protocol %q", p))
		}
	}
	return f, errs
}
