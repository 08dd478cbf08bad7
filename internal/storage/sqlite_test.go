package storage

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	ss, err := NewSQLiteStorage(t.TempDir())
	if err != nil {
		t.Fatalf("creating storage: %v", err)
	}
	t.Cleanup(func() { ss.Close() })
	return ss
}

// seed loads a small inventory: two regions with one site each, two VRFs
// (vrf-1 enforces uniqueness), a handful of v4 and v6 prefixes under
// 10.0.0.0/16, and addresses assigned across two devices and one VM.
func seed(t *testing.T, ss *SQLiteStorage) {
	t.Helper()

	create := func(what string, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seeding %s: %v", what, err)
		}
	}

	create("region-1", ss.CreateRegion(&model.Region{ID: "region-1", Name: "Region 1", Slug: "region-1"}))
	create("region-2", ss.CreateRegion(&model.Region{ID: "region-2", Name: "Region 2", Slug: "region-2"}))
	create("site-1", ss.CreateSite(&model.Site{ID: "site-1", Name: "Site 1", Slug: "site-1", RegionID: "region-1"}))
	create("site-2", ss.CreateSite(&model.Site{ID: "site-2", Name: "Site 2", Slug: "site-2", RegionID: "region-2"}))

	create("vrf-1", ss.CreateVRF(&model.VRF{ID: "vrf-1", Name: "VRF 1", RD: "65000:100", EnforceUnique: true}))
	create("vrf-2", ss.CreateVRF(&model.VRF{ID: "vrf-2", Name: "VRF 2", RD: "65000:200"}))

	create("rir-1", ss.CreateRIR(&model.RIR{ID: "rir-1", Name: "RIR 1", Slug: "rir-1"}))
	create("rir-2", ss.CreateRIR(&model.RIR{ID: "rir-2", Name: "RIR 2", Slug: "rir-2", IsPrivate: true}))

	create("agg-1", ss.CreateAggregate(&model.Aggregate{ID: "agg-1", Prefix: "10.0.0.0/8", RIRID: "rir-1", DateAdded: "2025-01-01"}))
	create("agg-2", ss.CreateAggregate(&model.Aggregate{ID: "agg-2", Prefix: "2001:db8::/32", RIRID: "rir-2", DateAdded: "2025-02-01"}))

	create("role-1", ss.CreateRole(&model.Role{ID: "role-1", Name: "Role 1", Slug: "role-1"}))
	create("role-2", ss.CreateRole(&model.Role{ID: "role-2", Name: "Role 2", Slug: "role-2"}))

	create("group-1", ss.CreateVLANGroup(&model.VLANGroup{ID: "group-1", Name: "Group 1", Slug: "group-1", SiteID: "site-1"}))
	create("group-2", ss.CreateVLANGroup(&model.VLANGroup{ID: "group-2", Name: "Group 2", Slug: "group-2", SiteID: "site-2"}))

	create("vlan-1", ss.CreateVLAN(&model.VLAN{ID: "vlan-1", VID: 101, Name: "VLAN 101", SiteID: "site-1", GroupID: "group-1", RoleID: "role-1", Status: model.VLANStatusActive}))
	create("vlan-2", ss.CreateVLAN(&model.VLAN{ID: "vlan-2", VID: 102, Name: "VLAN 102", SiteID: "site-2", GroupID: "group-2", RoleID: "role-2", Status: model.VLANStatusReserved}))
	create("vlan-3", ss.CreateVLAN(&model.VLAN{ID: "vlan-3", VID: 103, Name: "VLAN 103", Status: model.VLANStatusDeprecated}))

	create("device-1", ss.CreateDevice(&model.Device{ID: "device-1", Name: "Device 1", SiteID: "site-1"}))
	create("device-2", ss.CreateDevice(&model.Device{ID: "device-2", Name: "Device 2", SiteID: "site-2"}))
	create("vm-1", ss.CreateVirtualMachine(&model.VirtualMachine{ID: "vm-1", Name: "VM 1"}))

	create("iface-1", ss.CreateInterface(&model.Interface{ID: "iface-1", Name: "eth0", DeviceID: "device-1"}))
	create("iface-2", ss.CreateInterface(&model.Interface{ID: "iface-2", Name: "eth0", DeviceID: "device-2"}))
	create("iface-3", ss.CreateInterface(&model.Interface{ID: "iface-3", Name: "eth0", VirtualMachineID: "vm-1"}))

	create("pfx-16", ss.CreatePrefix(&model.Prefix{ID: "pfx-16", Prefix: "10.0.0.0/16", SiteID: "site-1", RoleID: "role-1", Status: model.PrefixStatusContainer}))
	create("pfx-24a", ss.CreatePrefix(&model.Prefix{ID: "pfx-24a", Prefix: "10.0.0.0/24", SiteID: "site-1", VRFID: "vrf-1", VLANID: "vlan-1", RoleID: "role-1"}))
	create("pfx-24b", ss.CreatePrefix(&model.Prefix{ID: "pfx-24b", Prefix: "10.0.1.0/24", SiteID: "site-2", VRFID: "vrf-2", VLANID: "vlan-2", RoleID: "role-2", IsPool: true}))
	create("pfx-24c", ss.CreatePrefix(&model.Prefix{ID: "pfx-24c", Prefix: "10.0.2.0/24", SiteID: "site-1", Status: model.PrefixStatusDeprecated}))
	create("pfx-24d", ss.CreatePrefix(&model.Prefix{ID: "pfx-24d", Prefix: "10.0.3.0/24", Status: model.PrefixStatusReserved}))
	create("pfx-v6a", ss.CreatePrefix(&model.Prefix{ID: "pfx-v6a", Prefix: "2001:db8::/64"}))
	create("pfx-v6b", ss.CreatePrefix(&model.Prefix{ID: "pfx-v6b", Prefix: "2001:db8:0:1::/64"}))

	create("ip-1", ss.CreateIPAddress(&model.IPAddress{ID: "ip-1", Address: "10.0.0.1/24", InterfaceID: "iface-1", DNSName: "host1.example.com"}))
	create("ip-2", ss.CreateIPAddress(&model.IPAddress{ID: "ip-2", Address: "10.0.0.1/25"}))
	create("ip-3", ss.CreateIPAddress(&model.IPAddress{ID: "ip-3", Address: "10.0.0.2/24", InterfaceID: "iface-2", Status: model.IPAddressStatusReserved, DNSName: "host2.example.com"}))
	create("ip-4", ss.CreateIPAddress(&model.IPAddress{ID: "ip-4", Address: "10.0.0.3/24", InterfaceID: "iface-3", Status: model.IPAddressStatusDHCP, Role: model.IPAddressRoleVIP}))
	create("ip-5", ss.CreateIPAddress(&model.IPAddress{ID: "ip-5", Address: "10.0.0.4/24", Status: model.IPAddressStatusDeprecated, Role: model.IPAddressRoleSecondary}))
	create("ip-6", ss.CreateIPAddress(&model.IPAddress{ID: "ip-6", Address: "10.1.0.1/24", VRFID: "vrf-1"}))
	create("ip-v6", ss.CreateIPAddress(&model.IPAddress{ID: "ip-v6", Address: "2001:db8::1/64"}))

	create("svc-1", ss.CreateService(&model.Service{ID: "svc-1", Name: "Service 1", Protocol: model.ProtocolTCP, Port: 2001, DeviceID: "device-1"}))
	create("svc-2", ss.CreateService(&model.Service{ID: "svc-2", Name: "Service 2", Protocol: model.ProtocolTCP, Port: 2002, DeviceID: "device-2"}))
	create("svc-3", ss.CreateService(&model.Service{ID: "svc-3", Name: "Service 3", Protocol: model.ProtocolUDP, Port: 2003, VirtualMachineID: "vm-1"}))
}

func prefixFilter(t *testing.T, q url.Values) filter.PrefixFilter {
	t.Helper()
	f, errs := filter.ParsePrefixFilter(q)
	if errs.Any() {
		t.Fatalf("parsing prefix filter: %v", errs)
	}
	return f
}

func ipFilter(t *testing.T, q url.Values) filter.IPAddressFilter {
	t.Helper()
	f, errs := filter.ParseIPAddress(q)
	if errs.Any() {
		t.Fatalf("parsing address filter: %v", errs)
	}
	return f
}

func TestListPrefixes(t *testing.T) {
	ss := newTestStorage(t)
	seed(t, ss)

	tests := []struct {
		name  string
		query url.Values
		want  int
	}{
		{"all", url.Values{}, 7},
		{"family 4", url.Values{"family": {"4"}}, 5},
		{"family 6", url.Values{"family": {"6"}}, 2},
		{"within excludes the target itself", url.Values{"within": {"10.0.0.0/16"}}, 4},
		{"within_include includes the target", url.Values{"within_include": {"10.0.0.0/16"}}, 5},
		{"contains includes the equal prefix", url.Values{"contains": {"10.0.1.0/24"}}, 2},
		{"contains host-bit input canonicalized", url.Values{"contains": {"10.0.1.5/24"}}, 2},
		{"mask_length", url.Values{"mask_length": {"24"}}, 4},
		{"status active", url.Values{"status": {"active"}}, 4},
		{"status multi", url.Values{"status": {"container", "reserved"}}, 2},
		{"is_pool", url.Values{"is_pool": {"true"}}, 1},
		{"vrf_id", url.Values{"vrf_id": {"vrf-1"}}, 1},
		{"vrf by rd", url.Values{"vrf": {"65000:200"}}, 1},
		{"site by slug", url.Values{"site": {"site-1"}}, 3},
		{"site_id", url.Values{"site_id": {"site-2"}}, 1},
		{"region by slug", url.Values{"region": {"region-1"}}, 3},
		{"region_id", url.Values{"region_id": {"region-2"}}, 1},
		{"vlan_vid", url.Values{"vlan_vid": {"101"}}, 1},
		{"vlan_id", url.Values{"vlan_id": {"vlan-2"}}, 1},
		{"role by slug", url.Values{"role": {"role-2"}}, 1},
		{"role_id", url.Values{"role_id": {"role-1"}}, 2},
		{"id__in", url.Values{"id__in": {"pfx-16,pfx-24a"}}, 2},
		{"within and status combined", url.Values{"within": {"10.0.0.0/16"}, "status": {"active"}}, 2},
		{"cross family containment", url.Values{"within": {"2001:db8::/32"}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefixes, err := ss.ListPrefixes(prefixFilter(t, tt.query))
			if err != nil {
				t.Fatalf("ListPrefixes: %v", err)
			}
			if len(prefixes) != tt.want {
				t.Errorf("got %d prefixes, want %d: %v", len(prefixes), tt.want, prefixIDs(prefixes))
			}
		})
	}
}

func prefixIDs(prefixes []model.Prefix) []string {
	ids := make([]string, len(prefixes))
	for i, p := range prefixes {
		ids[i] = p.ID
	}
	return ids
}

func TestListIPAddresses(t *testing.T) {
	ss := newTestStorage(t)
	seed(t, ss)

	tests := []struct {
		name  string
		query url.Values
		want  int
	}{
		{"all", url.Values{}, 7},
		{"family 4", url.Values{"family": {"4"}}, 6},
		{"family 6", url.Values{"family": {"6"}}, 1},
		{"parent", url.Values{"parent": {"10.0.0.0/24"}}, 5},
		{"parent wider", url.Values{"parent": {"10.0.0.0/8"}}, 6},
		{"address with mask is exact", url.Values{"address": {"10.0.0.1/24"}}, 1},
		{"bare address matches any mask", url.Values{"address": {"10.0.0.1"}}, 2},
		{"mask_length", url.Values{"mask_length": {"25"}}, 1},
		{"vrf_id", url.Values{"vrf_id": {"vrf-1"}}, 1},
		{"vrf by rd", url.Values{"vrf": {"65000:100"}}, 1},
		{"device by name", url.Values{"device": {"Device 1"}}, 1},
		{"device_id", url.Values{"device_id": {"device-2"}}, 1},
		{"virtual machine by name", url.Values{"virtual_machine": {"VM 1"}}, 1},
		{"interface by name", url.Values{"interface": {"eth0"}}, 3},
		{"interface_id", url.Values{"interface_id": {"iface-1"}}, 1},
		{"assigned", url.Values{"assigned_to_interface": {"true"}}, 3},
		{"unassigned", url.Values{"assigned_to_interface": {"false"}}, 4},
		{"status", url.Values{"status": {"reserved"}}, 1},
		{"role", url.Values{"role": {"vip"}}, 1},
		{"dns_name", url.Values{"dns_name": {"host1.example.com"}}, 1},
		{"id__in", url.Values{"id__in": {"ip-1,ip-3,ip-v6"}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addresses, err := ss.ListIPAddresses(ipFilter(t, tt.query))
			if err != nil {
				t.Fatalf("ListIPAddresses: %v", err)
			}
			if len(addresses) != tt.want {
				t.Errorf("got %d addresses, want %d", len(addresses), tt.want)
			}
		})
	}
}

func TestListVRFs(t *testing.T) {
	ss := newTestStorage(t)
	seed(t, ss)

	tests := []struct {
		name  string
		query url.Values
		want  int
	}{
		{"all", url.Values{}, 2},
		{"by name", url.Values{"name": {"VRF 1"}}, 1},
		{"by rd", url.Values{"rd": {"65000:100", "65000:200"}}, 2},
		{"enforce_unique", url.Values{"enforce_unique": {"true"}}, 1},
		{"id__in", url.Values{"id__in": {"vrf-1"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, errs := filter.ParseVRF(tt.query)
			if errs.Any() {
				t.Fatalf("parsing VRF filter: %v", errs)
			}
			vrfs, err := ss.ListVRFs(f)
			if err != nil {
				t.Fatalf("ListVRFs: %v", err)
			}
			if len(vrfs) != tt.want {
				t.Errorf("got %d VRFs, want %d", len(vrfs), tt.want)
			}
		})
	}
}

func TestListAggregates(t *testing.T) {
	ss := newTestStorage(t)
	seed(t, ss)

	tests := []struct {
		name  string
		query url.Values
		want  int
	}{
		{"all", url.Values{}, 2},
		{"family", url.Values{"family": {"4"}}, 1},
		{"rir by slug", url.Values{"rir": {"rir-2"}}, 1},
		{"rir_id", url.Values{"rir_id": {"rir-1"}}, 1},
		{"exact prefix", url.Values{"prefix": {"10.0.0.0/8"}}, 1},
		{"date_added", url.Values{"date_added": {"2025-01-01"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, errs := filter.ParseAggregate(tt.query)
			if errs.Any() {
				t.Fatalf("parsing aggregate filter: %v", errs)
			}
			aggregates, err := ss.ListAggregates(f)
			if err != nil {
				t.Fatalf("ListAggregates: %v", err)
			}
			if len(aggregates) != tt.want {
				t.Errorf("got %d aggregates, want %d", len(aggregates), tt.want)
			}
		})
	}
}

func TestAggregateOverlapRejected(t *testing.T) {
	ss := newTestStorage(t)
	seed(t, ss)

	err := ss.CreateAggregate(&model.Aggregate{ID: "agg-x", Prefix: "10.0.0.0/16", RIRID: "rir-1"})
	if err == nil {
		t.Error("expected an overlap error for a sub-network of an existing aggregate")
	}
	err = ss.CreateAggregate(&model.Aggregate{ID: "agg-y", Prefix: "0.0.0.0/0", RIRID: "rir-1"})
	if err == nil {
		t.Error("expected an overlap error for a super-network of an existing aggregate")
	}
	if err := ss.CreateAggregate(&model.Aggregate{ID: "agg-z", Prefix: "172.16.0.0/12", RIRID: "rir-1"}); err != nil {
		t.Errorf("disjoint aggregate should be accepted: %v", err)
	}
}

func TestListVLANsAndGroups(t *testing.T) {
	ss := newTestStorage(t)
	seed(t, ss)

	vlanTests := []struct {
		name  string
		query url.Values
		want  int
	}{
		{"all", url.Values{}, 3},
		{"by vid", url.Values{"vid": {"101"}}, 1},
		{"by name", url.Values{"name": {"VLAN 102"}}, 1},
		{"by group slug", url.Values{"group": {"group-1"}}, 1},
		{"by group_id", url.Values{"group_id": {"group-2"}}, 1},
		{"by role slug", url.Values{"role": {"role-1"}}, 1},
		{"by status", url.Values{"status": {"active"}}, 1},
		{"by site slug", url.Values{"site": {"site-1"}}, 1},
		{"by region slug", url.Values{"region": {"region-2"}}, 1},
		{"id__in", url.Values{"id__in": {"vlan-1,vlan-3"}}, 2},
	}

	for _, tt := range vlanTests {
		t.Run("vlan "+tt.name, func(t *testing.T) {
			f, errs := filter.ParseVLAN(tt.query)
			if errs.Any() {
				t.Fatalf("parsing VLAN filter: %v", errs)
			}
			vlans, err := ss.ListVLANs(f)
			if err != nil {
				t.Fatalf("ListVLANs: %v", err)
			}
			if len(vlans) != tt.want {
				t.Errorf("got %d VLANs, want %d", len(vlans), tt.want)
			}
		})
	}

	groupTests := []struct {
		name  string
		query url.Values
		want  int
	}{
		{"all", url.Values{}, 2},
		{"by slug", url.Values{"slug": {"group-1"}}, 1},
		{"by site slug", url.Values{"site": {"site-2"}}, 1},
		{"by region slug", url.Values{"region": {"region-1"}}, 1},
	}

	for _, tt := range groupTests {
		t.Run("group "+tt.name, func(t *testing.T) {
			f, errs := filter.ParseVLANGroup(tt.query)
			if errs.Any() {
				t.Fatalf("parsing VLAN group filter: %v", errs)
			}
			groups, err := ss.ListVLANGroups(f)
			if err != nil {
				t.Fatalf("ListVLANGroups: %v", err)
			}
			if len(groups) != tt.want {
				t.Errorf("got %d groups, want %d", len(groups), tt.want)
			}
		})
	}
}

func TestListServices(t *testing.T) {
	ss := newTestStorage(t)
	seed(t, ss)

	tests := []struct {
		name  string
		query url.Values
		want  int
	}{
		{"all", url.Values{}, 3},
		{"by protocol", url.Values{"protocol": {"tcp"}}, 2},
		{"by port", url.Values{"port": {"2001"}}, 1},
		{"by device name", url.Values{"device": {"Device 2"}}, 1},
		{"by vm name", url.Values{"virtual_machine": {"VM 1"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, errs := filter.ParseService(tt.query)
			if errs.Any() {
				t.Fatalf("parsing service filter: %v", errs)
			}
			services, err := ss.ListServices(f)
			if err != nil {
				t.Fatalf("ListServices: %v", err)
			}
			if len(services) != tt.want {
				t.Errorf("got %d services, want %d", len(services), tt.want)
			}
		})
	}
}

func TestEnforceUnique(t *testing.T) {
	ss := newTestStorage(t)
	seed(t, ss)

	t.Run("duplicate address in enforcing VRF", func(t *testing.T) {
		err := ss.CreateIPAddress(&model.IPAddress{ID: "ip-dup", Address: "10.1.0.1/25", VRFID: "vrf-1"})
		if !errors.Is(err, ErrDuplicateAddress) {
			t.Errorf("expected ErrDuplicateAddress, got %v", err)
		}
	})

	t.Run("duplicate prefix in enforcing VRF", func(t *testing.T) {
		if err := ss.CreatePrefix(&model.Prefix{ID: "pfx-u1", Prefix: "10.5.0.0/24", VRFID: "vrf-1"}); err != nil {
			t.Fatalf("first prefix: %v", err)
		}
		err := ss.CreatePrefix(&model.Prefix{ID: "pfx-u2", Prefix: "10.5.0.0/24", VRFID: "vrf-1"})
		if !errors.Is(err, ErrDuplicatePrefix) {
			t.Errorf("expected ErrDuplicatePrefix, got %v", err)
		}
	})

	t.Run("non-enforcing VRF allows duplicates", func(t *testing.T) {
		if err := ss.CreateIPAddress(&model.IPAddress{ID: "ip-d1", Address: "10.6.0.1/24", VRFID: "vrf-2"}); err != nil {
			t.Fatalf("first address: %v", err)
		}
		if err := ss.CreateIPAddress(&model.IPAddress{ID: "ip-d2", Address: "10.6.0.1/25", VRFID: "vrf-2"}); err != nil {
			t.Errorf("duplicate host in non-enforcing VRF should be allowed: %v", err)
		}
	})
}

func TestCRUDAndSentinels(t *testing.T) {
	ss := newTestStorage(t)
	seed(t, ss)

	t.Run("get not found", func(t *testing.T) {
		if _, err := ss.GetPrefix("missing"); !errors.Is(err, ErrPrefixNotFound) {
			t.Errorf("expected ErrPrefixNotFound, got %v", err)
		}
		if _, err := ss.GetIPAddress("missing"); !errors.Is(err, ErrIPAddressNotFound) {
			t.Errorf("expected ErrIPAddressNotFound, got %v", err)
		}
		if _, err := ss.GetVRF("missing"); !errors.Is(err, ErrVRFNotFound) {
			t.Errorf("expected ErrVRFNotFound, got %v", err)
		}
	})

	t.Run("update prefix", func(t *testing.T) {
		p, err := ss.GetPrefix("pfx-24d")
		if err != nil {
			t.Fatalf("GetPrefix: %v", err)
		}
		p.Status = model.PrefixStatusActive
		p.Description = "promoted"
		if err := ss.UpdatePrefix(p); err != nil {
			t.Fatalf("UpdatePrefix: %v", err)
		}
		got, err := ss.GetPrefix("pfx-24d")
		if err != nil {
			t.Fatalf("GetPrefix: %v", err)
		}
		if got.Status != model.PrefixStatusActive || got.Description != "promoted" {
			t.Errorf("update not persisted: %+v", got)
		}
	})

	t.Run("update missing prefix", func(t *testing.T) {
		err := ss.UpdatePrefix(&model.Prefix{ID: "missing", Prefix: "10.9.0.0/24"})
		if !errors.Is(err, ErrPrefixNotFound) {
			t.Errorf("expected ErrPrefixNotFound, got %v", err)
		}
	})

	t.Run("delete prefix", func(t *testing.T) {
		if err := ss.DeletePrefix("pfx-v6b"); err != nil {
			t.Fatalf("DeletePrefix: %v", err)
		}
		if err := ss.DeletePrefix("pfx-v6b"); !errors.Is(err, ErrPrefixNotFound) {
			t.Errorf("expected ErrPrefixNotFound, got %v", err)
		}
	})

	t.Run("duplicate rd rejected", func(t *testing.T) {
		err := ss.CreateVRF(&model.VRF{ID: "vrf-x", Name: "VRF X", RD: "65000:100"})
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("duplicate vid in group rejected", func(t *testing.T) {
		err := ss.CreateVLAN(&model.VLAN{ID: "vlan-x", VID: 101, Name: "Clash", GroupID: "group-1"})
		if !errors.Is(err, ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("host bits rejected on prefix", func(t *testing.T) {
		if err := ss.CreatePrefix(&model.Prefix{ID: "pfx-bad", Prefix: "10.9.0.5/24"}); err == nil {
			t.Error("expected a host bits error")
		}
	})
}

func TestDNSStatus(t *testing.T) {
	ss := newTestStorage(t)
	seed(t, ss)

	checkedAt := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	if err := ss.UpdateIPAddressDNSStatus("ip-1", checkedAt, true); err != nil {
		t.Fatalf("UpdateIPAddressDNSStatus: %v", err)
	}

	ip, err := ss.GetIPAddress("ip-1")
	if err != nil {
		t.Fatalf("GetIPAddress: %v", err)
	}
	if ip.DNSOK == nil || !*ip.DNSOK {
		t.Error("dns_ok should be true")
	}
	if ip.DNSCheckedAt == nil || !ip.DNSCheckedAt.Equal(checkedAt) {
		t.Errorf("dns_checked_at = %v, want %v", ip.DNSCheckedAt, checkedAt)
	}

	if err := ss.UpdateIPAddressDNSStatus("missing", checkedAt, false); !errors.Is(err, ErrIPAddressNotFound) {
		t.Errorf("expected ErrIPAddressNotFound, got %v", err)
	}

	// An address never checked keeps both fields unset
	other, err := ss.GetIPAddress("ip-2")
	if err != nil {
		t.Fatalf("GetIPAddress: %v", err)
	}
	if other.DNSOK != nil || other.DNSCheckedAt != nil {
		t.Error("unchecked address should have no DNS status")
	}
}
