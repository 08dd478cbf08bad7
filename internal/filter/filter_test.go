package filter

import (
	"net/netip"
	"net/url"
	"testing"
)

func TestIDIn(t *testing.T) {
	q := url.Values{"id__in": []string{"a,b, c,"}}
	got := idIn(q)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("idIn = %v", got)
	}
	if idIn(url.Values{}) != nil {
		t.Error("absent id__in should be nil")
	}
}

func TestParseVRF(t *testing.T) {
	q := url.Values{
		"name":           []string{"VRF 1", "VRF 2"},
		"rd":             []string{"65000:100"},
		"enforce_unique": []string{"true"},
	}
	f, errs := ParseVRF(q)
	if errs.Any() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(f.Names) != 2 || len(f.RDs) != 1 {
		t.Errorf("filter = %+v", f)
	}
	if f.EnforceUnique == nil || !*f.EnforceUnique {
		t.Error("enforce_unique should parse to true")
	}

	_, errs = ParseVRF(url.Values{"enforce_unique": []string{"maybe"}})
	if !errs.Any() {
		t.Error("expected a boolean parse error")
	}
}

func TestParsePrefixFilter(t *testing.T) {
	t.Run("containment params", func(t *testing.T) {
		q := url.Values{
			"within":   []string{"10.0.0.0/16"},
			"contains": []string{"10.0.1.0/24"},
		}
		f, errs := ParsePrefixFilter(q)
		if errs.Any() {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if f.Within != netip.MustParsePrefix("10.0.0.0/16") {
			t.Errorf("within = %v", f.Within)
		}
		if f.Contains != netip.MustParsePrefix("10.0.1.0/24") {
			t.Errorf("contains = %v", f.Contains)
		}
		if f.WithinInclude.IsValid() {
			t.Error("within_include should be unset")
		}
	})

	t.Run("host bits canonicalized", func(t *testing.T) {
		f, errs := ParsePrefixFilter(url.Values{"within": []string{"10.0.0.5/16"}})
		if errs.Any() {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if f.Within != netip.MustParsePrefix("10.0.0.0/16") {
			t.Errorf("within = %v, want canonical network", f.Within)
		}
	})

	t.Run("invalid prefix", func(t *testing.T) {
		_, errs := ParsePrefixFilter(url.Values{"within": []string{"not-a-prefix"}})
		if !errs.Has("within") {
			t.Errorf("expected a within error, got %v", errs)
		}
	})

	t.Run("mask length defaults to unset", func(t *testing.T) {
		f, _ := ParsePrefixFilter(url.Values{})
		if f.MaskLength != -1 {
			t.Errorf("mask length = %d, want -1", f.MaskLength)
		}
		f, _ = ParsePrefixFilter(url.Values{"mask_length": []string{"0"}})
		if f.MaskLength != 0 {
			t.Errorf("mask length = %d, want 0", f.MaskLength)
		}
	})

	t.Run("family", func(t *testing.T) {
		f, errs := ParsePrefixFilter(url.Values{"family": []string{"6"}})
		if errs.Any() || f.Family != 6 {
			t.Errorf("family = %d, errors = %v", f.Family, errs)
		}
		_, errs = ParsePrefixFilter(url.Values{"family": []string{"5"}})
		if !errs.Has("family") {
			t.Error("expected a family error")
		}
	})

	t.Run("status validated", func(t *testing.T) {
		_, errs := ParsePrefixFilter(url.Values{"status": []string{"bogus"}})
		if !errs.Has("status") {
			t.Error("expected a status error")
		}
		_, errs = ParsePrefixFilter(url.Values{"status": []string{"container", "active"}})
		if errs.Any() {
			t.Errorf("unexpected errors: %v", errs)
		}
	})

	t.Run("vlan_vid", func(t *testing.T) {
		f, errs := ParsePrefixFilter(url.Values{"vlan_vid": []string{"101"}})
		if errs.Any() || len(f.VLANVIDs) != 1 || f.VLANVIDs[0] != 101 {
			t.Errorf("vids = %v, errors = %v", f.VLANVIDs, errs)
		}
	})
}

func TestParseIPAddress(t *testing.T) {
	t.Run("parent", func(t *testing.T) {
		f, errs := ParseIPAddress(url.Values{"parent": []string{"10.0.0.0/24"}})
		if errs.Any() || f.Parent != netip.MustParsePrefix("10.0.0.0/24") {
			t.Errorf("parent = %v, errors = %v", f.Parent, errs)
		}
	})

	t.Run("address with mask is exact", func(t *testing.T) {
		f, errs := ParseIPAddress(url.Values{"address": []string{"10.0.0.1/24"}})
		if errs.Any() {
			t.Fatalf("unexpected errors: %v", errs)
		}
		if len(f.Addresses) != 1 {
			t.Fatalf("addresses = %v", f.Addresses)
		}
		m := f.Addresses[0]
		if !m.HasMask || m.Prefix != netip.MustParsePrefix("10.0.0.1/24") {
			t.Errorf("match = %+v", m)
		}
	})

	t.Run("bare address matches any mask", func(t *testing.T) {
		f, errs := ParseIPAddress(url.Values{"address": []string{"10.0.0.1"}})
		if errs.Any() {
			t.Fatalf("unexpected errors: %v", errs)
		}
		m := f.Addresses[0]
		if m.HasMask || m.Addr != netip.MustParseAddr("10.0.0.1") {
			t.Errorf("match = %+v", m)
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		_, errs := ParseIPAddress(url.Values{"address": []string{"10.0.0"}})
		if !errs.Has("address") {
			t.Error("expected an address error")
		}
	})

	t.Run("assigned_to_interface", func(t *testing.T) {
		f, errs := ParseIPAddress(url.Values{"assigned_to_interface": []string{"false"}})
		if errs.Any() || f.AssignedToInterface == nil || *f.AssignedToInterface {
			t.Errorf("assigned = %v, errors = %v", f.AssignedToInterface, errs)
		}
	})

	t.Run("role validated", func(t *testing.T) {
		_, errs := ParseIPAddress(url.Values{"role": []string{"anycast"}})
		if errs.Any() {
			t.Errorf("unexpected errors: %v", errs)
		}
		_, errs = ParseIPAddress(url.Values{"role": []string{"bogus"}})
		if !errs.Has("role") {
			t.Error("expected a role error")
		}
	})
}

func TestParseVLAN(t *testing.T) {
	f, errs := ParseVLAN(url.Values{
		"vid":    []string{"101", "102"},
		"group":  []string{"group-1"},
		"status": []string{"active"},
	})
	if errs.Any() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(f.VIDs) != 2 || f.VIDs[0] != 101 {
		t.Errorf("vids = %v", f.VIDs)
	}
	if len(f.GroupSlugs) != 1 {
		t.Errorf("groups = %v", f.GroupSlugs)
	}

	_, errs = ParseVLAN(url.Values{"vid": []string{"abc"}})
	if !errs.Has("vid") {
		t.Error("expected a vid error")
	}
}

func TestParseService(t *testing.T) {
	f, errs := ParseService(url.Values{
		"protocol": []string{"tcp"},
		"port":     []string{"2001", "2002"},
	})
	if errs.Any() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(f.Ports) != 2 || f.Ports[1] != 2002 {
		t.Errorf("ports = %v", f.Ports)
	}

	_, errs = ParseService(url.Values{"protocol": []string{"icmp"}})
	if !errs.Has("protocol") {
		t.Error("expected a protocol error")
	}
	_, errs = ParseService(url.Values{"port": []string{"70000"}})
	if !errs.Has("port") {
		t.Error("expected a port range error")
	}
}

func TestParseAggregate(t *testing.T) {
	f, errs := ParseAggregate(url.Values{
		"prefix":     []string{"10.0.0.0/8"},
		"rir":        []string{"rir-1"},
		"date_added": []string{"2025-01-01"},
	})
	if errs.Any() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if f.Prefix != netip.MustParsePrefix("10.0.0.0/8") || len(f.RIRSlugs) != 1 || len(f.DateAdded) != 1 {
		t.Errorf("filter = %+v", f)
	}
}
