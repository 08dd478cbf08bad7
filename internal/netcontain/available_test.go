package netcontain

import (
	"net/netip"
	"testing"

	"go4.org/netipx"
	"pgregory.net/rapid"
)

func TestAvailablePrefixes(t *testing.T) {
	parent := mustPrefix(t, "10.0.0.0/16")
	children := []netip.Prefix{
		mustPrefix(t, "10.0.0.0/24"),
		mustPrefix(t, "10.0.1.0/24"),
	}

	avail, err := AvailablePrefixes(parent, children)
	if err != nil {
		t.Fatalf("AvailablePrefixes: %v", err)
	}

	// 10.0.0.0/23 is fully allocated; the remainder collapses to two prefixes
	want := []string{"10.0.2.0/23", "10.0.4.0/22", "10.0.8.0/21", "10.0.16.0/20", "10.0.32.0/19", "10.0.64.0/18", "10.0.128.0/17"}
	if len(avail) != len(want) {
		t.Fatalf("expected %d available prefixes, got %d: %v", len(want), len(avail), avail)
	}
	for i, w := range want {
		if avail[i].String() != w {
			t.Errorf("avail[%d] = %s, want %s", i, avail[i], w)
		}
	}
}

func TestAvailablePrefixesFullyAllocated(t *testing.T) {
	parent := mustPrefix(t, "10.0.0.0/24")
	children := []netip.Prefix{
		mustPrefix(t, "10.0.0.0/25"),
		mustPrefix(t, "10.0.0.128/25"),
	}

	avail, err := AvailablePrefixes(parent, children)
	if err != nil {
		t.Fatalf("AvailablePrefixes: %v", err)
	}
	if len(avail) != 0 {
		t.Errorf("expected no available space, got %v", avail)
	}
}

func TestFirstAvailablePrefix(t *testing.T) {
	parent := mustPrefix(t, "10.0.0.0/16")
	children := []netip.Prefix{mustPrefix(t, "10.0.0.0/24")}

	p, ok, err := FirstAvailablePrefix(parent, children, 24)
	if err != nil {
		t.Fatalf("FirstAvailablePrefix: %v", err)
	}
	if !ok || p.String() != "10.0.1.0/24" {
		t.Errorf("expected 10.0.1.0/24, got %v (ok=%v)", p, ok)
	}

	// Too-large request inside a mostly full parent
	full := []netip.Prefix{mustPrefix(t, "10.0.0.0/17"), mustPrefix(t, "10.0.128.0/17")}
	_, ok, err = FirstAvailablePrefix(parent, full, 24)
	if err != nil {
		t.Fatalf("FirstAvailablePrefix: %v", err)
	}
	if ok {
		t.Error("expected no available prefix in a fully allocated parent")
	}

	// Requested mask shorter than the parent's is an error
	if _, _, err := FirstAvailablePrefix(parent, nil, 8); err == nil {
		t.Error("expected error for mask length outside the parent")
	}
}

func TestAvailableAddrs(t *testing.T) {
	net28 := mustPrefix(t, "10.0.0.0/28")
	used := []netip.Addr{netip.MustParseAddr("10.0.0.1"), netip.MustParseAddr("10.0.0.2")}

	addrs, err := AvailableAddrs(net28, used, false, 0)
	if err != nil {
		t.Fatalf("AvailableAddrs: %v", err)
	}
	// 16 total - network - broadcast - 2 used
	if len(addrs) != 12 {
		t.Errorf("expected 12 available addresses, got %d", len(addrs))
	}
	if addrs[0].String() != "10.0.0.3" {
		t.Errorf("first available = %s, want 10.0.0.3", addrs[0])
	}

	// A pool includes the network and broadcast addresses
	poolAddrs, err := AvailableAddrs(net28, used, true, 0)
	if err != nil {
		t.Fatalf("AvailableAddrs: %v", err)
	}
	if len(poolAddrs) != 14 {
		t.Errorf("expected 14 available pool addresses, got %d", len(poolAddrs))
	}
	if poolAddrs[0].String() != "10.0.0.0" {
		t.Errorf("first available pool address = %s, want 10.0.0.0", poolAddrs[0])
	}

	// Limit caps the result
	limited, err := AvailableAddrs(net28, nil, false, 3)
	if err != nil {
		t.Fatalf("AvailableAddrs: %v", err)
	}
	if len(limited) != 3 {
		t.Errorf("expected 3 addresses with limit, got %d", len(limited))
	}
}

func TestAvailableAddrsSlash31(t *testing.T) {
	// RFC 3021 point-to-point: both addresses usable
	addrs, err := AvailableAddrs(mustPrefix(t, "10.0.0.0/31"), nil, false, 0)
	if err != nil {
		t.Fatalf("AvailableAddrs: %v", err)
	}
	if len(addrs) != 2 {
		t.Errorf("expected 2 addresses in a /31, got %d", len(addrs))
	}
}

func TestFirstAvailableAddr(t *testing.T) {
	net30 := mustPrefix(t, "192.0.2.0/30")
	used := []netip.Addr{netip.MustParseAddr("192.0.2.1")}

	a, ok, err := FirstAvailableAddr(net30, used, false)
	if err != nil {
		t.Fatalf("FirstAvailableAddr: %v", err)
	}
	if !ok || a.String() != "192.0.2.2" {
		t.Errorf("expected 192.0.2.2, got %v (ok=%v)", a, ok)
	}

	// Exhausted
	used = append(used, netip.MustParseAddr("192.0.2.2"))
	_, ok, err = FirstAvailableAddr(net30, used, false)
	if err != nil {
		t.Fatalf("FirstAvailableAddr: %v", err)
	}
	if ok {
		t.Error("expected no available address")
	}
}

func TestUtilization(t *testing.T) {
	parent := mustPrefix(t, "10.0.0.0/16")

	u, err := Utilization(parent, []netip.Prefix{mustPrefix(t, "10.0.0.0/17")})
	if err != nil {
		t.Fatalf("Utilization: %v", err)
	}
	if u != 0.5 {
		t.Errorf("expected 0.5, got %v", u)
	}

	// Overlapping children count once; out-of-range children are clipped
	u, err = Utilization(parent, []netip.Prefix{
		mustPrefix(t, "10.0.0.0/17"),
		mustPrefix(t, "10.0.0.0/18"),
		mustPrefix(t, "192.168.0.0/16"),
	})
	if err != nil {
		t.Fatalf("Utilization: %v", err)
	}
	if u != 0.5 {
		t.Errorf("expected 0.5 with overlap and clipping, got %v", u)
	}

	u, err = Utilization(mustPrefix(t, "2001:db8::/32"), []netip.Prefix{mustPrefix(t, "2001:db8::/33")})
	if err != nil {
		t.Fatalf("Utilization: %v", err)
	}
	if u != 0.5 {
		t.Errorf("expected 0.5 for IPv6, got %v", u)
	}
}

// drawPrefix4 generates a canonical IPv4 prefix
func drawPrefix4(t *rapid.T, label string) netip.Prefix {
	raw := rapid.Uint32().Draw(t, label+"-addr")
	bits := rapid.IntRange(0, 32).Draw(t, label+"-bits")
	addr := netip.AddrFrom4([4]byte{byte(raw >> 24), byte(raw >> 16), byte(raw >> 8), byte(raw)})
	return netip.PrefixFrom(addr, bits).Masked()
}

func TestMatchesProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := drawPrefix4(t, "candidate")
		target := drawPrefix4(t, "target")

		// contains and within_include are duals
		if Matches(Contains, c, target) != Matches(WithinInclude, target, c) {
			t.Fatalf("duality violated for %s vs %s", c, target)
		}
		// within is within_include minus equality
		wantWithin := Matches(WithinInclude, c, target) && c != target
		if Matches(Within, c, target) != wantWithin {
			t.Fatalf("within/within_include mismatch for %s vs %s", c, target)
		}
		// equality is the intersection of both directions
		wantEq := Matches(WithinInclude, c, target) && Matches(Contains, c, target)
		if Matches(Equals, c, target) != wantEq {
			t.Fatalf("equals mismatch for %s vs %s", c, target)
		}
	})
}

func TestAvailablePrefixesProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parent := drawPrefix4(t, "parent")
		n := rapid.IntRange(0, 4).Draw(t, "children")
		children := make([]netip.Prefix, n)
		for i := range children {
			children[i] = drawPrefix4(t, "child")
		}

		avail, err := AvailablePrefixes(parent, children)
		if err != nil {
			t.Fatalf("AvailablePrefixes: %v", err)
		}

		// The available space plus the allocated space must reassemble the
		// parent exactly.
		var ub netipx.IPSetBuilder
		for _, a := range avail {
			ub.AddPrefix(a)
		}
		var pb netipx.IPSetBuilder
		pb.AddPrefix(parent)
		parentSet, err := pb.IPSet()
		if err != nil {
			t.Fatalf("parent set: %v", err)
		}
		var cb netipx.IPSetBuilder
		for _, c := range children {
			cb.AddPrefix(c)
		}
		cb.Intersect(parentSet)
		clipped, err := cb.IPSet()
		if err != nil {
			t.Fatalf("clipped set: %v", err)
		}
		for _, p := range clipped.Prefixes() {
			ub.AddPrefix(p)
		}
		union, err := ub.IPSet()
		if err != nil {
			t.Fatalf("union set: %v", err)
		}

		got := union.Prefixes()
		want := parentSet.Prefixes()
		if len(got) != len(want) {
			t.Fatalf("union does not reassemble parent: got %v, want %v", got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("union does not reassemble parent: got %v, want %v", got, want)
			}
		}

		// No available prefix may overlap an allocated child
		for _, a := range avail {
			for _, c := range children {
				if a.Overlaps(c) {
					t.Fatalf("available prefix %s overlaps child %s", a, c)
				}
			}
		}
	})
}
