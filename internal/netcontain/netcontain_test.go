package netcontain

import (
	"net/netip"
	"testing"
)

func mustPrefix(t *testing.T, s string) netip.Prefix {
	t.Helper()
	p, err := netip.ParsePrefix(s)
	if err != nil {
		t.Fatalf("bad prefix %s: %v", s, err)
	}
	return p
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		rel       Relation
		candidate string
		target    string
		want      bool
	}{
		{"within strict subnet", Within, "10.0.1.0/24", "10.0.0.0/16", true},
		{"within excludes equal", Within, "10.0.0.0/16", "10.0.0.0/16", false},
		{"within excludes supernet", Within, "10.0.0.0/8", "10.0.0.0/16", false},
		{"within excludes sibling", Within, "10.1.0.0/24", "10.0.0.0/16", false},
		{"within_include subnet", WithinInclude, "10.0.1.0/24", "10.0.0.0/16", true},
		{"within_include equal", WithinInclude, "10.0.0.0/16", "10.0.0.0/16", true},
		{"within_include excludes supernet", WithinInclude, "10.0.0.0/8", "10.0.0.0/16", false},
		{"contains supernet", Contains, "10.0.0.0/16", "10.0.1.0/24", true},
		{"contains equal", Contains, "10.0.1.0/24", "10.0.1.0/24", true},
		{"contains excludes subnet", Contains, "10.0.1.0/25", "10.0.1.0/24", false},
		{"contains excludes sibling", Contains, "10.1.0.0/16", "10.0.1.0/24", false},
		{"equals exact", Equals, "10.0.1.0/24", "10.0.1.0/24", true},
		{"equals different mask", Equals, "10.0.1.0/25", "10.0.1.0/24", false},
		{"ipv6 within", Within, "2001:db8:0:1::/64", "2001:db8::/32", true},
		{"ipv6 contains", Contains, "2001:db8::/32", "2001:db8:0:1::/64", true},
		{"cross family never matches", WithinInclude, "10.0.0.0/8", "::/0", false},
		{"cross family contains", Contains, "::/0", "10.0.0.0/8", false},
		{"host bits canonicalized", Within, "10.0.1.5/24", "10.0.0.0/16", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustPrefix(t, tt.candidate)
			target := mustPrefix(t, tt.target)
			if got := Matches(tt.rel, c, target); got != tt.want {
				t.Errorf("Matches(%s, %s, %s) = %v, want %v", tt.rel, c, target, got, tt.want)
			}
		})
	}
}

func TestMatchesZeroValues(t *testing.T) {
	if Matches(Within, netip.Prefix{}, mustPrefix(t, "10.0.0.0/8")) {
		t.Error("invalid candidate should never match")
	}
	if Matches(Contains, mustPrefix(t, "10.0.0.0/8"), netip.Prefix{}) {
		t.Error("invalid target should never match")
	}
}

func TestContainsAddr(t *testing.T) {
	net24 := mustPrefix(t, "10.0.0.0/24")

	if !ContainsAddr(net24, netip.MustParseAddr("10.0.0.1")) {
		t.Error("10.0.0.1 should be in 10.0.0.0/24")
	}
	if ContainsAddr(net24, netip.MustParseAddr("10.0.1.1")) {
		t.Error("10.0.1.1 should not be in 10.0.0.0/24")
	}
	if ContainsAddr(net24, netip.MustParseAddr("2001:db8::1")) {
		t.Error("cross-family lookup should be false")
	}
	if !ContainsAddr(mustPrefix(t, "2001:db8::/64"), netip.MustParseAddr("2001:db8::ffff")) {
		t.Error("2001:db8::ffff should be in 2001:db8::/64")
	}
}

func TestParseRelation(t *testing.T) {
	for _, s := range []string{"within", "within_include", "contains", "equals"} {
		if _, err := ParseRelation(s); err != nil {
			t.Errorf("ParseRelation(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParseRelation("overlaps"); err == nil {
		t.Error("expected error for unknown relation")
	}
}
