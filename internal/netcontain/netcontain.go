// Package netcontain implements spatial relations between IP networks:
// whether one network sits inside another, contains another, or equals it,
// plus host-in-network matching. All comparisons are family-aware; an IPv4
// network never matches an IPv6 target.
package netcontain

import (
	"fmt"
	"net/netip"
)

// Relation is a containment relation between a candidate network and a
// target network.
type Relation string

const (
	// Within matches candidates strictly inside the target (equal excluded)
	Within Relation = "within"
	// WithinInclude matches candidates inside or equal to the target
	WithinInclude Relation = "within_include"
	// Contains matches candidates that cover the target (equal included)
	Contains Relation = "contains"
	// Equals matches only the exact same network
	Equals Relation = "equals"
)

// ParseRelation converts a string to a Relation
func ParseRelation(s string) (Relation, error) {
	switch Relation(s) {
	case Within, WithinInclude, Contains, Equals:
		return Relation(s), nil
	}
	return "", fmt.Errorf("unknown containment relation %q", s)
}

// Matches reports whether candidate satisfies the relation rel against
// target. Both prefixes are canonicalized first, so host bits in either
// argument do not affect the result. Cross-family comparisons are false.
func Matches(rel Relation, candidate, target netip.Prefix) bool {
	if !candidate.IsValid() || !target.IsValid() {
		return false
	}
	c := candidate.Masked()
	t := target.Masked()
	if c.Addr().Is4() != t.Addr().Is4() {
		return false
	}

	switch rel {
	case Equals:
		return c == t
	case Within:
		return t.Bits() < c.Bits() && t.Contains(c.Addr())
	case WithinInclude:
		return t.Bits() <= c.Bits() && t.Contains(c.Addr())
	case Contains:
		return c.Bits() <= t.Bits() && c.Contains(t.Addr())
	}
	return false
}

// ContainsAddr reports whether the network contains the host address.
// Cross-family lookups are false.
func ContainsAddr(network netip.Prefix, addr netip.Addr) bool {
	if !network.IsValid() || !addr.IsValid() {
		return false
	}
	if network.Addr().Is4() != addr.Is4() {
		return false
	}
	return network.Masked().Contains(addr)
}
