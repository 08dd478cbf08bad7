package netcontain

import (
	"fmt"
	"math/big"
	"net/netip"

	"go4.org/netipx"
)

// AvailablePrefixes returns the unallocated space inside parent after
// subtracting the child networks, as a minimal list of canonical prefixes.
// Children outside the parent (or of the other family) are ignored by the
// set subtraction.
func AvailablePrefixes(parent netip.Prefix, children []netip.Prefix) ([]netip.Prefix, error) {
	var b netipx.IPSetBuilder
	b.AddPrefix(parent.Masked())
	for _, c := range children {
		b.RemovePrefix(c.Masked())
	}
	set, err := b.IPSet()
	if err != nil {
		return nil, fmt.Errorf("computing available prefixes: %w", err)
	}
	return set.Prefixes(), nil
}

// FirstAvailablePrefix carves the first free network of the requested mask
// length out of parent. Returns false when no gap is large enough.
func FirstAvailablePrefix(parent netip.Prefix, children []netip.Prefix, bits int) (netip.Prefix, bool, error) {
	if bits < parent.Bits() || bits > parent.Addr().BitLen() {
		return netip.Prefix{}, false, fmt.Errorf("requested mask length /%d is not valid within %s", bits, parent)
	}
	avail, err := AvailablePrefixes(parent, children)
	if err != nil {
		return netip.Prefix{}, false, err
	}
	for _, a := range avail {
		if a.Bits() <= bits {
			p, err := a.Addr().Prefix(bits)
			if err != nil {
				return netip.Prefix{}, false, err
			}
			return p, true, nil
		}
	}
	return netip.Prefix{}, false, nil
}

// AvailableAddrs returns up to limit free host addresses inside the network.
// For IPv4 networks that are not pools, the network and broadcast addresses
// are excluded (except /31 and /32).
func AvailableAddrs(network netip.Prefix, used []netip.Addr, isPool bool, limit int) ([]netip.Addr, error) {
	network = network.Masked()

	var b netipx.IPSetBuilder
	b.AddPrefix(network)

	if !isPool && network.Addr().Is4() && network.Bits() < 31 {
		r := netipx.RangeOfPrefix(network)
		b.Remove(r.From()) // network address
		b.Remove(r.To())   // broadcast address
	}
	for _, a := range used {
		b.Remove(a)
	}

	set, err := b.IPSet()
	if err != nil {
		return nil, fmt.Errorf("computing available addresses: %w", err)
	}

	var out []netip.Addr
	for _, r := range set.Ranges() {
		for a := r.From(); a.Compare(r.To()) <= 0; a = a.Next() {
			out = append(out, a)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// FirstAvailableAddr returns the first free host address inside the network
func FirstAvailableAddr(network netip.Prefix, used []netip.Addr, isPool bool) (netip.Addr, bool, error) {
	addrs, err := AvailableAddrs(network, used, isPool, 1)
	if err != nil {
		return netip.Addr{}, false, err
	}
	if len(addrs) == 0 {
		return netip.Addr{}, false, nil
	}
	return addrs[0], true, nil
}

// Utilization returns the fraction of parent covered by the child networks,
// in the range [0, 1]. Children are clipped to the parent before counting,
// so overlapping or out-of-range children never inflate the result.
func Utilization(parent netip.Prefix, children []netip.Prefix) (float64, error) {
	parent = parent.Masked()

	var pb netipx.IPSetBuilder
	pb.AddPrefix(parent)
	parentSet, err := pb.IPSet()
	if err != nil {
		return 0, err
	}

	var cb netipx.IPSetBuilder
	for _, c := range children {
		cb.AddPrefix(c.Masked())
	}
	cb.Intersect(parentSet)
	covered, err := cb.IPSet()
	if err != nil {
		return 0, err
	}

	total := parent.Addr().BitLen()
	coveredCount := new(big.Int)
	one := big.NewInt(1)
	for _, p := range covered.Prefixes() {
		coveredCount.Add(coveredCount, new(big.Int).Lsh(one, uint(total-p.Bits())))
	}
	parentCount := new(big.Int).Lsh(one, uint(total-parent.Bits()))

	ratio, _ := new(big.Rat).SetFrac(coveredCount, parentCount).Float64()
	return ratio, nil
}
