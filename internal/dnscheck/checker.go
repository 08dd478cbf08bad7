package dnscheck

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"github.com/miekg/dns"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/log"
	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

const dnsTimeout = 5 * time.Second

// exchangeFunc performs a DNS query. It matches dns.Client.ExchangeContext
// so tests can substitute a canned responder.
type exchangeFunc func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error)

// Checker verifies that the dns_name recorded on an IP address actually
// resolves to that address.
type Checker struct {
	store    storage.IPAddressStore
	resolver string
	exchange exchangeFunc
}

// NewChecker creates a checker that queries the given resolver, e.g.
// "9.9.9.9:53".
func NewChecker(store storage.IPAddressStore, resolver string) *Checker {
	client := &dns.Client{Timeout: dnsTimeout}
	return &Checker{
		store:    store,
		resolver: resolver,
		exchange: func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
			r, _, err := client.ExchangeContext(ctx, m, addr)
			return r, err
		},
	}
}

// Run checks every address that has a DNS name and records the outcome
func (c *Checker) Run(ctx context.Context) error {
	addresses, err := c.store.ListIPAddresses(filter.IPAddressFilter{MaskLength: -1})
	if err != nil {
		return fmt.Errorf("listing addresses: %w", err)
	}

	checked := 0
	for _, ip := range addresses {
		if ip.DNSName == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := c.Verify(ctx, &ip)
		if err != nil {
			log.Warn("DNS check failed", "address", ip.Address, "dns_name", ip.DNSName, "error", err)
			ok = false
		}
		if err := c.store.UpdateIPAddressDNSStatus(ip.ID, time.Now(), ok); err != nil {
			log.Error("Failed to record DNS check", "address", ip.Address, "error", err)
			continue
		}
		checked++
	}

	log.Info("DNS verification pass complete", "checked", checked)
	return nil
}

// Verify reports whether the address's DNS name resolves to its host
// address. IPv4 addresses are checked against A records, IPv6 against AAAA.
func (c *Checker) Verify(ctx context.Context, ip *model.IPAddress) (bool, error) {
	host, err := ip.Host()
	if err != nil {
		return false, err
	}

	qtype := dns.TypeA
	if host.Is6() {
		qtype = dns.TypeAAAA
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(ip.DNSName), qtype)

	r, err := c.exchange(ctx, m, c.resolver)
	if err != nil {
		return false, err
	}
	if r.Rcode != dns.RcodeSuccess {
		return false, nil
	}

	for _, rr := range r.Answer {
		var answered netip.Addr
		switch a := rr.(type) {
		case *dns.A:
			answered, _ = netip.AddrFromSlice(a.A)
		case *dns.AAAA:
			answered, _ = netip.AddrFromSlice(a.AAAA)
		default:
			continue
		}
		if answered.Unmap() == host {
			return true, nil
		}
	}
	return false, nil
}
