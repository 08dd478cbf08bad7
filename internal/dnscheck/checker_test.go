package dnscheck

import (
	"context"
	"net"
	"testing"

	"github.com/miekg/dns"

	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

// cannedChecker returns a checker whose resolver always answers with the
// given records.
func cannedChecker(answers []dns.RR, rcode int) *Checker {
	return &Checker{
		resolver: "test:53",
		exchange: func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
			r := new(dns.Msg)
			r.SetReply(m)
			r.Rcode = rcode
			r.Answer = answers
			return r, nil
		},
	}
}

func aRecord(name, ip string) *dns.A {
	return &dns.A{
		Hdr: dns.RR_Header{Name: dns.Fqdn(name), Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 300},
		A:   net.ParseIP(ip).To4(),
	}
}

func aaaaRecord(name, ip string) *dns.AAAA {
	return &dns.AAAA{
		Hdr:  dns.RR_Header{Name: dns.Fqdn(name), Rrtype: dns.TypeAAAA, Class: dns.ClassINET, Ttl: 300},
		AAAA: net.ParseIP(ip),
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		ip      model.IPAddress
		answers []dns.RR
		rcode   int
		want    bool
	}{
		{
			name:    "matching A record",
			ip:      model.IPAddress{Address: "10.0.0.1/24", DNSName: "host1.example.com"},
			answers: []dns.RR{aRecord("host1.example.com", "10.0.0.1")},
			want:    true,
		},
		{
			name:    "wrong A record",
			ip:      model.IPAddress{Address: "10.0.0.1/24", DNSName: "host1.example.com"},
			answers: []dns.RR{aRecord("host1.example.com", "10.0.0.2")},
			want:    false,
		},
		{
			name: "one of several answers matches",
			ip:   model.IPAddress{Address: "10.0.0.1/24", DNSName: "host1.example.com"},
			answers: []dns.RR{
				aRecord("host1.example.com", "192.0.2.7"),
				aRecord("host1.example.com", "10.0.0.1"),
			},
			want: true,
		},
		{
			name:    "matching AAAA record",
			ip:      model.IPAddress{Address: "2001:db8::1/64", DNSName: "v6.example.com"},
			answers: []dns.RR{aaaaRecord("v6.example.com", "2001:db8::1")},
			want:    true,
		},
		{
			name:  "nxdomain",
			ip:    model.IPAddress{Address: "10.0.0.1/24", DNSName: "gone.example.com"},
			rcode: dns.RcodeNameError,
			want:  false,
		},
		{
			name: "no answers",
			ip:   model.IPAddress{Address: "10.0.0.1/24", DNSName: "empty.example.com"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cannedChecker(tt.answers, tt.rcode)
			got, err := c.Verify(context.Background(), &tt.ip)
			if err != nil {
				t.Fatalf("Verify() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerify_QueryType(t *testing.T) {
	var asked uint16
	c := &Checker{
		resolver: "test:53",
		exchange: func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
			asked = m.Question[0].Qtype
			r := new(dns.Msg)
			r.SetReply(m)
			return r, nil
		},
	}

	c.Verify(context.Background(), &model.IPAddress{Address: "10.0.0.1/24", DNSName: "a.example.com"})
	if asked != dns.TypeA {
		t.Errorf("Expected A query for IPv4, got qtype %d", asked)
	}

	c.Verify(context.Background(), &model.IPAddress{Address: "2001:db8::1/64", DNSName: "b.example.com"})
	if asked != dns.TypeAAAA {
		t.Errorf("Expected AAAA query for IPv6, got qtype %d", asked)
	}
}

func TestRun_RecordsOutcome(t *testing.T) {
	store, err := storage.NewSQLiteStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	defer store.Close()

	seed := []model.IPAddress{
		{ID: "ip-1", Address: "10.0.0.1/24", DNSName: "host1.example.com"},
		{ID: "ip-2", Address: "10.0.0.2/24", DNSName: "host2.example.com"},
		{ID: "ip-3", Address: "10.0.0.3/24"},
	}
	for i := range seed {
		if err := store.CreateIPAddress(&seed[i]); err != nil {
			t.Fatalf("Failed to create address: %v", err)
		}
	}

	c := &Checker{
		store:    store,
		resolver: "test:53",
		exchange: func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
			r := new(dns.Msg)
			r.SetReply(m)
			// Only host1 resolves correctly
			if m.Question[0].Name == "host1.example.com." {
				r.Answer = []dns.RR{aRecord("host1.example.com", "10.0.0.1")}
			}
			return r, nil
		},
	}

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	ip1, _ := store.GetIPAddress("ip-1")
	if ip1.DNSOK == nil || !*ip1.DNSOK {
		t.Error("Expected ip-1 to pass the DNS check")
	}
	if ip1.DNSCheckedAt == nil {
		t.Error("Expected ip-1 check time to be recorded")
	}

	ip2, _ := store.GetIPAddress("ip-2")
	if ip2.DNSOK == nil || *ip2.DNSOK {
		t.Error("Expected ip-2 to fail the DNS check")
	}

	// No DNS name means no check
	ip3, _ := store.GetIPAddress("ip-3")
	if ip3.DNSOK != nil || ip3.DNSCheckedAt != nil {
		t.Error("Expected ip-3 to be skipped")
	}
}
