package seed

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

const seedYAML = `
regions:
  - name: Europe
    slug: europe
sites:
  - name: Berlin DC
    slug: ber1
    region: europe
vrfs:
  - name: Production
    rd: "65000:100"
    enforce_unique: true
rirs:
  - name: RFC 1918
    slug: rfc1918
    is_private: true
aggregates:
  - prefix: 10.0.0.0/8
    rir: rfc1918
roles:
  - name: Production
    slug: production
vlan_groups:
  - name: Berlin VLANs
    slug: ber1-vlans
    site: ber1
vlans:
  - vid: 100
    name: servers
    group: ber1-vlans
    site: ber1
    role: production
devices:
  - name: core-sw-1
    site: ber1
virtual_machines:
  - name: vm-web-1
interfaces:
  - name: eth0
    device: core-sw-1
  - name: eth0
    virtual_machine: vm-web-1
prefixes:
  - prefix: 10.0.0.0/16
    site: ber1
    status: container
  - prefix: 10.0.1.0/24
    site: ber1
    vrf: "65000:100"
    vlan: 100
    role: production
ip_addresses:
  - address: 10.0.1.1/24
    vrf: "65000:100"
    device: core-sw-1
    interface: eth0
    dns_name: gw.example.com
services:
  - name: ssh
    protocol: tcp
    port: 22
    device: core-sw-1
`

func newTestImporter(t *testing.T) (*Importer, storage.Storage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	n := 0
	genID := func() string {
		n++
		return fmt.Sprintf("seed-%d", n)
	}
	return NewImporter(store, genID), store
}

func TestLoad(t *testing.T) {
	im, store := newTestImporter(t)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o600); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}

	if err := im.Load(path); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// References were resolved to IDs
	prefixes, err := store.ListPrefixes(filter.PrefixFilter{VRFRDs: []string{"65000:100"}, MaskLength: -1})
	if err != nil {
		t.Fatalf("ListPrefixes() error: %v", err)
	}
	if len(prefixes) != 1 || prefixes[0].Prefix != "10.0.1.0/24" {
		t.Fatalf("Expected the VRF-bound prefix, got %+v", prefixes)
	}
	if prefixes[0].VLANID == "" || prefixes[0].RoleID == "" || prefixes[0].SiteID == "" {
		t.Errorf("Expected vlan, role and site to be resolved: %+v", prefixes[0])
	}

	addrs, err := store.ListIPAddresses(filter.IPAddressFilter{DNSNames: []string{"gw.example.com"}, MaskLength: -1})
	if err != nil {
		t.Fatalf("ListIPAddresses() error: %v", err)
	}
	if len(addrs) != 1 {
		t.Fatalf("Expected 1 address, got %d", len(addrs))
	}
	if addrs[0].InterfaceID == "" {
		t.Error("Expected the address to be bound to an interface")
	}

	q := url.Values{"device": []string{"core-sw-1"}}
	f, errs := filter.ParseService(q)
	if errs.Any() {
		t.Fatalf("ParseService() errors: %v", errs)
	}
	services, err := store.ListServices(f)
	if err != nil {
		t.Fatalf("ListServices() error: %v", err)
	}
	if len(services) != 1 || services[0].Port != 22 {
		t.Errorf("Expected the ssh service, got %+v", services)
	}

	regions, _ := store.ListRegions()
	sites, _ := store.ListSites()
	if len(regions) != 1 || len(sites) != 1 {
		t.Errorf("Expected 1 region and 1 site, got %d and %d", len(regions), len(sites))
	}
}

func TestApply_UnknownReference(t *testing.T) {
	im, _ := newTestImporter(t)

	var f File
	f.Prefixes = append(f.Prefixes, struct {
		Prefix      string `yaml:"prefix"`
		Site        string `yaml:"site,omitempty"`
		VRF         string `yaml:"vrf,omitempty"`
		VLAN        int    `yaml:"vlan,omitempty"`
		Role        string `yaml:"role,omitempty"`
		Status      string `yaml:"status,omitempty"`
		IsPool      bool   `yaml:"is_pool,omitempty"`
		Description string `yaml:"description,omitempty"`
	}{Prefix: "10.0.0.0/24", VRF: "65000:999"})

	if err := im.Apply(&f); err == nil {
		t.Error("Expected an error for an unknown VRF reference")
	}
}

func TestApply_DuplicateVIDInGroup(t *testing.T) {
	im, _ := newTestImporter(t)

	var f File
	f.VLANGroups = append(f.VLANGroups, struct {
		Name string `yaml:"name"`
		Slug string `yaml:"slug"`
		Site string `yaml:"site,omitempty"`
	}{Name: "G", Slug: "g"})

	vlan := struct {
		VID    int    `yaml:"vid"`
		Name   string `yaml:"name"`
		Group  string `yaml:"group,omitempty"`
		Site   string `yaml:"site,omitempty"`
		Role   string `yaml:"role,omitempty"`
		Status string `yaml:"status,omitempty"`
	}{VID: 100, Name: "a", Group: "g"}
	f.VLANs = append(f.VLANs, vlan)
	vlan.Name = "b"
	f.VLANs = append(f.VLANs, vlan)

	if err := im.Apply(&f); err == nil {
		t.Error("Expected an error for a duplicate VID in a group")
	}
}
