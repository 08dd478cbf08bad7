package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/martinsuchenak/ipamd/internal/log"
	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

// File is the YAML document layout accepted by the importer. Objects refer
// to each other by natural keys (slug, RD, name), not IDs, so files stay
// readable and can be written by hand.
type File struct {
	Regions []struct {
		Name   string `yaml:"name"`
		Slug   string `yaml:"slug"`
		Parent string `yaml:"parent,omitempty"`
	} `yaml:"regions,omitempty"`
	Sites []struct {
		Name   string `yaml:"name"`
		Slug   string `yaml:"slug"`
		Region string `yaml:"region,omitempty"`
	} `yaml:"sites,omitempty"`
	VRFs []struct {
		Name          string `yaml:"name"`
		RD            string `yaml:"rd"`
		EnforceUnique bool   `yaml:"enforce_unique,omitempty"`
		Description   string `yaml:"description,omitempty"`
	} `yaml:"vrfs,omitempty"`
	RIRs []struct {
		Name      string `yaml:"name"`
		Slug      string `yaml:"slug"`
		IsPrivate bool   `yaml:"is_private,omitempty"`
	} `yaml:"rirs,omitempty"`
	Aggregates []struct {
		Prefix      string `yaml:"prefix"`
		RIR         string `yaml:"rir"`
		DateAdded   string `yaml:"date_added,omitempty"`
		Description string `yaml:"description,omitempty"`
	} `yaml:"aggregates,omitempty"`
	Roles []struct {
		Name   string `yaml:"name"`
		Slug   string `yaml:"slug"`
		Weight int    `yaml:"weight,omitempty"`
	} `yaml:"roles,omitempty"`
	VLANGroups []struct {
		Name string `yaml:"name"`
		Slug string `yaml:"slug"`
		Site string `yaml:"site,omitempty"`
	} `yaml:"vlan_groups,omitempty"`
	VLANs []struct {
		VID    int    `yaml:"vid"`
		Name   string `yaml:"name"`
		Group  string `yaml:"group,omitempty"`
		Site   string `yaml:"site,omitempty"`
		Role   string `yaml:"role,omitempty"`
		Status string `yaml:"status,omitempty"`
	} `yaml:"vlans,omitempty"`
	Devices []struct {
		Name string `yaml:"name"`
		Site string `yaml:"site,omitempty"`
	} `yaml:"devices,omitempty"`
	VirtualMachines []struct {
		Name string `yaml:"name"`
	} `yaml:"virtual_machines,omitempty"`
	Interfaces []struct {
		Name           string `yaml:"name"`
		Device         string `yaml:"device,omitempty"`
		VirtualMachine string `yaml:"virtual_machine,omitempty"`
	} `yaml:"interfaces,omitempty"`
	Prefixes []struct {
		Prefix      string `yaml:"prefix"`
		Site        string `yaml:"site,omitempty"`
		VRF         string `yaml:"vrf,omitempty"`
		VLAN        int    `yaml:"vlan,omitempty"`
		Role        string `yaml:"role,omitempty"`
		Status      string `yaml:"status,omitempty"`
		IsPool      bool   `yaml:"is_pool,omitempty"`
		Description string `yaml:"description,omitempty"`
	} `yaml:"prefixes,omitempty"`
	IPAddresses []struct {
		Address     string `yaml:"address"`
		VRF         string `yaml:"vrf,omitempty"`
		Device      string `yaml:"device,omitempty"`
		Interface   string `yaml:"interface,omitempty"`
		Status      string `yaml:"status,omitempty"`
		Role        string `yaml:"role,omitempty"`
		DNSName     string `yaml:"dns_name,omitempty"`
		Description string `yaml:"description,omitempty"`
	} `yaml:"ip_addresses,omitempty"`
	Services []struct {
		Name           string `yaml:"name"`
		Protocol       string `yaml:"protocol"`
		Port           int    `yaml:"port"`
		Device         string `yaml:"device,omitempty"`
		VirtualMachine string `yaml:"virtual_machine,omitempty"`
	} `yaml:"services,omitempty"`
}

// Importer loads seed files into storage
type Importer struct {
	store storage.Storage
	genID func() string

	// natural key -> generated ID, per object kind
	regions map[string]string
	sites   map[string]string
	vrfs    map[string]string
	rirs    map[string]string
	roles   map[string]string
	groups  map[string]string
	vlans   map[int]string
	devices map[string]string
	vms     map[string]string
	ifaces  map[string]string
}

// NewImporter creates an importer writing into the given store
func NewImporter(store storage.Storage, genID func() string) *Importer {
	return &Importer{
		store:   store,
		genID:   genID,
		regions: make(map[string]string),
		sites:   make(map[string]string),
		vrfs:    make(map[string]string),
		rirs:    make(map[string]string),
		roles:   make(map[string]string),
		groups:  make(map[string]string),
		vlans:   make(map[int]string),
		devices: make(map[string]string),
		vms:     make(map[string]string),
		ifaces:  make(map[string]string),
	}
}

// Load reads and applies a YAML seed file
func (im *Importer) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}
	return im.Apply(&f)
}

// Apply creates every object in the file, in dependency order
func (im *Importer) Apply(f *File) error {
	for _, r := range f.Regions {
		region := model.Region{ID: im.genID(), Name: r.Name, Slug: r.Slug}
		if r.Parent != "" {
			id, ok := im.regions[r.Parent]
			if !ok {
				return fmt.Errorf("region %q: unknown parent region %q", r.Slug, r.Parent)
			}
			region.ParentID = id
		}
		if err := im.store.CreateRegion(&region); err != nil {
			return fmt.Errorf("region %q: %w", r.Slug, err)
		}
		im.regions[r.Slug] = region.ID
	}

	for _, s := range f.Sites {
		site := model.Site{ID: im.genID(), Name: s.Name, Slug: s.Slug}
		if s.Region != "" {
			id, ok := im.regions[s.Region]
			if !ok {
				return fmt.Errorf("site %q: unknown region %q", s.Slug, s.Region)
			}
			site.RegionID = id
		}
		if err := im.store.CreateSite(&site); err != nil {
			return fmt.Errorf("site %q: %w", s.Slug, err)
		}
		im.sites[s.Slug] = site.ID
	}

	for _, v := range f.VRFs {
		vrf := model.VRF{ID: im.genID(), Name: v.Name, RD: v.RD, EnforceUnique: v.EnforceUnique, Description: v.Description}
		if err := im.store.CreateVRF(&vrf); err != nil {
			return fmt.Errorf("vrf %q: %w", v.RD, err)
		}
		im.vrfs[v.RD] = vrf.ID
	}

	for _, r := range f.RIRs {
		rir := model.RIR{ID: im.genID(), Name: r.Name, Slug: r.Slug, IsPrivate: r.IsPrivate}
		if err := im.store.CreateRIR(&rir); err != nil {
			return fmt.Errorf("rir %q: %w", r.Slug, err)
		}
		im.rirs[r.Slug] = rir.ID
	}

	for _, a := range f.Aggregates {
		id, ok := im.rirs[a.RIR]
		if !ok {
			return fmt.Errorf("aggregate %q: unknown rir %q", a.Prefix, a.RIR)
		}
		agg := model.Aggregate{ID: im.genID(), Prefix: a.Prefix, RIRID: id, DateAdded: a.DateAdded, Description: a.Description}
		if err := im.store.CreateAggregate(&agg); err != nil {
			return fmt.Errorf("aggregate %q: %w", a.Prefix, err)
		}
	}

	for _, r := range f.Roles {
		role := model.Role{ID: im.genID(), Name: r.Name, Slug: r.Slug, Weight: r.Weight}
		if err := im.store.CreateRole(&role); err != nil {
			return fmt.Errorf("role %q: %w", r.Slug, err)
		}
		im.roles[r.Slug] = role.ID
	}

	for _, g := range f.VLANGroups {
		group := model.VLANGroup{ID: im.genID(), Name: g.Name, Slug: g.Slug}
		if g.Site != "" {
			id, ok := im.sites[g.Site]
			if !ok {
				return fmt.Errorf("vlan group %q: unknown site %q", g.Slug, g.Site)
			}
			group.SiteID = id
		}
		if err := im.store.CreateVLANGroup(&group); err != nil {
			return fmt.Errorf("vlan group %q: %w", g.Slug, err)
		}
		im.groups[g.Slug] = group.ID
	}

	for _, v := range f.VLANs {
		vlan := model.VLAN{ID: im.genID(), VID: v.VID, Name: v.Name, Status: v.Status}
		if v.Group != "" {
			id, ok := im.groups[v.Group]
			if !ok {
				return fmt.Errorf("vlan %d: unknown group %q", v.VID, v.Group)
			}
			vlan.GroupID = id
		}
		if v.Site != "" {
			id, ok := im.sites[v.Site]
			if !ok {
				return fmt.Errorf("vlan %d: unknown site %q", v.VID, v.Site)
			}
			vlan.SiteID = id
		}
		if v.Role != "" {
			id, ok := im.roles[v.Role]
			if !ok {
				return fmt.Errorf("vlan %d: unknown role %q", v.VID, v.Role)
			}
			vlan.RoleID = id
		}
		if err := im.store.CreateVLAN(&vlan); err != nil {
			return fmt.Errorf("vlan %d: %w", v.VID, err)
		}
		im.vlans[v.VID] = vlan.ID
	}

	for _, d := range f.Devices {
		device := model.Device{ID: im.genID(), Name: d.Name}
		if d.Site != "" {
			id, ok := im.sites[d.Site]
			if !ok {
				return fmt.Errorf("device %q: unknown site %q", d.Name, d.Site)
			}
			device.SiteID = id
		}
		if err := im.store.CreateDevice(&device); err != nil {
			return fmt.Errorf("device %q: %w", d.Name, err)
		}
		im.devices[d.Name] = device.ID
	}

	for _, v := range f.VirtualMachines {
		vm := model.VirtualMachine{ID: im.genID(), Name: v.Name}
		if err := im.store.CreateVirtualMachine(&vm); err != nil {
			return fmt.Errorf("virtual machine %q: %w", v.Name, err)
		}
		im.vms[v.Name] = vm.ID
	}

	for _, i := range f.Interfaces {
		iface := model.Interface{ID: im.genID(), Name: i.Name}
		key := i.Name
		if i.Device != "" {
			id, ok := im.devices[i.Device]
			if !ok {
				return fmt.Errorf("interface %q: unknown device %q", i.Name, i.Device)
			}
			iface.DeviceID = id
			key = i.Device + "/" + i.Name
		}
		if i.VirtualMachine != "" {
			id, ok := im.vms[i.VirtualMachine]
			if !ok {
				return fmt.Errorf("interface %q: unknown virtual machine %q", i.Name, i.VirtualMachine)
			}
			iface.VirtualMachineID = id
			key = i.VirtualMachine + "/" + i.Name
		}
		if err := im.store.CreateInterface(&iface); err != nil {
			return fmt.Errorf("interface %q: %w", i.Name, err)
		}
		im.ifaces[key] = iface.ID
	}

	for _, p := range f.Prefixes {
		prefix := model.Prefix{ID: im.genID(), Prefix: p.Prefix, Status: p.Status, IsPool: p.IsPool, Description: p.Description}
		if p.Site != "" {
			id, ok := im.sites[p.Site]
			if !ok {
				return fmt.Errorf("prefix %q: unknown site %q", p.Prefix, p.Site)
			}
			prefix.SiteID = id
		}
		if p.VRF != "" {
			id, ok := im.vrfs[p.VRF]
			if !ok {
				return fmt.Errorf("prefix %q: unknown vrf %q", p.Prefix, p.VRF)
			}
			prefix.VRFID = id
		}
		if p.VLAN != 0 {
			id, ok := im.vlans[p.VLAN]
			if !ok {
				return fmt.Errorf("prefix %q: unknown vlan %d", p.Prefix, p.VLAN)
			}
			prefix.VLANID = id
		}
		if p.Role != "" {
			id, ok := im.roles[p.Role]
			if !ok {
				return fmt.Errorf("prefix %q: unknown role %q", p.Prefix, p.Role)
			}
			prefix.RoleID = id
		}
		if err := im.store.CreatePrefix(&prefix); err != nil {
			return fmt.Errorf("prefix %q: %w", p.Prefix, err)
		}
	}

	for _, a := range f.IPAddresses {
		ip := model.IPAddress{ID: im.genID(), Address: a.Address, Status: a.Status, Role: a.Role, DNSName: a.DNSName, Description: a.Description}
		if a.VRF != "" {
			id, ok := im.vrfs[a.VRF]
			if !ok {
				return fmt.Errorf("address %q: unknown vrf %q", a.Address, a.VRF)
			}
			ip.VRFID = id
		}
		if a.Interface != "" {
			key := a.Interface
			if a.Device != "" {
				key = a.Device + "/" + a.Interface
			}
			id, ok := im.ifaces[key]
			if !ok {
				return fmt.Errorf("address %q: unknown interface %q", a.Address, key)
			}
			ip.InterfaceID = id
		}
		if err := im.store.CreateIPAddress(&ip); err != nil {
			return fmt.Errorf("address %q: %w", a.Address, err)
		}
	}

	for _, s := range f.Services {
		service := model.Service{ID: im.genID(), Name: s.Name, Protocol: s.Protocol, Port: s.Port}
		if s.Device != "" {
			id, ok := im.devices[s.Device]
			if !ok {
				return fmt.Errorf("service %q: unknown device %q", s.Name, s.Device)
			}
			service.DeviceID = id
		}
		if s.VirtualMachine != "" {
			id, ok := im.vms[s.VirtualMachine]
			if !ok {
				return fmt.Errorf("service %q: unknown virtual machine %q", s.Name, s.VirtualMachine)
			}
			service.VirtualMachineID = id
		}
		if err := im.store.CreateService(&service); err != nil {
			return fmt.Errorf("service %q: %w", s.Name, err)
		}
	}

	log.Info("Seed data applied",
		"regions", len(f.Regions), "sites", len(f.Sites), "vrfs", len(f.VRFs),
		"prefixes", len(f.Prefixes), "addresses", len(f.IPAddresses), "vlans", len(f.VLANs))
	return nil
}
