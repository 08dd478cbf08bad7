package storage

import (
	"errors"
	"time"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
)

var (
	ErrRegionNotFound         = errors.New("region not found")
	ErrSiteNotFound           = errors.New("site not found")
	ErrVRFNotFound            = errors.New("VRF not found")
	ErrRIRNotFound            = errors.New("RIR not found")
	ErrAggregateNotFound      = errors.New("aggregate not found")
	ErrRoleNotFound           = errors.New("role not found")
	ErrPrefixNotFound         = errors.New("prefix not found")
	ErrIPAddressNotFound      = errors.New("IP address not found")
	ErrVLANGroupNotFound      = errors.New("VLAN group not found")
	ErrVLANNotFound           = errors.New("VLAN not found")
	ErrServiceNotFound        = errors.New("service not found")
	ErrDeviceNotFound         = errors.New("device not found")
	ErrVirtualMachineNotFound = errors.New("virtual machine not found")
	ErrInterfaceNotFound      = errors.New("interface not found")
	ErrDuplicate              = errors.New("duplicate entry")
	ErrDuplicatePrefix        = errors.New("duplicate prefix in VRF")
	ErrDuplicateAddress       = errors.New("duplicate address in VRF")
)

// DCIMStore holds the minimal device inventory that IPAM objects attach to
type DCIMStore interface {
	ListRegions() ([]model.Region, error)
	GetRegion(id string) (*model.Region, error)
	CreateRegion(r *model.Region) error
	DeleteRegion(id string) error

	ListSites() ([]model.Site, error)
	GetSite(id string) (*model.Site, error)
	CreateSite(s *model.Site) error
	DeleteSite(id string) error

	ListDevices() ([]model.Device, error)
	GetDevice(id string) (*model.Device, error)
	CreateDevice(d *model.Device) error
	DeleteDevice(id string) error

	ListVirtualMachines() ([]model.VirtualMachine, error)
	GetVirtualMachine(id string) (*model.VirtualMachine, error)
	CreateVirtualMachine(vm *model.VirtualMachine) error
	DeleteVirtualMachine(id string) error

	ListInterfaces() ([]model.Interface, error)
	GetInterface(id string) (*model.Interface, error)
	CreateInterface(i *model.Interface) error
	DeleteInterface(id string) error
}

// VRFStore manages virtual routing and forwarding instances
type VRFStore interface {
	ListVRFs(f filter.VRFFilter) ([]model.VRF, error)
	GetVRF(id string) (*model.VRF, error)
	CreateVRF(v *model.VRF) error
	UpdateVRF(v *model.VRF) error
	DeleteVRF(id string) error
}

// RIRStore manages registries and their aggregates
type RIRStore interface {
	ListRIRs(f filter.RIRFilter) ([]model.RIR, error)
	GetRIR(id string) (*model.RIR, error)
	CreateRIR(r *model.RIR) error
	UpdateRIR(r *model.RIR) error
	DeleteRIR(id string) error

	ListAggregates(f filter.AggregateFilter) ([]model.Aggregate, error)
	GetAggregate(id string) (*model.Aggregate, error)
	CreateAggregate(a *model.Aggregate) error
	UpdateAggregate(a *model.Aggregate) error
	DeleteAggregate(id string) error
}

// RoleStore manages functional roles shared by prefixes and VLANs
type RoleStore interface {
	ListRoles(f filter.RoleFilter) ([]model.Role, error)
	GetRole(id string) (*model.Role, error)
	CreateRole(r *model.Role) error
	UpdateRole(r *model.Role) error
	DeleteRole(id string) error
}

// PrefixStore manages networks
type PrefixStore interface {
	ListPrefixes(f filter.PrefixFilter) ([]model.Prefix, error)
	GetPrefix(id string) (*model.Prefix, error)
	CreatePrefix(p *model.Prefix) error
	UpdatePrefix(p *model.Prefix) error
	DeletePrefix(id string) error
}

// IPAddressStore manages host addresses
type IPAddressStore interface {
	ListIPAddresses(f filter.IPAddressFilter) ([]model.IPAddress, error)
	GetIPAddress(id string) (*model.IPAddress, error)
	CreateIPAddress(ip *model.IPAddress) error
	UpdateIPAddress(ip *model.IPAddress) error
	DeleteIPAddress(id string) error
	UpdateIPAddressDNSStatus(id string, checkedAt time.Time, ok bool) error
}

// VLANStore manages VLAN groups and VLANs
type VLANStore interface {
	ListVLANGroups(f filter.VLANGroupFilter) ([]model.VLANGroup, error)
	GetVLANGroup(id string) (*model.VLANGroup, error)
	CreateVLANGroup(g *model.VLANGroup) error
	UpdateVLANGroup(g *model.VLANGroup) error
	DeleteVLANGroup(id string) error

	ListVLANs(f filter.VLANFilter) ([]model.VLAN, error)
	GetVLAN(id string) (*model.VLAN, error)
	CreateVLAN(v *model.VLAN) error
	UpdateVLAN(v *model.VLAN) error
	DeleteVLAN(id string) error
}

// ServiceStore manages services bound to devices and virtual machines
type ServiceStore interface {
	ListServices(f filter.ServiceFilter) ([]model.Service, error)
	GetService(id string) (*model.Service, error)
	CreateService(s *model.Service) error
	UpdateService(s *model.Service) error
	DeleteService(id string) error
}

// Storage is the full persistence interface
type Storage interface {
	DCIMStore
	VRFStore
	RIRStore
	RoleStore
	PrefixStore
	IPAddressStore
	VLANStore
	ServiceStore
	Close() error
}
