package model

// Address families
const (
	FamilyIPv4 = 4
	FamilyIPv6 = 6
)

// Prefix statuses
const (
	PrefixStatusContainer  = "container"
	PrefixStatusActive     = "active"
	PrefixStatusReserved   = "reserved"
	PrefixStatusDeprecated = "deprecated"
)

// IP address statuses
const (
	IPAddressStatusActive     = "active"
	IPAddressStatusReserved   = "reserved"
	IPAddressStatusDeprecated = "deprecated"
	IPAddressStatusDHCP       = "dhcp"
)

// IP address functional roles
const (
	IPAddressRoleLoopback  = "loopback"
	IPAddressRoleSecondary = "secondary"
	IPAddressRoleAnycast   = "anycast"
	IPAddressRoleVIP       = "vip"
	IPAddressRoleVRRP      = "vrrp"
	IPAddressRoleHSRP      = "hsrp"
	IPAddressRoleGLBP      = "glbp"
	IPAddressRoleCARP      = "carp"
)

// VLAN statuses
const (
	VLANStatusActive     = "active"
	VLANStatusReserved   = "reserved"
	VLANStatusDeprecated = "deprecated"
)

// Service protocols
const (
	ProtocolTCP = "tcp"
	ProtocolUDP = "udp"
)

var prefixStatuses = map[string]bool{
	PrefixStatusContainer:  true,
	PrefixStatusActive:     true,
	PrefixStatusReserved:   true,
	PrefixStatusDeprecated: true,
}

var ipAddressStatuses = map[string]bool{
	IPAddressStatusActive:     true,
	IPAddressStatusReserved:   true,
	IPAddressStatusDeprecated: true,
	IPAddressStatusDHCP:       true,
}

var ipAddressRoles = map[string]bool{
	IPAddressRoleLoopback:  true,
	IPAddressRoleSecondary: true,
	IPAddressRoleAnycast:   true,
	IPAddressRoleVIP:       true,
	IPAddressRoleVRRP:      true,
	IPAddressRoleHSRP:      true,
	IPAddressRoleGLBP:      true,
	IPAddressRoleCARP:      true,
}

var vlanStatuses = map[string]bool{
	VLANStatusActive:     true,
	VLANStatusReserved:   true,
	VLANStatusDeprecated: true,
}

// IsValidPrefixStatus reports whether s is a member of the prefix status set
func IsValidPrefixStatus(s string) bool { return prefixStatuses[s] }

// IsValidIPAddressStatus reports whether s is a member of the IP address status set
func IsValidIPAddressStatus(s string) bool { return ipAddressStatuses[s] }

// IsValidIPAddressRole reports whether s is a member of the IP address role set
func IsValidIPAddressRole(s string) bool { return ipAddressRoles[s] }

// IsValidVLANStatus reports whether s is a member of the VLAN status set
func IsValidVLANStatus(s string) bool { return vlanStatuses[s] }

// IsValidProtocol reports whether s is a supported service protocol
func IsValidProtocol(s string) bool { return s == ProtocolTCP || s == ProtocolUDP }
