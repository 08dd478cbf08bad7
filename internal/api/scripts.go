package api

import (
	"context"
	"fmt"
	"net/netip"
	"regexp"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/netcontain"
	"github.com/martinsuchenak/ipamd/internal/script"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

var dnsNameRe = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?$`)

// RegisterBuiltinScripts installs the scripts that ship with the server
func RegisterBuiltinScripts(reg *script.Registry, store storage.Storage) error {
	if err := reg.Register(allocatePrefixScript(store)); err != nil {
		return err
	}
	return reg.Register(reserveIPScript(store))
}

func intp(n int) *int { return &n }

// allocatePrefixScript carves a child network of the requested size out of a
// parent prefix and records it.
func allocatePrefixScript(store storage.Storage) *script.Script {
	return &script.Script{
		Name:        "allocate_prefix",
		Description: "Allocate the next available child prefix of a given size",
		Vars: []script.Variable{
			&script.ObjectVar{
				BaseVar: script.BaseVar{
					Name:        "parent",
					Label:       "Parent prefix",
					Description: "Prefix to allocate from",
				},
				Resolve: func(id string) (interface{}, error) {
					return store.GetPrefix(id)
				},
			},
			&script.IntegerVar{
				BaseVar: script.BaseVar{
					Name:  "prefix_length",
					Label: "Prefix length",
				},
				MinValue: intp(1),
				MaxValue: intp(128),
			},
			&script.ChoiceVar{
				BaseVar: script.BaseVar{
					Name:     "status",
					Label:    "Status",
					Optional: true,
					Default:  model.PrefixStatusActive,
				},
				Choices: []script.Choice{
					{Value: model.PrefixStatusContainer, Label: "Container"},
					{Value: model.PrefixStatusActive, Label: "Active"},
					{Value: model.PrefixStatusReserved, Label: "Reserved"},
					{Value: model.PrefixStatusDeprecated, Label: "Deprecated"},
				},
			},
			&script.BooleanVar{
				BaseVar: script.BaseVar{
					Name:  "is_pool",
					Label: "Is a pool",
				},
			},
			&script.StringVar{
				BaseVar: script.BaseVar{
					Name:     "description",
					Label:    "Description",
					Optional: true,
				},
				MaxLength: 200,
			},
		},
		Run: func(ctx context.Context, data map[string]interface{}, out *script.Output) error {
			parent := data["parent"].(*model.Prefix)
			bits := data["prefix_length"].(int)

			parentNet, err := netip.ParsePrefix(parent.Prefix)
			if err != nil {
				return err
			}

			existing, err := store.ListPrefixes(filter.PrefixFilter{Within: parentNet, MaskLength: -1})
			if err != nil {
				return err
			}
			var children []netip.Prefix
			for _, p := range existing {
				if p.VRFID != parent.VRFID {
					continue
				}
				if net, err := netip.ParsePrefix(p.Prefix); err == nil {
					children = append(children, net)
				}
			}

			carved, ok, err := netcontain.FirstAvailablePrefix(parentNet, children, bits)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no /%d available within %s", bits, parent.Prefix)
			}

			prefix := model.Prefix{
				ID:     generateID(),
				Prefix: carved.String(),
				SiteID: parent.SiteID,
				VRFID:  parent.VRFID,
				Status: data["status"].(string),
				IsPool: data["is_pool"].(bool),
			}
			if d, ok := data["description"].(string); ok {
				prefix.Description = d
			}
			if err := store.CreatePrefix(&prefix); err != nil {
				return err
			}

			out.Logf("allocated %s from %s", prefix.Prefix, parent.Prefix)
			return nil
		},
	}
}

// reserveIPScript records the next free host address in a prefix
func reserveIPScript(store storage.Storage) *script.Script {
	return &script.Script{
		Name:        "reserve_ip",
		Description: "Reserve the next available IP address in a prefix",
		Vars: []script.Variable{
			&script.ObjectVar{
				BaseVar: script.BaseVar{
					Name:        "prefix",
					Label:       "Prefix",
					Description: "Prefix to reserve an address in",
				},
				Resolve: func(id string) (interface{}, error) {
					return store.GetPrefix(id)
				},
			},
			&script.StringVar{
				BaseVar: script.BaseVar{
					Name:     "dns_name",
					Label:    "DNS name",
					Optional: true,
				},
				MaxLength: 255,
				Regex:     dnsNameRe,
			},
			&script.ChoiceVar{
				BaseVar: script.BaseVar{
					Name:     "status",
					Label:    "Status",
					Optional: true,
					Default:  model.IPAddressStatusReserved,
				},
				Choices: []script.Choice{
					{Value: model.IPAddressStatusActive, Label: "Active"},
					{Value: model.IPAddressStatusReserved, Label: "Reserved"},
					{Value: model.IPAddressStatusDHCP, Label: "DHCP"},
				},
			},
			&script.StringVar{
				BaseVar: script.BaseVar{
					Name:     "description",
					Label:    "Description",
					Optional: true,
				},
				MaxLength: 200,
			},
		},
		Run: func(ctx context.Context, data map[string]interface{}, out *script.Output) error {
			prefix := data["prefix"].(*model.Prefix)

			network, err := netip.ParsePrefix(prefix.Prefix)
			if err != nil {
				return err
			}

			addresses, err := store.ListIPAddresses(filter.IPAddressFilter{Parent: network, MaskLength: -1})
			if err != nil {
				return err
			}
			var used []netip.Addr
			for _, ip := range addresses {
				if ip.VRFID != prefix.VRFID {
					continue
				}
				if host, err := ip.Host(); err == nil {
					used = append(used, host)
				}
			}

			addr, ok, err := netcontain.FirstAvailableAddr(network, used, prefix.IsPool)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no addresses available in %s", prefix.Prefix)
			}

			ip := model.IPAddress{
				ID:      generateID(),
				Address: netip.PrefixFrom(addr, network.Bits()).String(),
				VRFID:   prefix.VRFID,
				Status:  data["status"].(string),
			}
			if d, ok := data["dns_name"].(string); ok {
				ip.DNSName = d
			}
			if d, ok := data["description"].(string); ok {
				ip.Description = d
			}
			if err := store.CreateIPAddress(&ip); err != nil {
				return err
			}

			out.Logf("reserved %s in %s", ip.Address, prefix.Prefix)
			return nil
		},
	}
}
