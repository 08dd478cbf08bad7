package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/paularlott/mcp"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/log"
	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/netcontain"
	"github.com/martinsuchenak/ipamd/internal/script"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

// Server wraps the MCP server with IPAM storage and the script registry
type Server struct {
	mcpServer   *mcp.Server
	storage     storage.Storage
	scripts     *script.Registry
	bearerToken string
}

// NewServer creates a new MCP server for IPAM operations
func NewServer(storage storage.Storage, scripts *script.Registry, bearerToken string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer("ipamd", "1.0.0"),
		storage:     storage,
		scripts:     scripts,
		bearerToken: bearerToken,
	}
	s.registerTools()
	return s
}

// registerTools registers all IPAM tools
func (s *Server) registerTools() {
	// vrf_list - List VRFs
	s.mcpServer.RegisterTool(
		mcp.NewTool("vrf_list", "List VRFs, optionally filtered by name or route distinguisher",
			mcp.String("name", "Filter by VRF name"),
			mcp.String("rd", "Filter by route distinguisher (e.g., 65000:100)"),
		),
		s.handleVRFList,
	)

	// prefix_list - List prefixes with containment filtering
	s.mcpServer.RegisterTool(
		mcp.NewTool("prefix_list", "List prefixes. Containment filters accept CIDR notation: within returns prefixes strictly inside the given network, within_include also returns the network itself, contains returns prefixes covering it.",
			mcp.String("within", "Return prefixes strictly inside this network (CIDR)"),
			mcp.String("within_include", "Return prefixes inside or equal to this network (CIDR)"),
			mcp.String("contains", "Return prefixes containing this network (CIDR)"),
			mcp.String("vrf", "Filter by VRF route distinguisher"),
			mcp.String("status", "Filter by status (container, active, reserved, deprecated)"),
			mcp.String("family", "Filter by address family (4 or 6)"),
		),
		s.handlePrefixList,
	)

	// prefix_available - Show free space inside a prefix
	s.mcpServer.RegisterTool(
		mcp.NewTool("prefix_available", "Show the unallocated networks and the utilization of a prefix",
			mcp.String("prefix_id", "Prefix ID", mcp.Required()),
		),
		s.handlePrefixAvailable,
	)

	// prefix_allocate - Carve a child prefix
	s.mcpServer.RegisterTool(
		mcp.NewTool("prefix_allocate", "Allocate the next free child network of the given mask length from a parent prefix",
			mcp.String("prefix_id", "Parent prefix ID", mcp.Required()),
			mcp.String("prefix_length", "Mask length of the child network, e.g. 24", mcp.Required()),
		),
		s.handlePrefixAllocate,
	)

	// ip_list - List IP addresses
	s.mcpServer.RegisterTool(
		mcp.NewTool("ip_list", "List IP addresses, optionally filtered by parent network, DNS name, or status",
			mcp.String("parent", "Return addresses inside this network (CIDR)"),
			mcp.String("dns_name", "Filter by DNS name"),
			mcp.String("status", "Filter by status (active, reserved, deprecated, dhcp)"),
			mcp.String("q", "Free-text search over address, DNS name, and description"),
		),
		s.handleIPList,
	)

	// ip_reserve - Reserve the next free address
	s.mcpServer.RegisterTool(
		mcp.NewTool("ip_reserve", "Reserve the next available IP address in a prefix",
			mcp.String("prefix_id", "Prefix ID", mcp.Required()),
			mcp.String("dns_name", "DNS name to record on the address"),
		),
		s.handleIPReserve,
	)

	// vlan_list - List VLANs
	s.mcpServer.RegisterTool(
		mcp.NewTool("vlan_list", "List VLANs, optionally filtered by group or VLAN ID",
			mcp.String("group", "Filter by VLAN group slug"),
			mcp.String("vid", "Filter by 802.1Q VLAN ID (1-4094)"),
		),
		s.handleVLANList,
	)

	// script_run - Run a registered script
	s.mcpServer.RegisterTool(
		mcp.NewTool("script_run", "Run a registered script with validated inputs. Use script_list to discover scripts and their fields.",
			mcp.String("name", "Script name", mcp.Required()),
			mcp.String("data", "Script inputs as a JSON object, e.g. {\"prefix\": \"...\"}"),
		),
		s.handleScriptRun,
	)

	// script_list - List registered scripts
	s.mcpServer.RegisterTool(
		mcp.NewTool("script_list", "List the registered scripts and their input fields"),
		s.handleScriptList,
	)
}

// HandleRequest authenticates and dispatches an MCP request
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	// Check bearer token if configured
	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if token != s.bearerToken {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

// Tool handlers

func (s *Server) handleVRFList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	q := url.Values{}
	if name := req.StringOr("name", ""); name != "" {
		q.Set("name", name)
	}
	if rd := req.StringOr("rd", ""); rd != "" {
		q.Set("rd", rd)
	}

	f, errs := filter.ParseVRF(q)
	if errs.Any() {
		return nil, mcp.NewToolErrorInvalidParams(errs.String())
	}

	vrfs, err := s.storage.ListVRFs(f)
	if err != nil {
		log.Error("MCP VRF list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list VRFs: " + err.Error())
	}

	if len(vrfs) == 0 {
		return mcp.NewToolResponseText("No VRFs found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d VRFs:\n\n", len(vrfs)))
	for _, v := range vrfs {
		result.WriteString(fmt.Sprintf("Name: %s\nRD: %s\nEnforce unique: %t\nID: %s\n\n", v.Name, v.RD, v.EnforceUnique, v.ID))
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handlePrefixList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	q := url.Values{}
	for _, key := range []string{"within", "within_include", "contains", "vrf", "status", "family"} {
		if v := req.StringOr(key, ""); v != "" {
			q.Set(key, v)
		}
	}

	f, errs := filter.ParsePrefixFilter(q)
	if errs.Any() {
		return nil, mcp.NewToolErrorInvalidParams(errs.String())
	}

	prefixes, err := s.storage.ListPrefixes(f)
	if err != nil {
		log.Error("MCP prefix list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list prefixes: " + err.Error())
	}

	if len(prefixes) == 0 {
		return mcp.NewToolResponseText("No prefixes found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d prefixes:\n\n", len(prefixes)))
	for _, p := range prefixes {
		result.WriteString(s.formatPrefixSummary(&p))
		result.WriteString("\n")
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handlePrefixAvailable(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	id, err := req.String("prefix_id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("prefix_id is required: " + err.Error())
	}

	prefix, err := s.storage.GetPrefix(id)
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("prefix not found: " + id)
	}

	parent, err := netip.ParsePrefix(prefix.Prefix)
	if err != nil {
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	children, err := s.childNetworks(prefix)
	if err != nil {
		return nil, mcp.NewToolErrorInternal(err.Error())
	}

	avail, err := netcontain.AvailablePrefixes(parent, children)
	if err != nil {
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	utilization, err := netcontain.Utilization(parent, children)
	if err != nil {
		return nil, mcp.NewToolErrorInternal(err.Error())
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Prefix %s is %.1f%% allocated.\n", prefix.Prefix, utilization*100))
	if len(avail) == 0 {
		result.WriteString("No free space remains.\n")
	} else {
		result.WriteString("Free networks:\n")
		for _, p := range avail {
			result.WriteString("  " + p.String() + "\n")
		}
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handlePrefixAllocate(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	id, err := req.String("prefix_id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("prefix_id is required: " + err.Error())
	}
	lengthStr, err := req.String("prefix_length")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("prefix_length is required: " + err.Error())
	}
	bits, err := strconv.Atoi(lengthStr)
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("prefix_length must be a number")
	}

	parent, err := s.storage.GetPrefix(id)
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("prefix not found: " + id)
	}

	parentNet, err := netip.ParsePrefix(parent.Prefix)
	if err != nil {
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	children, err := s.childNetworks(parent)
	if err != nil {
		return nil, mcp.NewToolErrorInternal(err.Error())
	}

	carved, ok, err := netcontain.FirstAvailablePrefix(parentNet, children, bits)
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams(err.Error())
	}
	if !ok {
		return mcp.NewToolResponseText(fmt.Sprintf("No /%d is available within %s", bits, parent.Prefix)), nil
	}

	prefix := model.Prefix{
		ID:     s.generateID(),
		Prefix: carved.String(),
		SiteID: parent.SiteID,
		VRFID:  parent.VRFID,
	}
	if err := s.storage.CreatePrefix(&prefix); err != nil {
		log.Error("MCP prefix allocation failed", "error", err, "prefix", carved.String())
		return nil, mcp.NewToolErrorInternal("failed to create prefix: " + err.Error())
	}

	log.Info("MCP prefix allocated", "prefix", prefix.Prefix, "parent", parent.Prefix)
	return mcp.NewToolResponseText(fmt.Sprintf("Allocated %s (ID %s) from %s", prefix.Prefix, prefix.ID, parent.Prefix)), nil
}

func (s *Server) handleIPList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	q := url.Values{}
	for _, key := range []string{"parent", "dns_name", "status", "q"} {
		if v := req.StringOr(key, ""); v != "" {
			q.Set(key, v)
		}
	}

	f, errs := filter.ParseIPAddress(q)
	if errs.Any() {
		return nil, mcp.NewToolErrorInvalidParams(errs.String())
	}

	addresses, err := s.storage.ListIPAddresses(f)
	if err != nil {
		log.Error("MCP IP list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list addresses: " + err.Error())
	}

	if len(addresses) == 0 {
		return mcp.NewToolResponseText("No IP addresses found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d IP addresses:\n\n", len(addresses)))
	for _, ip := range addresses {
		result.WriteString(fmt.Sprintf("Address: %s\nStatus: %s\n", ip.Address, ip.Status))
		if ip.DNSName != "" {
			result.WriteString(fmt.Sprintf("DNS name: %s\n", ip.DNSName))
		}
		result.WriteString(fmt.Sprintf("ID: %s\n\n", ip.ID))
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleIPReserve(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	id, err := req.String("prefix_id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("prefix_id is required: " + err.Error())
	}

	prefix, err := s.storage.GetPrefix(id)
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("prefix not found: " + id)
	}

	network, err := netip.ParsePrefix(prefix.Prefix)
	if err != nil {
		return nil, mcp.NewToolErrorInternal(err.Error())
	}

	addresses, err := s.storage.ListIPAddresses(filter.IPAddressFilter{Parent: network, MaskLength: -1})
	if err != nil {
		return nil, mcp.NewToolErrorInternal(err.Error())
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
		return nil, mcp.NewToolErrorInternal(err.Error())
	}
	if !ok {
		return mcp.NewToolResponseText("No addresses are available in " + prefix.Prefix), nil
	}

	ip := model.IPAddress{
		ID:      s.generateID(),
		Address: netip.PrefixFrom(addr, network.Bits()).String(),
		VRFID:   prefix.VRFID,
		Status:  model.IPAddressStatusReserved,
		DNSName: req.StringOr("dns_name", ""),
	}
	if err := s.storage.CreateIPAddress(&ip); err != nil {
		log.Error("MCP IP reservation failed", "error", err, "address", ip.Address)
		return nil, mcp.NewToolErrorInternal("failed to reserve address: " + err.Error())
	}

	log.Info("MCP IP reserved", "address", ip.Address, "prefix", prefix.Prefix)
	return mcp.NewToolResponseText(fmt.Sprintf("Reserved %s (ID %s) in %s", ip.Address, ip.ID, prefix.Prefix)), nil
}

func (s *Server) handleVLANList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	q := url.Values{}
	if group := req.StringOr("group", ""); group != "" {
		q.Set("group", group)
	}
	if vid := req.StringOr("vid", ""); vid != "" {
		q.Set("vid", vid)
	}

	f, errs := filter.ParseVLAN(q)
	if errs.Any() {
		return nil, mcp.NewToolErrorInvalidParams(errs.String())
	}

	vlans, err := s.storage.ListVLANs(f)
	if err != nil {
		log.Error("MCP VLAN list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list VLANs: " + err.Error())
	}

	if len(vlans) == 0 {
		return mcp.NewToolResponseText("No VLANs found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d VLANs:\n\n", len(vlans)))
	for _, v := range vlans {
		result.WriteString(fmt.Sprintf("VID: %d\nName: %s\nStatus: %s\nID: %s\n\n", v.VID, v.Name, v.Status, v.ID))
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleScriptList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	scripts := s.scripts.List()
	if len(scripts) == 0 {
		return mcp.NewToolResponseText("No scripts are registered"), nil
	}

	var result strings.Builder
	for _, sc := range scripts {
		result.WriteString(fmt.Sprintf("%s: %s\n", sc.Name, sc.Description))
		for _, f := range sc.FieldSpecs() {
			required := ""
			if f.Required {
				required = " (required)"
			}
			result.WriteString(fmt.Sprintf("  %s [%s]%s\n", f.Name, f.Type, required))
		}
		result.WriteString("\n")
	}
	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleScriptRun(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}

	sc, ok := s.scripts.Get(name)
	if !ok {
		return nil, mcp.NewToolErrorInvalidParams("script not found: " + name)
	}

	data := make(map[string]interface{})
	if raw := req.StringOr("data", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil, mcp.NewToolErrorInvalidParams("data must be a JSON object: " + err.Error())
		}
	}

	form := sc.AsForm(data, nil)
	if !form.IsValid() {
		var result strings.Builder
		result.WriteString("Invalid input:\n")
		for field, msgs := range form.Errors {
			result.WriteString(fmt.Sprintf("  %s: %s\n", field, strings.Join(msgs, "; ")))
		}
		return nil, mcp.NewToolErrorInvalidParams(result.String())
	}

	var out script.Output
	if err := sc.Run(ctx, form.CleanedData, &out); err != nil {
		log.Error("MCP script failed", "script", name, "error", err)
		return nil, mcp.NewToolErrorInternal("script failed: " + err.Error())
	}

	log.Info("MCP script completed", "script", name)
	if len(out.Lines) == 0 {
		return mcp.NewToolResponseText("Script completed"), nil
	}
	return mcp.NewToolResponseText("Script completed:\n" + strings.Join(out.Lines, "\n")), nil
}

// Utility functions

// childNetworks returns the networks recorded inside parent, scoped to the
// parent's VRF.
func (s *Server) childNetworks(parent *model.Prefix) ([]netip.Prefix, error) {
	target, err := netip.ParsePrefix(parent.Prefix)
	if err != nil {
		return nil, err
	}

	children, err := s.storage.ListPrefixes(filter.PrefixFilter{Within: target, MaskLength: -1})
	if err != nil {
		return nil, err
	}

	var networks []netip.Prefix
	for _, c := range children {
		if c.VRFID != parent.VRFID {
			continue
		}
		if net, err := netip.ParsePrefix(c.Prefix); err == nil {
			networks = append(networks, net)
		}
	}
	return networks, nil
}

func (s *Server) generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func (s *Server) formatPrefixSummary(p *model.Prefix) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Prefix: %s\nStatus: %s\n", p.Prefix, p.Status))
	if p.VRFID != "" {
		result.WriteString(fmt.Sprintf("VRF: %s\n", p.VRFID))
	}
	if p.IsPool {
		result.WriteString("Pool: yes\n")
	}
	result.WriteString(fmt.Sprintf("ID: %s\n", p.ID))
	return result.String()
}

// GetHTTPHandler returns the HTTP handler for the MCP server
func (s *Server) GetHTTPHandler() http.HandlerFunc {
	return s.HandleRequest
}

// LogStartup logs MCP server startup information
func (s *Server) LogStartup() {
	log.Info("MCP Server initialized", "version", "1.0.0")
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name, "description", tool.Description)
	}
}
