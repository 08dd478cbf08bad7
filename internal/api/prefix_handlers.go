package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"strconv"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/netcontain"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

// The default and maximum number of free addresses returned by the
// available-ips endpoint. A /8 has sixteen million hosts; nobody wants
// them in one response.
const (
	defaultAvailableIPs = 254
	maxAvailableIPs     = 65536
)

// listPrefixes handles GET /api/prefixes
func (h *Handler) listPrefixes(w http.ResponseWriter, r *http.Request) {
	f, errs := filter.ParsePrefixFilter(r.URL.Query())
	if h.filterErrors(w, errs) {
		return
	}

	prefixes, err := h.storage.ListPrefixes(f)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, prefixes)
}

// getPrefix handles GET /api/prefixes/{id}
func (h *Handler) getPrefix(w http.ResponseWriter, r *http.Request) {
	prefix, err := h.storage.GetPrefix(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrPrefixNotFound) {
			h.writeError(w, http.StatusNotFound, "prefix not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, prefix)
}

// createPrefix handles POST /api/prefixes
func (h *Handler) createPrefix(w http.ResponseWriter, r *http.Request) {
	var prefix model.Prefix
	if err := json.NewDecoder(r.Body).Decode(&prefix); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if prefix.Prefix == "" {
		h.writeError(w, http.StatusBadRequest, "prefix is required")
		return
	}
	if prefix.ID == "" {
		prefix.ID = generateID()
	}

	if err := h.storage.CreatePrefix(&prefix); err != nil {
		switch {
		case errors.Is(err, storage.ErrVRFNotFound):
			h.writeError(w, http.StatusBadRequest, "VRF does not exist")
		case errors.Is(err, storage.ErrDuplicatePrefix):
			h.writeError(w, http.StatusConflict, "duplicate prefix in a VRF that enforces uniqueness")
		default:
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, prefix)
}

// updatePrefix handles PUT /api/prefixes/{id}
func (h *Handler) updatePrefix(w http.ResponseWriter, r *http.Request) {
	var prefix model.Prefix
	if err := json.NewDecoder(r.Body).Decode(&prefix); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	prefix.ID = r.PathValue("id")

	if err := h.storage.UpdatePrefix(&prefix); err != nil {
		switch {
		case errors.Is(err, storage.ErrPrefixNotFound):
			h.writeError(w, http.StatusNotFound, "prefix not found")
		case errors.Is(err, storage.ErrDuplicatePrefix):
			h.writeError(w, http.StatusConflict, "duplicate prefix in a VRF that enforces uniqueness")
		default:
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.writeJSON(w, http.StatusOK, prefix)
}

// deletePrefix handles DELETE /api/prefixes/{id}
func (h *Handler) deletePrefix(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeletePrefix(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrPrefixNotFound) {
			h.writeError(w, http.StatusNotFound, "prefix not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// childNetworks returns the networks of the prefixes strictly inside parent,
// scoped to the parent's VRF.
func (h *Handler) childNetworks(parent *model.Prefix) ([]netip.Prefix, error) {
	target, err := netip.ParsePrefix(parent.Prefix)
	if err != nil {
		return nil, err
	}

	children, err := h.storage.ListPrefixes(filter.PrefixFilter{Within: target, MaskLength: -1})
	if err != nil {
		return nil, err
	}

	var networks []netip.Prefix
	for _, c := range children {
		if c.VRFID != parent.VRFID {
			continue
		}
		net, err := netip.ParsePrefix(c.Prefix)
		if err != nil {
			continue
		}
		networks = append(networks, net)
	}
	return networks, nil
}

// childAddrs returns the host addresses recorded inside the network, scoped
// to the prefix's VRF.
func (h *Handler) childAddrs(prefix *model.Prefix, network netip.Prefix) ([]netip.Addr, error) {
	addresses, err := h.storage.ListIPAddresses(filter.IPAddressFilter{Parent: network, MaskLength: -1})
	if err != nil {
		return nil, err
	}

	var addrs []netip.Addr
	for _, ip := range addresses {
		if ip.VRFID != prefix.VRFID {
			continue
		}
		host, err := ip.Host()
		if err != nil {
			continue
		}
		addrs = append(addrs, host)
	}
	return addrs, nil
}

// listAvailablePrefixes handles GET /api/prefixes/{id}/available-prefixes
func (h *Handler) listAvailablePrefixes(w http.ResponseWriter, r *http.Request) {
	prefix, err := h.storage.GetPrefix(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrPrefixNotFound) {
			h.writeError(w, http.StatusNotFound, "prefix not found")
			return
		}
		h.internalError(w, err)
		return
	}

	parent, err := netip.ParsePrefix(prefix.Prefix)
	if err != nil {
		h.internalError(w, err)
		return
	}
	children, err := h.childNetworks(prefix)
	if err != nil {
		h.internalError(w, err)
		return
	}

	avail, err := netcontain.AvailablePrefixes(parent, children)
	if err != nil {
		h.internalError(w, err)
		return
	}

	out := make([]string, len(avail))
	for i, p := range avail {
		out[i] = p.String()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"available_prefixes": out})
}

// allocateAvailablePrefix handles POST /api/prefixes/{id}/available-prefixes.
// It carves the first free network of the requested mask length out of the
// parent and records it as a new prefix.
func (h *Handler) allocateAvailablePrefix(w http.ResponseWriter, r *http.Request) {
	parent, err := h.storage.GetPrefix(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrPrefixNotFound) {
			h.writeError(w, http.StatusNotFound, "prefix not found")
			return
		}
		h.internalError(w, err)
		return
	}

	var req struct {
		PrefixLength int    `json:"prefix_length"`
		Status       string `json:"status,omitempty"`
		RoleID       string `json:"role_id,omitempty"`
		IsPool       bool   `json:"is_pool,omitempty"`
		Description  string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parentNet, err := netip.ParsePrefix(parent.Prefix)
	if err != nil {
		h.internalError(w, err)
		return
	}
	children, err := h.childNetworks(parent)
	if err != nil {
		h.internalError(w, err)
		return
	}

	carved, ok, err := netcontain.FirstAvailablePrefix(parentNet, children, req.PrefixLength)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !ok {
		h.writeError(w, http.StatusConflict, "insufficient space available")
		return
	}

	prefix := model.Prefix{
		ID:          generateID(),
		Prefix:      carved.String(),
		SiteID:      parent.SiteID,
		VRFID:       parent.VRFID,
		Status:      req.Status,
		RoleID:      req.RoleID,
		IsPool:      req.IsPool,
		Description: req.Description,
	}
	if err := h.storage.CreatePrefix(&prefix); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, prefix)
}

// listAvailableIPs handles GET /api/prefixes/{id}/available-ips
func (h *Handler) listAvailableIPs(w http.ResponseWriter, r *http.Request) {
	prefix, err := h.storage.GetPrefix(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrPrefixNotFound) {
			h.writeError(w, http.StatusNotFound, "prefix not found")
			return
		}
		h.internalError(w, err)
		return
	}

	limit := defaultAvailableIPs
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxAvailableIPs {
			h.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	network, err := netip.ParsePrefix(prefix.Prefix)
	if err != nil {
		h.internalError(w, err)
		return
	}
	used, err := h.childAddrs(prefix, network)
	if err != nil {
		h.internalError(w, err)
		return
	}

	addrs, err := netcontain.AvailableAddrs(network, used, prefix.IsPool, limit)
	if err != nil {
		h.internalError(w, err)
		return
	}

	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"available_ips": out})
}

// allocateAvailableIP handles POST /api/prefixes/{id}/available-ips. It
// records the first free host address in the prefix as a new IP address.
func (h *Handler) allocateAvailableIP(w http.ResponseWriter, r *http.Request) {
	prefix, err := h.storage.GetPrefix(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrPrefixNotFound) {
			h.writeError(w, http.StatusNotFound, "prefix not found")
			return
		}
		h.internalError(w, err)
		return
	}

	var req struct {
		Status      string `json:"status,omitempty"`
		Role        string `json:"role,omitempty"`
		DNSName     string `json:"dns_name,omitempty"`
		InterfaceID string `json:"interface_id,omitempty"`
		Description string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	network, err := netip.ParsePrefix(prefix.Prefix)
	if err != nil {
		h.internalError(w, err)
		return
	}
	used, err := h.childAddrs(prefix, network)
	if err != nil {
		h.internalError(w, err)
		return
	}

	addr, ok, err := netcontain.FirstAvailableAddr(network, used, prefix.IsPool)
	if err != nil {
		h.internalError(w, err)
		return
	}
	if !ok {
		h.writeError(w, http.StatusConflict, "no available addresses")
		return
	}

	ip := model.IPAddress{
		ID:          generateID(),
		Address:     netip.PrefixFrom(addr, network.Bits()).String(),
		VRFID:       prefix.VRFID,
		Status:      req.Status,
		Role:        req.Role,
		DNSName:     req.DNSName,
		InterfaceID: req.InterfaceID,
		Description: req.Description,
	}
	if err := h.storage.CreateIPAddress(&ip); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, ip)
}

// getPrefixUtilization handles GET /api/prefixes/{id}/utilization
func (h *Handler) getPrefixUtilization(w http.ResponseWriter, r *http.Request) {
	prefix, err := h.storage.GetPrefix(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrPrefixNotFound) {
			h.writeError(w, http.StatusNotFound, "prefix not found")
			return
		}
		h.internalError(w, err)
		return
	}

	parent, err := netip.ParsePrefix(prefix.Prefix)
	if err != nil {
		h.internalError(w, err)
		return
	}
	children, err := h.childNetworks(prefix)
	if err != nil {
		h.internalError(w, err)
		return
	}

	utilization, err := netcontain.Utilization(parent, children)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"prefix":      prefix.Prefix,
		"utilization": utilization,
	})
}

// getAggregateUtilization handles GET /api/aggregates/{id}/utilization. The
// covered space is the set of prefixes recorded inside the aggregate.
func (h *Handler) getAggregateUtilization(w http.ResponseWriter, r *http.Request) {
	aggregate, err := h.storage.GetAggregate(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrAggregateNotFound) {
			h.writeError(w, http.StatusNotFound, "aggregate not found")
			return
		}
		h.internalError(w, err)
		return
	}

	parent, err := netip.ParsePrefix(aggregate.Prefix)
	if err != nil {
		h.internalError(w, err)
		return
	}

	prefixes, err := h.storage.ListPrefixes(filter.PrefixFilter{WithinInclude: parent, MaskLength: -1})
	if err != nil {
		h.internalError(w, err)
		return
	}
	var children []netip.Prefix
	for _, p := range prefixes {
		net, err := netip.ParsePrefix(p.Prefix)
		if err != nil {
			continue
		}
		children = append(children, net)
	}

	utilization, err := netcontain.Utilization(parent, children)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"prefix":      aggregate.Prefix,
		"utilization": utilization,
	})
}
