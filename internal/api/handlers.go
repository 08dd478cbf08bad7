package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/log"
	"github.com/martinsuchenak/ipamd/internal/script"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

// Handler handles HTTP requests
type Handler struct {
	storage storage.Storage
	scripts *script.Registry
}

// NewHandler creates a new API handler
func NewHandler(s storage.Storage, scripts *script.Registry) *Handler {
	return &Handler{storage: s, scripts: scripts}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// VRF CRUD
	mux.HandleFunc("GET /api/vrfs", h.listVRFs)
	mux.HandleFunc("POST /api/vrfs", h.createVRF)
	mux.HandleFunc("GET /api/vrfs/{id}", h.getVRF)
	mux.HandleFunc("PUT /api/vrfs/{id}", h.updateVRF)
	mux.HandleFunc("DELETE /api/vrfs/{id}", h.deleteVRF)

	// RIR CRUD
	mux.HandleFunc("GET /api/rirs", h.listRIRs)
	mux.HandleFunc("POST /api/rirs", h.createRIR)
	mux.HandleFunc("GET /api/rirs/{id}", h.getRIR)
	mux.HandleFunc("PUT /api/rirs/{id}", h.updateRIR)
	mux.HandleFunc("DELETE /api/rirs/{id}", h.deleteRIR)

	// Aggregate CRUD
	mux.HandleFunc("GET /api/aggregates", h.listAggregates)
	mux.HandleFunc("POST /api/aggregates", h.createAggregate)
	mux.HandleFunc("GET /api/aggregates/{id}", h.getAggregate)
	mux.HandleFunc("PUT /api/aggregates/{id}", h.updateAggregate)
	mux.HandleFunc("DELETE /api/aggregates/{id}", h.deleteAggregate)
	mux.HandleFunc("GET /api/aggregates/{id}/utilization", h.getAggregateUtilization)

	// Role CRUD
	mux.HandleFunc("GET /api/roles", h.listRoles)
	mux.HandleFunc("POST /api/roles", h.createRole)
	mux.HandleFunc("GET /api/roles/{id}", h.getRole)
	mux.HandleFunc("PUT /api/roles/{id}", h.updateRole)
	mux.HandleFunc("DELETE /api/roles/{id}", h.deleteRole)

	// Prefix CRUD and address space queries
	mux.HandleFunc("GET /api/prefixes", h.listPrefixes)
	mux.HandleFunc("POST /api/prefixes", h.createPrefix)
	mux.HandleFunc("GET /api/prefixes/{id}", h.getPrefix)
	mux.HandleFunc("PUT /api/prefixes/{id}", h.updatePrefix)
	mux.HandleFunc("DELETE /api/prefixes/{id}", h.deletePrefix)
	mux.HandleFunc("GET /api/prefixes/{id}/available-prefixes", h.listAvailablePrefixes)
	mux.HandleFunc("POST /api/prefixes/{id}/available-prefixes", h.allocateAvailablePrefix)
	mux.HandleFunc("GET /api/prefixes/{id}/available-ips", h.listAvailableIPs)
	mux.HandleFunc("POST /api/prefixes/{id}/available-ips", h.allocateAvailableIP)
	mux.HandleFunc("GET /api/prefixes/{id}/utilization", h.getPrefixUtilization)

	// IP address CRUD
	mux.HandleFunc("GET /api/ip-addresses", h.listIPAddresses)
	mux.HandleFunc("POST /api/ip-addresses", h.createIPAddress)
	mux.HandleFunc("GET /api/ip-addresses/{id}", h.getIPAddress)
	mux.HandleFunc("PUT /api/ip-addresses/{id}", h.updateIPAddress)
	mux.HandleFunc("DELETE /api/ip-addresses/{id}", h.deleteIPAddress)

	// VLAN group and VLAN CRUD
	mux.HandleFunc("GET /api/vlan-groups", h.listVLANGroups)
	mux.HandleFunc("POST /api/vlan-groups", h.createVLANGroup)
	mux.HandleFunc("GET /api/vlan-groups/{id}", h.getVLANGroup)
	mux.HandleFunc("PUT /api/vlan-groups/{id}", h.updateVLANGroup)
	mux.HandleFunc("DELETE /api/vlan-groups/{id}", h.deleteVLANGroup)
	mux.HandleFunc("GET /api/vlans", h.listVLANs)
	mux.HandleFunc("POST /api/vlans", h.createVLAN)
	mux.HandleFunc("GET /api/vlans/{id}", h.getVLAN)
	mux.HandleFunc("PUT /api/vlans/{id}", h.updateVLAN)
	mux.HandleFunc("DELETE /api/vlans/{id}", h.deleteVLAN)

	// Service CRUD
	mux.HandleFunc("GET /api/services", h.listServices)
	mux.HandleFunc("POST /api/services", h.createService)
	mux.HandleFunc("GET /api/services/{id}", h.getService)
	mux.HandleFunc("PUT /api/services/{id}", h.updateService)
	mux.HandleFunc("DELETE /api/services/{id}", h.deleteService)

	// Device inventory that addresses and services attach to
	mux.HandleFunc("GET /api/regions", h.listRegions)
	mux.HandleFunc("POST /api/regions", h.createRegion)
	mux.HandleFunc("GET /api/regions/{id}", h.getRegion)
	mux.HandleFunc("DELETE /api/regions/{id}", h.deleteRegion)
	mux.HandleFunc("GET /api/sites", h.listSites)
	mux.HandleFunc("POST /api/sites", h.createSite)
	mux.HandleFunc("GET /api/sites/{id}", h.getSite)
	mux.HandleFunc("DELETE /api/sites/{id}", h.deleteSite)
	mux.HandleFunc("GET /api/devices", h.listDevices)
	mux.HandleFunc("POST /api/devices", h.createDevice)
	mux.HandleFunc("GET /api/devices/{id}", h.getDevice)
	mux.HandleFunc("DELETE /api/devices/{id}", h.deleteDevice)
	mux.HandleFunc("GET /api/virtual-machines", h.listVirtualMachines)
	mux.HandleFunc("POST /api/virtual-machines", h.createVirtualMachine)
	mux.HandleFunc("GET /api/virtual-machines/{id}", h.getVirtualMachine)
	mux.HandleFunc("DELETE /api/virtual-machines/{id}", h.deleteVirtualMachine)
	mux.HandleFunc("GET /api/interfaces", h.listInterfaces)
	mux.HandleFunc("POST /api/interfaces", h.createInterface)
	mux.HandleFunc("GET /api/interfaces/{id}", h.getInterface)
	mux.HandleFunc("DELETE /api/interfaces/{id}", h.deleteInterface)

	// Scripts
	mux.HandleFunc("GET /api/scripts", h.listScripts)
	mux.HandleFunc("GET /api/scripts/{name}", h.getScript)
	mux.HandleFunc("POST /api/scripts/{name}/run", h.runScript)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeFieldErrors writes per-field validation problems as a 400 response
func (h *Handler) writeFieldErrors(w http.ResponseWriter, errs map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{"errors": errs})
}

// internalError logs the error and writes a generic 500 response
func (h *Handler) internalError(w http.ResponseWriter, err error) {
	log.Error("internal server error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

// filterErrors writes parse errors when present and reports whether it did
func (h *Handler) filterErrors(w http.ResponseWriter, errs filter.Errors) bool {
	if !errs.Any() {
		return false
	}
	h.writeFieldErrors(w, errs)
	return true
}

// generateID generates a UUIDv7, falling back to a random UUID
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
