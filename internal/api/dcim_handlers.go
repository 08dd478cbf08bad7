package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

// The device inventory endpoints are intentionally small. They exist so that
// addresses, services, and VLAN groups have something to attach to, not as a
// full DCIM system.

// listRegions handles GET /api/regions
func (h *Handler) listRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.storage.ListRegions()
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, regions)
}

// getRegion handles GET /api/regions/{id}
func (h *Handler) getRegion(w http.ResponseWriter, r *http.Request) {
	region, err := h.storage.GetRegion(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrRegionNotFound) {
			h.writeError(w, http.StatusNotFound, "region not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, region)
}

// createRegion handles POST /api/regions
func (h *Handler) createRegion(w http.ResponseWriter, r *http.Request) {
	var region model.Region
	if err := json.NewDecoder(r.Body).Decode(&region); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if region.Name == "" || region.Slug == "" {
		h.writeError(w, http.StatusBadRequest, "name and slug are required")
		return
	}
	if region.ID == "" {
		region.ID = generateID()
	}

	if err := h.storage.CreateRegion(&region); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, region)
}

// deleteRegion handles DELETE /api/regions/{id}
func (h *Handler) deleteRegion(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteRegion(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrRegionNotFound) {
			h.writeError(w, http.StatusNotFound, "region not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listSites handles GET /api/sites
func (h *Handler) listSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.storage.ListSites()
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sites)
}

// getSite handles GET /api/sites/{id}
func (h *Handler) getSite(w http.ResponseWriter, r *http.Request) {
	site, err := h.storage.GetSite(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrSiteNotFound) {
			h.writeError(w, http.StatusNotFound, "site not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, site)
}

// createSite handles POST /api/sites
func (h *Handler) createSite(w http.ResponseWriter, r *http.Request) {
	var site model.Site
	if err := json.NewDecoder(r.Body).Decode(&site); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if site.Name == "" || site.Slug == "" {
		h.writeError(w, http.StatusBadRequest, "name and slug are required")
		return
	}
	if site.ID == "" {
		site.ID = generateID()
	}

	if err := h.storage.CreateSite(&site); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, site)
}

// deleteSite handles DELETE /api/sites/{id}
func (h *Handler) deleteSite(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteSite(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrSiteNotFound) {
			h.writeError(w, http.StatusNotFound, "site not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listDevices handles GET /api/devices
func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := h.storage.ListDevices()
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, devices)
}

// getDevice handles GET /api/devices/{id}
func (h *Handler) getDevice(w http.ResponseWriter, r *http.Request) {
	device, err := h.storage.GetDevice(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, device)
}

// createDevice handles POST /api/devices
func (h *Handler) createDevice(w http.ResponseWriter, r *http.Request) {
	var device model.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if device.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if device.ID == "" {
		device.ID = generateID()
	}

	if err := h.storage.CreateDevice(&device); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			h.writeError(w, http.StatusConflict, "device name already exists")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, device)
}

// deleteDevice handles DELETE /api/devices/{id}
func (h *Handler) deleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteDevice(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrDeviceNotFound) {
			h.writeError(w, http.StatusNotFound, "device not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listVirtualMachines handles GET /api/virtual-machines
func (h *Handler) listVirtualMachines(w http.ResponseWriter, r *http.Request) {
	vms, err := h.storage.ListVirtualMachines()
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, vms)
}

// getVirtualMachine handles GET /api/virtual-machines/{id}
func (h *Handler) getVirtualMachine(w http.ResponseWriter, r *http.Request) {
	vm, err := h.storage.GetVirtualMachine(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrVirtualMachineNotFound) {
			h.writeError(w, http.StatusNotFound, "virtual machine not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, vm)
}

// createVirtualMachine handles POST /api/virtual-machines
func (h *Handler) createVirtualMachine(w http.ResponseWriter, r *http.Request) {
	var vm model.VirtualMachine
	if err := json.NewDecoder(r.Body).Decode(&vm); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if vm.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if vm.ID == "" {
		vm.ID = generateID()
	}

	if err := h.storage.CreateVirtualMachine(&vm); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			h.writeError(w, http.StatusConflict, "virtual machine name already exists")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, vm)
}

// deleteVirtualMachine handles DELETE /api/virtual-machines/{id}
func (h *Handler) deleteVirtualMachine(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteVirtualMachine(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrVirtualMachineNotFound) {
			h.writeError(w, http.StatusNotFound, "virtual machine not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listInterfaces handles GET /api/interfaces
func (h *Handler) listInterfaces(w http.ResponseWriter, r *http.Request) {
	interfaces, err := h.storage.ListInterfaces()
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, interfaces)
}

// getInterface handles GET /api/interfaces/{id}
func (h *Handler) getInterface(w http.ResponseWriter, r *http.Request) {
	iface, err := h.storage.GetInterface(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrInterfaceNotFound) {
			h.writeError(w, http.StatusNotFound, "interface not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, iface)
}

// createInterface handles POST /api/interfaces
func (h *Handler) createInterface(w http.ResponseWriter, r *http.Request) {
	var iface model.Interface
	if err := json.NewDecoder(r.Body).Decode(&iface); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if iface.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if iface.ID == "" {
		iface.ID = generateID()
	}

	if err := h.storage.CreateInterface(&iface); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, iface)
}

// deleteInterface handles DELETE /api/interfaces/{id}
func (h *Handler) deleteInterface(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteInterface(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrInterfaceNotFound) {
			h.writeError(w, http.StatusNotFound, "interface not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
