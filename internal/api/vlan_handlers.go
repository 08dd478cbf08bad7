package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

// listVLANGroups handles GET /api/vlan-groups
func (h *Handler) listVLANGroups(w http.ResponseWriter, r *http.Request) {
	f, errs := filter.ParseVLANGroup(r.URL.Query())
	if h.filterErrors(w, errs) {
		return
	}

	groups, err := h.storage.ListVLANGroups(f)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, groups)
}

// getVLANGroup handles GET /api/vlan-groups/{id}
func (h *Handler) getVLANGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.storage.GetVLANGroup(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrVLANGroupNotFound) {
			h.writeError(w, http.StatusNotFound, "VLAN group not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, group)
}

// createVLANGroup handles POST /api/vlan-groups
func (h *Handler) createVLANGroup(w http.ResponseWriter, r *http.Request) {
	var group model.VLANGroup
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if group.Name == "" || group.Slug == "" {
		h.writeError(w, http.StatusBadRequest, "name and slug are required")
		return
	}
	if group.ID == "" {
		group.ID = generateID()
	}

	if err := h.storage.CreateVLANGroup(&group); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			h.writeError(w, http.StatusConflict, "VLAN group slug already exists")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, group)
}

// updateVLANGroup handles PUT /api/vlan-groups/{id}
func (h *Handler) updateVLANGroup(w http.ResponseWriter, r *http.Request) {
	var group model.VLANGroup
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	group.ID = r.PathValue("id")

	if err := h.storage.UpdateVLANGroup(&group); err != nil {
		switch {
		case errors.Is(err, storage.ErrVLANGroupNotFound):
			h.writeError(w, http.StatusNotFound, "VLAN group not found")
		case errors.Is(err, storage.ErrDuplicate):
			h.writeError(w, http.StatusConflict, "VLAN group slug already exists")
		default:
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.writeJSON(w, http.StatusOK, group)
}

// deleteVLANGroup handles DELETE /api/vlan-groups/{id}
func (h *Handler) deleteVLANGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteVLANGroup(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrVLANGroupNotFound) {
			h.writeError(w, http.StatusNotFound, "VLAN group not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listVLANs handles GET /api/vlans
func (h *Handler) listVLANs(w http.ResponseWriter, r *http.Request) {
	f, errs := filter.ParseVLAN(r.URL.Query())
	if h.filterErrors(w, errs) {
		return
	}

	vlans, err := h.storage.ListVLANs(f)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, vlans)
}

// getVLAN handles GET /api/vlans/{id}
func (h *Handler) getVLAN(w http.ResponseWriter, r *http.Request) {
	vlan, err := h.storage.GetVLAN(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrVLANNotFound) {
			h.writeError(w, http.StatusNotFound, "VLAN not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, vlan)
}

// createVLAN handles POST /api/vlans
func (h *Handler) createVLAN(w http.ResponseWriter, r *http.Request) {
	var vlan model.VLAN
	if err := json.NewDecoder(r.Body).Decode(&vlan); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if vlan.Name == "" || vlan.VID == 0 {
		h.writeError(w, http.StatusBadRequest, "name and vid are required")
		return
	}
	if vlan.ID == "" {
		vlan.ID = generateID()
	}

	if err := h.storage.CreateVLAN(&vlan); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			h.writeError(w, http.StatusConflict, "VLAN ID already exists in this group")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, vlan)
}

// updateVLAN handles PUT /api/vlans/{id}
func (h *Handler) updateVLAN(w http.ResponseWriter, r *http.Request) {
	var vlan model.VLAN
	if err := json.NewDecoder(r.Body).Decode(&vlan); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	vlan.ID = r.PathValue("id")

	if err := h.storage.UpdateVLAN(&vlan); err != nil {
		switch {
		case errors.Is(err, storage.ErrVLANNotFound):
			h.writeError(w, http.StatusNotFound, "VLAN not found")
		case errors.Is(err, storage.ErrDuplicate):
			h.writeError(w, http.StatusConflict, "VLAN ID already exists in this group")
		default:
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.writeJSON(w, http.StatusOK, vlan)
}

// deleteVLAN handles DELETE /api/vlans/{id}
func (h *Handler) deleteVLAN(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteVLAN(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrVLANNotFound) {
			h.writeError(w, http.StatusNotFound, "VLAN not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listServices handles GET /api/services
func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	f, errs := filter.ParseService(r.URL.Query())
	if h.filterErrors(w, errs) {
		return
	}

	services, err := h.storage.ListServices(f)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, services)
}

// getService handles GET /api/services/{id}
func (h *Handler) getService(w http.ResponseWriter, r *http.Request) {
	service, err := h.storage.GetService(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrServiceNotFound) {
			h.writeError(w, http.StatusNotFound, "service not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, service)
}

// createService handles POST /api/services
func (h *Handler) createService(w http.ResponseWriter, r *http.Request) {
	var service model.Service
	if err := json.NewDecoder(r.Body).Decode(&service); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if service.Name == "" || service.Protocol == "" || service.Port == 0 {
		h.writeError(w, http.StatusBadRequest, "name, protocol and port are required")
		return
	}
	if service.ID == "" {
		service.ID = generateID()
	}

	if err := h.storage.CreateService(&service); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, service)
}

// updateService handles PUT /api/services/{id}
func (h *Handler) updateService(w http.ResponseWriter, r *http.Request) {
	var service model.Service
	if err := json.NewDecoder(r.Body).Decode(&service); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	service.ID = r.PathValue("id")

	if err := h.storage.UpdateService(&service); err != nil {
		if errors.Is(err, storage.ErrServiceNotFound) {
			h.writeError(w, http.StatusNotFound, "service not found")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, service)
}

// deleteService handles DELETE /api/services/{id}
func (h *Handler) deleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteService(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrServiceNotFound) {
			h.writeError(w, http.StatusNotFound, "service not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
