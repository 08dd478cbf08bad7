package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

// listVRFs handles GET /api/vrfs
func (h *Handler) listVRFs(w http.ResponseWriter, r *http.Request) {
	f, errs := filter.ParseVRF(r.URL.Query())
	if h.filterErrors(w, errs) {
		return
	}

	vrfs, err := h.storage.ListVRFs(f)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, vrfs)
}

// getVRF handles GET /api/vrfs/{id}
func (h *Handler) getVRF(w http.ResponseWriter, r *http.Request) {
	vrf, err := h.storage.GetVRF(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrVRFNotFound) {
			h.writeError(w, http.StatusNotFound, "VRF not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, vrf)
}

// createVRF handles POST /api/vrfs
func (h *Handler) createVRF(w http.ResponseWriter, r *http.Request) {
	var vrf model.VRF
	if err := json.NewDecoder(r.Body).Decode(&vrf); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if vrf.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if vrf.RD == "" {
		h.writeError(w, http.StatusBadRequest, "rd is required")
		return
	}
	if vrf.ID == "" {
		vrf.ID = generateID()
	}

	if err := h.storage.CreateVRF(&vrf); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			h.writeError(w, http.StatusConflict, "a VRF with this route distinguisher already exists")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, vrf)
}

// updateVRF handles PUT /api/vrfs/{id}
func (h *Handler) updateVRF(w http.ResponseWriter, r *http.Request) {
	var vrf model.VRF
	if err := json.NewDecoder(r.Body).Decode(&vrf); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	vrf.ID = r.PathValue("id")

	if err := h.storage.UpdateVRF(&vrf); err != nil {
		switch {
		case errors.Is(err, storage.ErrVRFNotFound):
			h.writeError(w, http.StatusNotFound, "VRF not found")
		case errors.Is(err, storage.ErrDuplicate):
			h.writeError(w, http.StatusConflict, "a VRF with this route distinguisher already exists")
		default:
			h.internalError(w, err)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, vrf)
}

// deleteVRF handles DELETE /api/vrfs/{id}
func (h *Handler) deleteVRF(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteVRF(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrVRFNotFound) {
			h.writeError(w, http.StatusNotFound, "VRF not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listRIRs handles GET /api/rirs
func (h *Handler) listRIRs(w http.ResponseWriter, r *http.Request) {
	f, errs := filter.ParseRIR(r.URL.Query())
	if h.filterErrors(w, errs) {
		return
	}

	rirs, err := h.storage.ListRIRs(f)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rirs)
}

// getRIR handles GET /api/rirs/{id}
func (h *Handler) getRIR(w http.ResponseWriter, r *http.Request) {
	rir, err := h.storage.GetRIR(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrRIRNotFound) {
			h.writeError(w, http.StatusNotFound, "RIR not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rir)
}

// createRIR handles POST /api/rirs
func (h *Handler) createRIR(w http.ResponseWriter, r *http.Request) {
	var rir model.RIR
	if err := json.NewDecoder(r.Body).Decode(&rir); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if rir.Name == "" || rir.Slug == "" {
		h.writeError(w, http.StatusBadRequest, "name and slug are required")
		return
	}
	if rir.ID == "" {
		rir.ID = generateID()
	}

	if err := h.storage.CreateRIR(&rir); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			h.writeError(w, http.StatusConflict, "an RIR with this name or slug already exists")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rir)
}

// updateRIR handles PUT /api/rirs/{id}
func (h *Handler) updateRIR(w http.ResponseWriter, r *http.Request) {
	var rir model.RIR
	if err := json.NewDecoder(r.Body).Decode(&rir); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rir.ID = r.PathValue("id")

	if err := h.storage.UpdateRIR(&rir); err != nil {
		switch {
		case errors.Is(err, storage.ErrRIRNotFound):
			h.writeError(w, http.StatusNotFound, "RIR not found")
		case errors.Is(err, storage.ErrDuplicate):
			h.writeError(w, http.StatusConflict, "an RIR with this name or slug already exists")
		default:
			h.internalError(w, err)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, rir)
}

// deleteRIR handles DELETE /api/rirs/{id}
func (h *Handler) deleteRIR(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteRIR(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrRIRNotFound) {
			h.writeError(w, http.StatusNotFound, "RIR not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listAggregates handles GET /api/aggregates
func (h *Handler) listAggregates(w http.ResponseWriter, r *http.Request) {
	f, errs := filter.ParseAggregate(r.URL.Query())
	if h.filterErrors(w, errs) {
		return
	}

	aggregates, err := h.storage.ListAggregates(f)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, aggregates)
}

// getAggregate handles GET /api/aggregates/{id}
func (h *Handler) getAggregate(w http.ResponseWriter, r *http.Request) {
	aggregate, err := h.storage.GetAggregate(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrAggregateNotFound) {
			h.writeError(w, http.StatusNotFound, "aggregate not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, aggregate)
}

// createAggregate handles POST /api/aggregates
func (h *Handler) createAggregate(w http.ResponseWriter, r *http.Request) {
	var aggregate model.Aggregate
	if err := json.NewDecoder(r.Body).Decode(&aggregate); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if aggregate.Prefix == "" || aggregate.RIRID == "" {
		h.writeError(w, http.StatusBadRequest, "prefix and rir_id are required")
		return
	}
	if _, err := h.storage.GetRIR(aggregate.RIRID); err != nil {
		if errors.Is(err, storage.ErrRIRNotFound) {
			h.writeError(w, http.StatusBadRequest, "RIR does not exist")
			return
		}
		h.internalError(w, err)
		return
	}
	if aggregate.ID == "" {
		aggregate.ID = generateID()
	}

	if err := h.storage.CreateAggregate(&aggregate); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, aggregate)
}

// updateAggregate handles PUT /api/aggregates/{id}
func (h *Handler) updateAggregate(w http.ResponseWriter, r *http.Request) {
	var aggregate model.Aggregate
	if err := json.NewDecoder(r.Body).Decode(&aggregate); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	aggregate.ID = r.PathValue("id")

	if err := h.storage.UpdateAggregate(&aggregate); err != nil {
		if errors.Is(err, storage.ErrAggregateNotFound) {
			h.writeError(w, http.StatusNotFound, "aggregate not found")
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, aggregate)
}

// deleteAggregate handles DELETE /api/aggregates/{id}
func (h *Handler) deleteAggregate(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteAggregate(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrAggregateNotFound) {
			h.writeError(w, http.StatusNotFound, "aggregate not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listRoles handles GET /api/roles
func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	f, errs := filter.ParseRole(r.URL.Query())
	if h.filterErrors(w, errs) {
		return
	}

	roles, err := h.storage.ListRoles(f)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, roles)
}

// getRole handles GET /api/roles/{id}
func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.storage.GetRole(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrRoleNotFound) {
			h.writeError(w, http.StatusNotFound, "role not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, role)
}

// createRole handles POST /api/roles
func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var role model.Role
	if err := json.NewDecoder(r.Body).Decode(&role); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if role.Name == "" || role.Slug == "" {
		h.writeError(w, http.StatusBadRequest, "name and slug are required")
		return
	}
	if role.ID == "" {
		role.ID = generateID()
	}

	if err := h.storage.CreateRole(&role); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			h.writeError(w, http.StatusConflict, "a role with this name or slug already exists")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, role)
}

// updateRole handles PUT /api/roles/{id}
func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var role model.Role
	if err := json.NewDecoder(r.Body).Decode(&role); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role.ID = r.PathValue("id")

	if err := h.storage.UpdateRole(&role); err != nil {
		switch {
		case errors.Is(err, storage.ErrRoleNotFound):
			h.writeError(w, http.StatusNotFound, "role not found")
		case errors.Is(err, storage.ErrDuplicate):
			h.writeError(w, http.StatusConflict, "a role with this name or slug already exists")
		default:
			h.internalError(w, err)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, role)
}

// deleteRole handles DELETE /api/roles/{id}
func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteRole(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrRoleNotFound) {
			h.writeError(w, http.StatusNotFound, "role not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
