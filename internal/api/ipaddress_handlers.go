package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/martinsuchenak/ipamd/internal/filter"
	"github.com/martinsuchenak/ipamd/internal/model"
	"github.com/martinsuchenak/ipamd/internal/storage"
)

// listIPAddresses handles GET /api/ip-addresses
func (h *Handler) listIPAddresses(w http.ResponseWriter, r *http.Request) {
	f, errs := filter.ParseIPAddress(r.URL.Query())
	if h.filterErrors(w, errs) {
		return
	}

	addresses, err := h.storage.ListIPAddresses(f)
	if err != nil {
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, addresses)
}

// getIPAddress handles GET /api/ip-addresses/{id}
func (h *Handler) getIPAddress(w http.ResponseWriter, r *http.Request) {
	ip, err := h.storage.GetIPAddress(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrIPAddressNotFound) {
			h.writeError(w, http.StatusNotFound, "IP address not found")
			return
		}
		h.internalError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ip)
}

// createIPAddress handles POST /api/ip-addresses
func (h *Handler) createIPAddress(w http.ResponseWriter, r *http.Request) {
	var ip model.IPAddress
	if err := json.NewDecoder(r.Body).Decode(&ip); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if ip.Address == "" {
		h.writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	if ip.ID == "" {
		ip.ID = generateID()
	}

	if err := h.storage.CreateIPAddress(&ip); err != nil {
		switch {
		case errors.Is(err, storage.ErrVRFNotFound):
			h.writeError(w, http.StatusBadRequest, "VRF does not exist")
		case errors.Is(err, storage.ErrDuplicateAddress):
			h.writeError(w, http.StatusConflict, "duplicate address in a VRF that enforces uniqueness")
		default:
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.writeJSON(w, http.StatusCreated, ip)
}

// updateIPAddress handles PUT /api/ip-addresses/{id}
func (h *Handler) updateIPAddress(w http.ResponseWriter, r *http.Request) {
	var ip model.IPAddress
	if err := json.NewDecoder(r.Body).Decode(&ip); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ip.ID = r.PathValue("id")

	if err := h.storage.UpdateIPAddress(&ip); err != nil {
		switch {
		case errors.Is(err, storage.ErrIPAddressNotFound):
			h.writeError(w, http.StatusNotFound, "IP address not found")
		case errors.Is(err, storage.ErrDuplicateAddress):
			h.writeError(w, http.StatusConflict, "duplicate address in a VRF that enforces uniqueness")
		default:
			h.writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	h.writeJSON(w, http.StatusOK, ip)
}

// deleteIPAddress handles DELETE /api/ip-addresses/{id}
func (h *Handler) deleteIPAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.DeleteIPAddress(r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrIPAddressNotFound) {
			h.writeError(w, http.StatusNotFound, "IP address not found")
			return
		}
		h.internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
