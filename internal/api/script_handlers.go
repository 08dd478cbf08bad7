package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/martinsuchenak/ipamd/internal/log"
	"github.com/martinsuchenak/ipamd/internal/script"
)

// Uploaded files are read fully into memory, so keep them small.
const maxScriptUpload = 10 << 20 // 10 MiB

var errInvalidBody = errors.New("invalid request body")

type scriptInfo struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Fields      []script.FieldSpec `json:"fields"`
}

// listScripts handles GET /api/scripts
func (h *Handler) listScripts(w http.ResponseWriter, r *http.Request) {
	scripts := h.scripts.List()
	out := make([]scriptInfo, 0, len(scripts))
	for _, s := range scripts {
		out = append(out, scriptInfo{
			Name:        s.Name,
			Description: s.Description,
			Fields:      s.FieldSpecs(),
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// getScript handles GET /api/scripts/{name}
func (h *Handler) getScript(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scripts.Get(r.PathValue("name"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "script not found")
		return
	}
	h.writeJSON(w, http.StatusOK, scriptInfo{
		Name:        s.Name,
		Description: s.Description,
		Fields:      s.FieldSpecs(),
	})
}

// runScript handles POST /api/scripts/{name}/run. Input is either a JSON
// object or a multipart form when file variables are involved. Invalid input
// comes back as a 400 with per-field errors; the script itself never runs.
func (h *Handler) runScript(w http.ResponseWriter, r *http.Request) {
	s, ok := h.scripts.Get(r.PathValue("name"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "script not found")
		return
	}

	data, files, err := decodeScriptInput(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	form := s.AsForm(data, files)
	if !form.IsValid() {
		h.writeFieldErrors(w, form.Errors)
		return
	}

	var out script.Output
	if err := s.Run(r.Context(), form.CleanedData, &out); err != nil {
		log.Error("script failed", "script", s.Name, "error", err)
		h.writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "failed",
			"error":  err.Error(),
			"log":    out.Lines,
		})
		return
	}

	log.Info("script completed", "script", s.Name)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "completed",
		"log":    out.Lines,
	})
}

// decodeScriptInput reads script input from the request. A multipart form
// carries scalar values in a "data" JSON part (or as plain form values) and
// file uploads as the remaining parts.
func decodeScriptInput(r *http.Request) (map[string]interface{}, map[string]*script.File, error) {
	data := make(map[string]interface{})
	files := make(map[string]*script.File)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxScriptUpload); err != nil {
			return nil, nil, errInvalidBody
		}
		if raw := r.FormValue("data"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &data); err != nil {
				return nil, nil, errInvalidBody
			}
		}
		for name, values := range r.MultipartForm.Value {
			if name == "data" {
				continue
			}
			if len(values) == 1 {
				data[name] = values[0]
			} else {
				data[name] = values
			}
		}
		for name, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			f, err := headers[0].Open()
			if err != nil {
				return nil, nil, errInvalidBody
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, nil, errInvalidBody
			}
			files[name] = &script.File{Name: headers[0].Filename, Content: content}
		}
		return data, files, nil
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			return nil, nil, errInvalidBody
		}
	}
	return data, files, nil
}
