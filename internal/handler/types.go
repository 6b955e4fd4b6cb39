package handler

import (
	"encoding/json"
	"net/http"

	"connsettings/internal/codec"
	"connsettings/internal/connection"
	"connsettings/internal/schemadoc"
	"connsettings/internal/setting"
)

// TypeResponse describes one registered setting type
type TypeResponse struct {
	Name     string `json:"name"`
	Priority uint32 `json:"priority"`
	Base     bool   `json:"base"`
}

// ListTypes returns every registered setting type in priority order
func (h *ConnectionHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types := h.reg.Types()
	out := make([]TypeResponse, 0, len(types))
	for _, info := range types {
		out = append(out, TypeResponse{
			Name:     info.Name,
			Priority: info.Priority,
			Base:     h.reg.IsBaseType(info.Type),
		})
	}
	h.writeJSON(w, out, http.StatusOK)
}

// GetTypeSchema returns the JSON Schema of one setting type
func (h *ConnectionHandler) GetTypeSchema(w http.ResponseWriter, r *http.Request) {
	s, err := schemadoc.ForType(h.reg, r.PathValue("name"))
	if err != nil {
		h.writeError(w, "Unknown setting type", err.Error(), http.StatusNotFound)
		return
	}
	h.writeJSON(w, s, http.StatusOK)
}

// DiffRequest compares two connection documents
type DiffRequest struct {
	A     map[string]any `json:"a"`
	B     map[string]any `json:"b"`
	Flags []string       `json:"flags,omitempty"`
}

// DiffResponse lists differing properties per setting. Each property maps
// to the side holding a non-default value: "a", "b" or "a|b".
type DiffResponse struct {
	Equal bool                         `json:"equal"`
	Diff  map[string]map[string]string `json:"diff,omitempty"`
}

// Diff compares two connection documents
func (h *ConnectionHandler) Diff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	flags, err := setting.ParseCompareFlags(req.Flags...)
	if err != nil {
		h.writeError(w, "Invalid flags", err.Error(), http.StatusBadRequest)
		return
	}

	a, err := h.decodeConnection(req.A)
	if err != nil {
		h.writeError(w, "Invalid connection a", err.Error(), http.StatusBadRequest)
		return
	}
	b, err := h.decodeConnection(req.B)
	if err != nil {
		h.writeError(w, "Invalid connection b", err.Error(), http.StatusBadRequest)
		return
	}

	resp := DiffResponse{Equal: true}
	if d := a.Diff(b, flags); d != nil {
		resp.Equal = false
		resp.Diff = make(map[string]map[string]string, len(d))
		for name, props := range d {
			m := make(map[string]string, len(props))
			for prop, f := range props {
				m[prop] = f.String()
			}
			resp.Diff[name] = m
		}
	}
	h.writeJSON(w, resp, http.StatusOK)
}

func (h *ConnectionHandler) decodeConnection(doc map[string]any) (*connection.Connection, error) {
	w, err := codec.DecodeDocument(h.reg, doc)
	if err != nil {
		return nil, err
	}
	return connection.FromWire(w)
}
