package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"connsettings/internal/codec"
	"connsettings/internal/connection"
	"connsettings/internal/service"
	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// ConnectionResponse describes one stored connection
type ConnectionResponse struct {
	UUID      string                    `json:"uuid"`
	ID        string                    `json:"id"`
	Type      string                    `json:"type"`
	Source    string                    `json:"source,omitempty"`
	Visible   bool                      `json:"visible"`
	Unsaved   bool                      `json:"unsaved"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
	Settings  map[string]map[string]any `json:"settings,omitempty"`
}

func (h *ConnectionHandler) toResponse(e *service.Entry, withSettings bool) (*ConnectionResponse, error) {
	resp := &ConnectionResponse{
		UUID:      e.Connection.UUID(),
		ID:        e.Connection.ID(),
		Type:      e.Connection.Type(),
		Source:    e.Source,
		Visible:   e.Visible,
		Unsaved:   e.Unsaved,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if withSettings {
		w, err := e.Connection.ToWire(setting.SerializeNoSecrets)
		if err != nil {
			return nil, err
		}
		doc := codec.EncodeDocument(w)
		resp.Settings = make(map[string]map[string]any, len(doc))
		for name, v := range doc {
			resp.Settings[name], _ = v.(map[string]any)
		}
	}
	return resp, nil
}

// ListConnections returns every connection without settings
func (h *ConnectionHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, "Failed to list connections", err)
		return
	}

	out := make([]*ConnectionResponse, 0, len(entries))
	for _, e := range entries {
		resp, err := h.toResponse(e, false)
		if err != nil {
			h.fail(w, "Failed to list connections", err)
			return
		}
		out = append(out, resp)
	}
	h.writeJSON(w, out, http.StatusOK)
}

// GetConnection returns one connection with its settings
func (h *ConnectionHandler) GetConnection(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), r.PathValue("uuid"))
	if err != nil {
		h.fail(w, "Failed to get connection", err)
		return
	}
	resp, err := h.toResponse(e, true)
	if err != nil {
		h.fail(w, "Failed to get connection", err)
		return
	}
	h.writeJSON(w, resp, http.StatusOK)
}

// CreateConnection adds a connection from a JSON connection document
func (h *ConnectionHandler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	doc, err := h.codec.Parse(r.Body)
	if err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := connection.FromWire(doc)
	if err != nil {
		h.writeError(w, "Invalid connection", err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.svc.Add(r.Context(), conn, "")
	if err != nil {
		h.fail(w, "Failed to add connection", err)
		return
	}
	resp, err := h.toResponse(e, true)
	if err != nil {
		h.fail(w, "Failed to add connection", err)
		return
	}
	h.writeJSON(w, resp, http.StatusCreated)
}

// UpdateConnection replaces a connection's settings. With ?commit=false
// the new settings are kept in memory only.
func (h *ConnectionHandler) UpdateConnection(w http.ResponseWriter, r *http.Request) {
	uuid := r.PathValue("uuid")
	doc, err := h.codec.Parse(r.Body)
	if err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	commit := true
	if v := r.URL.Query().Get("commit"); v != "" {
		if commit, err = strconv.ParseBool(v); err != nil {
			h.writeError(w, "Invalid commit parameter", err.Error(), http.StatusBadRequest)
			return
		}
	}

	if commit {
		err = h.svc.ReplaceAndCommit(r.Context(), uuid, doc)
	} else {
		err = h.svc.ReplaceSettings(r.Context(), uuid, doc)
	}
	if err != nil {
		h.fail(w, "Failed to update connection", err)
		return
	}

	h.GetConnection(w, r)
}

// DeleteConnection removes a connection
func (h *ConnectionHandler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("uuid")); err != nil {
		h.fail(w, "Failed to delete connection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSecrets returns the secrets of one setting. Query parameters:
// hints (comma separated secret names) and request_new.
func (h *ConnectionHandler) GetSecrets(w http.ResponseWriter, r *http.Request) {
	var hints []string
	if v := r.URL.Query().Get("hints"); v != "" {
		hints = strings.Split(v, ",")
	}
	requestNew, _ := strconv.ParseBool(r.URL.Query().Get("request_new"))

	m, err := h.svc.GetSecrets(r.Context(), r.PathValue("uuid"), r.PathValue("setting"), hints, requestNew)
	if err != nil {
		h.fail(w, "Failed to get secrets", err)
		return
	}
	h.writeJSON(w, wire.MapToAny(m), http.StatusOK)
}

// VisibleRequest sets a connection's visibility
type VisibleRequest struct {
	Visible bool `json:"visible"`
}

// SetVisible changes a connection's visibility
func (h *ConnectionHandler) SetVisible(w http.ResponseWriter, r *http.Request) {
	var req VisibleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.SetVisible(r.Context(), r.PathValue("uuid"), req.Visible); err != nil {
		h.fail(w, "Failed to set visibility", err)
		return
	}
	h.writeJSON(w, req, http.StatusOK)
}
