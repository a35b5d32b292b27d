package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/w1labs/atende/internal/escalation"
)

const msgRequestNotFound = "Solicitação não encontrada"

// RequestsHandler serves the escalation queue endpoints consumed by the
// operator dashboard.
type RequestsHandler struct {
	store *escalation.Store
}

func NewRequestsHandler(store *escalation.Store) *RequestsHandler {
	return &RequestsHandler{store: store}
}

func (h *RequestsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/requests", h.listPending)
	mux.HandleFunc("GET /api/requests/all", h.listAll)
	mux.HandleFunc("GET /api/requests/{id}", h.getByID)
	mux.HandleFunc("POST /api/requests/resolve/{id}", h.resolve)
}

// listPending returns open requests in creation order.
func (h *RequestsHandler) listPending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.PendingRequests())
}

// listAll returns the full history, resolved requests included.
func (h *RequestsHandler) listAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.AllRequests())
}

func (h *RequestsHandler) getByID(w http.ResponseWriter, r *http.Request) {
	req, ok := h.store.RequestByID(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, msgRequestNotFound)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *RequestsHandler) resolve(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ResolvedBy string `json:"resolvedBy"`
	}
	// Body is optional; a missing or unreadable body resolves as the
	// default operator.
	_ = json.NewDecoder(r.Body).Decode(&body)

	if !h.store.Resolve(r.PathValue("id"), body.ResolvedBy) {
		writeError(w, http.StatusNotFound, msgRequestNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Solicitação marcada como resolvida",
	})
}
