package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"mosdacbot/internal/codec"
	"mosdacbot/internal/domain"
	"mosdacbot/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 64 << 10

// defaultRelatedDepth is used when the depth query parameter is absent
const defaultRelatedDepth = 2

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// QueryRequest is the body of POST /api/query
type QueryRequest struct {
	Text string `json:"text"`
}

// SelectRequest is the body of PUT /api/sessions/{sid}/selection
type SelectRequest struct {
	NodeID string `json:"node_id"`
}

// SessionResponse is returned when a session is opened
type SessionResponse struct {
	SessionID string                `json:"session_id"`
	Selection domain.SelectionState `json:"selection"`
}

// NodeListResponse wraps node search results
type NodeListResponse struct {
	Nodes []domain.Node `json:"nodes"`
	Count int           `json:"count"`
}

// HelpHandler handles help-desk API requests
type HelpHandler struct {
	svc    *service.HelpService
	logger *zap.Logger
}

// NewHelpHandler creates a new help handler
func NewHelpHandler(svc *service.HelpService, logger *zap.Logger) *HelpHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HelpHandler{svc: svc, logger: logger.Named("handler")}
}

// Query classifies a free-text question and returns the composed answer
func (h *HelpHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.ClassifyQuery(req.Text)
	if err != nil {
		h.fail(w, "Failed to answer query", err)
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// ListNodes returns nodes whose label or type contains q.
// Without q the whole catalog is returned.
func (h *HelpHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	h.writeNodes(w, h.svc.SearchNodes(r.URL.Query().Get("q")))
}

// SearchTerms returns nodes matching any key term of the free-text q
func (h *HelpHandler) SearchTerms(w http.ResponseWriter, r *http.Request) {
	h.writeNodes(w, h.svc.SearchTerms(r.URL.Query().Get("q")))
}

// GetNode returns a node with its incident edges
func (h *HelpHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetNodeDetail(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Failed to get node", err)
		return
	}

	h.writeJSON(w, detail, http.StatusOK)
}

// GetRelated returns the neighborhood of a node
func (h *HelpHandler) GetRelated(w http.ResponseWriter, r *http.Request) {
	depth := defaultRelatedDepth
	if raw := r.URL.Query().Get("depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 {
			h.writeError(w, "Invalid depth", "depth must be a positive integer", http.StatusBadRequest)
			return
		}
		depth = d
	}

	related, err := h.svc.Related(chi.URLParam(r, "id"), depth)
	if err != nil {
		h.fail(w, "Failed to get related nodes", err)
		return
	}

	h.writeJSON(w, related, http.StatusOK)
}

// GetStats returns catalog counts by node and edge type
func (h *HelpHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Stats(), http.StatusOK)
}

// Export writes the published catalog as a downloadable file
func (h *HelpHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))

	data, err := h.svc.Export(format)
	if err != nil {
		h.fail(w, "Failed to export catalog", err)
		return
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "application/x-yaml")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=catalog.%s", format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write export", zap.Error(err))
	}
}

// Health reports the loaded components
func (h *HelpHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Health(), http.StatusOK)
}

// CreateSession opens a browsing session
func (h *HelpHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := h.svc.NewSession()
	h.writeJSON(w, SessionResponse{SessionID: id}, http.StatusCreated)
}

// DeleteSession closes a browsing session
func (h *HelpHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.CloseSession(chi.URLParam(r, "sid")); err != nil {
		h.fail(w, "Failed to close session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSelection returns the session's selection state
func (h *HelpHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.GetSelection(chi.URLParam(r, "sid"))
	if err != nil {
		h.fail(w, "Failed to get selection", err)
		return
	}
	h.writeJSON(w, state, http.StatusOK)
}

// SelectNode selects a node in the session
func (h *HelpHandler) SelectNode(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.NodeID) == "" {
		h.writeError(w, "Node ID is required", "", http.StatusBadRequest)
		return
	}

	state, err := h.svc.SelectNode(chi.URLParam(r, "sid"), req.NodeID)
	if err != nil {
		h.fail(w, "Failed to select node", err)
		return
	}
	h.writeJSON(w, state, http.StatusOK)
}

// ClearSelection returns the session to the unselected state
func (h *HelpHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.ClearSelection(chi.URLParam(r, "sid"))
	if err != nil {
		h.fail(w, "Failed to clear selection", err)
		return
	}
	h.writeJSON(w, state, http.StatusOK)
}

// Helper methods

func (h *HelpHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *HelpHandler) writeNodes(w http.ResponseWriter, nodes []domain.Node) {
	if nodes == nil {
		nodes = []domain.Node{}
	}
	h.writeJSON(w, NodeListResponse{Nodes: nodes, Count: len(nodes)}, http.StatusOK)
}

// fail maps a service error onto a status code
func (h *HelpHandler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, codec.ErrUnsupportedFormat):
		h.writeError(w, msg, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error(msg, zap.Error(err))
		h.writeError(w, msg, err.Error(), http.StatusInternalServerError)
	}
}

func (h *HelpHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode JSON", zap.Error(err))
	}
}

func (h *HelpHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}
