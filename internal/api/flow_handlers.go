package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gestorzap/botengine/internal/flow"
	"github.com/gestorzap/botengine/internal/flowdef"
	"github.com/gestorzap/botengine/internal/models"
)

// flowDetail is the getFlowHandler result: the flow with its full graph.
type flowDetail struct {
	Flow  models.Flow   `json:"flow"`
	Nodes []models.Node `json:"nodes"`
	Edges []models.Edge `json:"edges"`
}

func (s *Server) listFlowsHandler(w http.ResponseWriter, r *http.Request) {
	tenantID := mux.Vars(r)["tenant"]
	activeOnly := r.URL.Query().Get("active") == "true"
	flows, err := s.store.GetFlowsForTenant(tenantID, activeOnly)
	if err != nil {
		slog.Error("Server.listFlowsHandler: flow lookup failed", "error", err, "tenant", tenantID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list flows"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(flows))
}

func (s *Server) createFlowHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	tenantID := mux.Vars(r)["tenant"]

	var f models.Flow
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		slog.Warn("Server.createFlowHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	f.TenantID = tenantID
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.TriggerMode == "" {
		f.TriggerMode = models.TriggerKeyword
	}
	if err := f.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if err := s.store.CreateFlow(f); err != nil {
		slog.Error("Server.createFlowHandler: create failed", "error", err, "tenant", tenantID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create flow"))
		return
	}
	slog.Info("Server.createFlowHandler: flow created", "flow", f.ID, "tenant", tenantID)
	writeJSONResponse(w, http.StatusCreated, models.Success(f))
}

func (s *Server) getFlowHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f, err := s.store.GetFlow(id)
	if err != nil {
		slog.Error("Server.getFlowHandler: lookup failed", "error", err, "flow", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load flow"))
		return
	}
	if f == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Flow not found"))
		return
	}
	nodes, err := s.store.GetNodes(id)
	if err != nil {
		slog.Error("Server.getFlowHandler: node load failed", "error", err, "flow", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load flow"))
		return
	}
	edges, err := s.store.GetEdges(id)
	if err != nil {
		slog.Error("Server.getFlowHandler: edge load failed", "error", err, "flow", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load flow"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(flowDetail{Flow: *f, Nodes: nodes, Edges: edges}))
}

func (s *Server) updateFlowHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	id := mux.Vars(r)["id"]

	existing, err := s.store.GetFlow(id)
	if err != nil {
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load flow"))
		return
	}
	if existing == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Flow not found"))
		return
	}

	var f models.Flow
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	// Identity is immutable; everything else follows the request body.
	f.ID = existing.ID
	f.TenantID = existing.TenantID
	if err := f.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if err := s.store.UpdateFlow(f); err != nil {
		slog.Error("Server.updateFlowHandler: update failed", "error", err, "flow", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update flow"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(f))
}

func (s *Server) deleteFlowHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteFlow(id); err != nil {
		slog.Error("Server.deleteFlowHandler: delete failed", "error", err, "flow", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete flow"))
		return
	}
	slog.Info("Server.deleteFlowHandler: flow deleted", "flow", id)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Flow deleted", nil))
}

func (s *Server) cloneFlowHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	id := mux.Vars(r)["id"]

	var req struct {
		TargetTenantID string `json:"target_tenant_id"`
		Name           string `json:"name,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.TargetTenantID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("target_tenant_id is required"))
		return
	}

	clone, err := flow.CloneFlow(s.store, id, req.TargetTenantID, req.Name)
	if err != nil {
		if errors.Is(err, models.ErrUnknownFlow) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Flow not found"))
			return
		}
		slog.Error("Server.cloneFlowHandler: clone failed", "error", err, "flow", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to clone flow"))
		return
	}
	slog.Info("Server.cloneFlowHandler: flow cloned", "source", id, "clone", clone.ID, "tenant", req.TargetTenantID)
	writeJSONResponse(w, http.StatusCreated, models.Success(clone))
}

func (s *Server) exportFlowHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	data, err := flowdef.Export(s.store, id)
	if err != nil {
		if errors.Is(err, models.ErrUnknownFlow) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Flow not found"))
			return
		}
		slog.Error("Server.exportFlowHandler: export failed", "error", err, "flow", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to export flow"))
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("Server.exportFlowHandler: write failed", "error", err)
	}
}

func (s *Server) importFlowHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	tenantID := mux.Vars(r)["tenant"]

	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Failed to read request body"))
		return
	}
	def, err := flowdef.Parse(data)
	if err != nil {
		slog.Warn("Server.importFlowHandler: parse failed", "error", err, "tenant", tenantID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	created, err := def.Install(s.store, tenantID)
	if err != nil {
		slog.Error("Server.importFlowHandler: install failed", "error", err, "tenant", tenantID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to import flow"))
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Success(created))
}

func (s *Server) createNodeHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	flowID := mux.Vars(r)["id"]

	f, err := s.store.GetFlow(flowID)
	if err != nil || f == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Flow not found"))
		return
	}

	var n models.Node
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	n.FlowID = flowID
	n.TenantID = f.TenantID
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := n.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if err := s.store.CreateNode(n); err != nil {
		slog.Error("Server.createNodeHandler: create failed", "error", err, "flow", flowID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create node"))
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Success(n))
}

func (s *Server) updateNodeHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	id := mux.Vars(r)["id"]

	var n models.Node
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	n.ID = id
	if err := n.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if err := s.store.UpdateNode(n); err != nil {
		slog.Error("Server.updateNodeHandler: update failed", "error", err, "node", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to update node"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(n))
}

func (s *Server) deleteNodeHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteNode(id); err != nil {
		slog.Error("Server.deleteNodeHandler: delete failed", "error", err, "node", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete node"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Node deleted", nil))
}

func (s *Server) createEdgeHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	flowID := mux.Vars(r)["id"]

	f, err := s.store.GetFlow(flowID)
	if err != nil || f == nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Flow not found"))
		return
	}

	var e models.Edge
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	e.FlowID = flowID
	e.TenantID = f.TenantID
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ConditionType == "" {
		e.ConditionType = models.ConditionAlways
	}
	if err := e.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if err := s.store.CreateEdge(e); err != nil {
		slog.Error("Server.createEdgeHandler: create failed", "error", err, "flow", flowID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to create edge"))
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Success(e))
}

func (s *Server) deleteEdgeHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteEdge(id); err != nil {
		slog.Error("Server.deleteEdgeHandler: delete failed", "error", err, "edge", id)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete edge"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Edge deleted", nil))
}
