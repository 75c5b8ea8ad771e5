package flow

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gestorzap/botengine/internal/models"
	"github.com/gestorzap/botengine/internal/store"
)

// CloneFlow deep-copies a flow (typically a shared template) into a
// tenant-owned copy: new flow, node and edge identifiers, with the edge
// graph remapped onto the new node id set. The copy is created inactive and
// non-default so the tenant can review it before enabling.
func CloneFlow(st store.Store, sourceFlowID, targetTenantID, name string) (*models.Flow, error) {
	source, err := st.GetFlow(sourceFlowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load source flow: %w", err)
	}
	if source == nil {
		return nil, models.ErrUnknownFlow
	}

	nodes, err := st.GetNodes(sourceFlowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load source nodes: %w", err)
	}
	edges, err := st.GetEdges(sourceFlowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load source edges: %w", err)
	}

	if name == "" {
		name = source.Name + " (copy)"
	}
	clone := models.Flow{
		ID:              uuid.NewString(),
		TenantID:        targetTenantID,
		Name:            name,
		TriggerMode:     source.TriggerMode,
		TriggerKeywords: append([]string(nil), source.TriggerKeywords...),
		IsActive:        false,
		IsDefault:       false,
		IsTemplate:      false,
		Priority:        source.Priority,
	}
	if err := st.CreateFlow(clone); err != nil {
		return nil, fmt.Errorf("failed to create cloned flow: %w", err)
	}

	// Fresh node ids, remembering the mapping for edge remapping below.
	idMap := make(map[string]string, len(nodes))
	for _, n := range nodes {
		newID := uuid.NewString()
		idMap[n.ID] = newID
		n.ID = newID
		n.FlowID = clone.ID
		n.TenantID = targetTenantID
		if err := st.CreateNode(n); err != nil {
			return nil, fmt.Errorf("failed to copy node: %w", err)
		}
	}

	for _, e := range edges {
		source, okSource := idMap[e.SourceNodeID]
		target, okTarget := idMap[e.TargetNodeID]
		if !okSource || !okTarget {
			// Dangling edge in the source graph; skip it instead of carrying
			// a reference into the copy.
			slog.Debug("CloneFlow skipping dangling edge", "edge", e.ID, "source", e.SourceNodeID, "target", e.TargetNodeID)
			continue
		}
		e.ID = uuid.NewString()
		e.FlowID = clone.ID
		e.TenantID = targetTenantID
		e.SourceNodeID = source
		e.TargetNodeID = target
		if err := st.CreateEdge(e); err != nil {
			return nil, fmt.Errorf("failed to copy edge: %w", err)
		}
	}

	slog.Info("CloneFlow succeeded", "source", sourceFlowID, "clone", clone.ID, "tenant", targetTenantID, "nodes", len(nodes), "edges", len(edges))
	return &clone, nil
}
