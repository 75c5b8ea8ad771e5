package flow

import (
	"errors"
	"testing"

	"github.com/gestorzap/botengine/internal/models"
	"github.com/gestorzap/botengine/internal/store"
)

func TestCloneFlowRemapsGraph(t *testing.T) {
	st := store.NewInMemoryStore()
	sourceID := seedGreetingFlow(t, st, "t1", true, "oi")

	clone, err := CloneFlow(st, sourceID, "t2", "Onboarding")
	if err != nil {
		t.Fatalf("CloneFlow failed: %v", err)
	}
	if clone.ID == sourceID {
		t.Errorf("clone must get a fresh id")
	}
	if clone.TenantID != "t2" || clone.Name != "Onboarding" {
		t.Errorf("unexpected clone header %+v", clone)
	}
	if clone.IsActive || clone.IsDefault || clone.IsTemplate {
		t.Errorf("clone must start inactive and non-default, got %+v", clone)
	}
	if len(clone.TriggerKeywords) != 1 || clone.TriggerKeywords[0] != "oi" {
		t.Errorf("trigger keywords not copied, got %+v", clone.TriggerKeywords)
	}

	sourceNodes, _ := st.GetNodes(sourceID)
	cloneNodes, err := st.GetNodes(clone.ID)
	if err != nil {
		t.Fatalf("node lookup failed: %v", err)
	}
	if len(cloneNodes) != len(sourceNodes) {
		t.Fatalf("expected %d nodes, got %d", len(sourceNodes), len(cloneNodes))
	}
	sourceIDs := map[string]bool{}
	for _, n := range sourceNodes {
		sourceIDs[n.ID] = true
	}
	cloneIDs := map[string]bool{}
	for _, n := range cloneNodes {
		if sourceIDs[n.ID] {
			t.Errorf("clone node %s reuses a source id", n.ID)
		}
		if n.FlowID != clone.ID || n.TenantID != "t2" {
			t.Errorf("clone node not rehomed: %+v", n)
		}
		cloneIDs[n.ID] = true
	}

	cloneEdges, err := st.GetEdges(clone.ID)
	if err != nil {
		t.Fatalf("edge lookup failed: %v", err)
	}
	sourceEdges, _ := st.GetEdges(sourceID)
	if len(cloneEdges) != len(sourceEdges) {
		t.Fatalf("expected %d edges, got %d", len(sourceEdges), len(cloneEdges))
	}
	for _, e := range cloneEdges {
		if !cloneIDs[e.SourceNodeID] || !cloneIDs[e.TargetNodeID] {
			t.Errorf("clone edge %s references nodes outside the clone: %s -> %s", e.ID, e.SourceNodeID, e.TargetNodeID)
		}
	}
}

func TestCloneFlowDefaultName(t *testing.T) {
	st := store.NewInMemoryStore()
	sourceID := seedGreetingFlow(t, st, "t1", false)

	clone, err := CloneFlow(st, sourceID, "t1", "")
	if err != nil {
		t.Fatalf("CloneFlow failed: %v", err)
	}
	if clone.Name != "Greeting (copy)" {
		t.Errorf("expected derived name, got %q", clone.Name)
	}
}

func TestCloneFlowUnknownSource(t *testing.T) {
	st := store.NewInMemoryStore()
	if _, err := CloneFlow(st, "missing", "t1", "x"); !errors.Is(err, models.ErrUnknownFlow) {
		t.Errorf("expected ErrUnknownFlow, got %v", err)
	}
}

func TestCloneFlowSkipsDanglingEdges(t *testing.T) {
	st := store.NewInMemoryStore()
	err := st.CreateFlow(models.Flow{ID: "f1", TenantID: "t1", Name: "Broken", IsActive: true})
	if err != nil {
		t.Fatalf("failed to create flow: %v", err)
	}
	node := models.Node{ID: "n1", FlowID: "f1", TenantID: "t1", Type: models.NodeTypeStart}
	if err := st.CreateNode(node); err != nil {
		t.Fatalf("failed to create node: %v", err)
	}
	edge := models.Edge{ID: "e1", FlowID: "f1", TenantID: "t1", SourceNodeID: "n1", TargetNodeID: "gone", ConditionType: models.ConditionAlways}
	if err := st.CreateEdge(edge); err != nil {
		t.Fatalf("failed to create edge: %v", err)
	}

	clone, err := CloneFlow(st, "f1", "t1", "")
	if err != nil {
		t.Fatalf("CloneFlow failed: %v", err)
	}
	edges, _ := st.GetEdges(clone.ID)
	if len(edges) != 0 {
		t.Errorf("dangling edge must not be carried into the clone, got %+v", edges)
	}
}
