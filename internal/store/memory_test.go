package store

import (
	"errors"
	"testing"
	"time"

	"github.com/gestorzap/botengine/internal/models"
)

func TestInMemoryStoreTenantSettings(t *testing.T) {
	s := NewInMemoryStore()

	ts, err := s.GetTenantSettings("t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != nil {
		t.Fatalf("expected nil settings for unknown tenant, got %+v", ts)
	}

	err = s.SaveTenantSettings(models.TenantSettings{TenantID: "t1", BotEnabled: true, DefaultCountryCode: "55", MenuMode: true})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	ts, err = s.GetTenantSettings("t1")
	if err != nil || ts == nil {
		t.Fatalf("lookup failed: %v, %+v", err, ts)
	}
	if !ts.BotEnabled || ts.DefaultCountryCode != "55" || !ts.MenuMode {
		t.Errorf("settings not round-tripped: %+v", ts)
	}
	if ts.UpdatedAt.IsZero() {
		t.Errorf("expected updated_at to be stamped")
	}
}

func TestInMemoryStoreFlowValidation(t *testing.T) {
	s := NewInMemoryStore()

	if err := s.CreateFlow(models.Flow{ID: "f1", Name: "x"}); !errors.Is(err, models.ErrEmptyTenant) {
		t.Errorf("expected ErrEmptyTenant, got %v", err)
	}
	if err := s.CreateFlow(models.Flow{ID: "f1", TenantID: "t1"}); !errors.Is(err, models.ErrEmptyFlowName) {
		t.Errorf("expected ErrEmptyFlowName, got %v", err)
	}
	if err := s.CreateFlow(models.Flow{ID: "f1", TenantID: "t1", Name: "x", TriggerMode: "bogus"}); !errors.Is(err, models.ErrInvalidTrigger) {
		t.Errorf("expected ErrInvalidTrigger, got %v", err)
	}
	if err := s.UpdateFlow(models.Flow{ID: "missing", TenantID: "t1", Name: "x"}); !errors.Is(err, models.ErrUnknownFlow) {
		t.Errorf("expected ErrUnknownFlow, got %v", err)
	}
}

func TestInMemoryStoreSingleDefaultFlow(t *testing.T) {
	s := NewInMemoryStore()
	mustCreateFlow(t, s, models.Flow{ID: "f1", TenantID: "t1", Name: "first", IsActive: true, IsDefault: true})
	mustCreateFlow(t, s, models.Flow{ID: "f2", TenantID: "t1", Name: "second", IsActive: true, IsDefault: true})
	// Another tenant's default is untouched.
	mustCreateFlow(t, s, models.Flow{ID: "f3", TenantID: "t2", Name: "other", IsActive: true, IsDefault: true})

	f1, _ := s.GetFlow("f1")
	f2, _ := s.GetFlow("f2")
	f3, _ := s.GetFlow("f3")
	if f1.IsDefault {
		t.Errorf("f1 should have lost the default flag")
	}
	if !f2.IsDefault {
		t.Errorf("f2 should be the default")
	}
	if !f3.IsDefault {
		t.Errorf("t2's default should be untouched")
	}

	// Promoting via update clears the previous default too.
	f1.IsDefault = true
	if err := s.UpdateFlow(*f1); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	f2, _ = s.GetFlow("f2")
	if f2.IsDefault {
		t.Errorf("f2 should have lost the default flag after f1's promotion")
	}
}

func TestInMemoryStoreFlowOrdering(t *testing.T) {
	s := NewInMemoryStore()
	mustCreateFlow(t, s, models.Flow{ID: "low", TenantID: "t1", Name: "low", IsActive: true, Priority: 1})
	mustCreateFlow(t, s, models.Flow{ID: "high", TenantID: "t1", Name: "high", IsActive: true, Priority: 10})
	mustCreateFlow(t, s, models.Flow{ID: "inactive", TenantID: "t1", Name: "inactive", IsActive: false, Priority: 100})

	flows, err := s.GetFlowsForTenant("t1", true)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(flows) != 2 {
		t.Fatalf("expected 2 active flows, got %d", len(flows))
	}
	if flows[0].ID != "high" || flows[1].ID != "low" {
		t.Errorf("expected descending priority, got %s then %s", flows[0].ID, flows[1].ID)
	}

	flows, _ = s.GetFlowsForTenant("t1", false)
	if len(flows) != 3 {
		t.Errorf("expected 3 flows including inactive, got %d", len(flows))
	}
}

func TestInMemoryStoreDeleteFlowCascades(t *testing.T) {
	s := NewInMemoryStore()
	mustCreateFlow(t, s, models.Flow{ID: "f1", TenantID: "t1", Name: "x", IsActive: true})
	mustCreateNode(t, s, models.Node{ID: "n1", FlowID: "f1", TenantID: "t1", Type: models.NodeTypeStart})
	mustCreateNode(t, s, models.Node{ID: "n2", FlowID: "f1", TenantID: "t1", Type: models.NodeTypeEnd})
	mustCreateEdge(t, s, models.Edge{ID: "e1", FlowID: "f1", TenantID: "t1", SourceNodeID: "n1", TargetNodeID: "n2", ConditionType: models.ConditionAlways})
	if _, err := s.CreateSession(models.Session{ID: "s1", TenantID: "t1", FlowID: "f1", ContactPhone: "p1", Status: models.SessionActive}); err != nil {
		t.Fatalf("session create failed: %v", err)
	}

	if err := s.DeleteFlow("f1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if nodes, _ := s.GetNodes("f1"); len(nodes) != 0 {
		t.Errorf("nodes not cascaded: %+v", nodes)
	}
	if edges, _ := s.GetEdges("f1"); len(edges) != 0 {
		t.Errorf("edges not cascaded: %+v", edges)
	}
	if sess, _ := s.GetActiveSession("t1", "p1"); sess != nil {
		t.Errorf("sessions not cascaded: %+v", sess)
	}
}

func TestInMemoryStoreDeleteNodeCleansEdges(t *testing.T) {
	s := NewInMemoryStore()
	mustCreateFlow(t, s, models.Flow{ID: "f1", TenantID: "t1", Name: "x", IsActive: true})
	mustCreateNode(t, s, models.Node{ID: "n1", FlowID: "f1", TenantID: "t1", Type: models.NodeTypeStart})
	mustCreateNode(t, s, models.Node{ID: "n2", FlowID: "f1", TenantID: "t1", Type: models.NodeTypeMessage})
	mustCreateNode(t, s, models.Node{ID: "n3", FlowID: "f1", TenantID: "t1", Type: models.NodeTypeEnd})
	mustCreateEdge(t, s, models.Edge{ID: "e1", FlowID: "f1", TenantID: "t1", SourceNodeID: "n1", TargetNodeID: "n2", ConditionType: models.ConditionAlways})
	mustCreateEdge(t, s, models.Edge{ID: "e2", FlowID: "f1", TenantID: "t1", SourceNodeID: "n2", TargetNodeID: "n3", ConditionType: models.ConditionAlways})

	if err := s.DeleteNode("n2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	edges, _ := s.GetEdges("f1")
	if len(edges) != 0 {
		t.Errorf("edges touching n2 should be removed, got %+v", edges)
	}
	nodes, _ := s.GetNodes("f1")
	if len(nodes) != 2 {
		t.Errorf("unrelated nodes should survive, got %+v", nodes)
	}
}

func TestInMemoryStoreEdgeOrdering(t *testing.T) {
	s := NewInMemoryStore()
	mustCreateFlow(t, s, models.Flow{ID: "f1", TenantID: "t1", Name: "x", IsActive: true})
	mustCreateEdge(t, s, models.Edge{ID: "e1", FlowID: "f1", TenantID: "t1", SourceNodeID: "n1", TargetNodeID: "n2", ConditionType: models.ConditionAlways, Priority: 0})
	mustCreateEdge(t, s, models.Edge{ID: "e2", FlowID: "f1", TenantID: "t1", SourceNodeID: "n1", TargetNodeID: "n3", ConditionType: models.ConditionAlways, Priority: 5})

	edges, err := s.GetEdges("f1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(edges) != 2 || edges[0].ID != "e2" {
		t.Errorf("expected descending priority order, got %+v", edges)
	}
}

func TestInMemoryStoreSingleActiveSession(t *testing.T) {
	s := NewInMemoryStore()

	first, err := s.CreateSession(models.Session{ID: "s1", TenantID: "t1", FlowID: "f1", ContactPhone: "p1", Status: models.SessionActive})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// A second active session for the same contact returns the existing one.
	second, err := s.CreateSession(models.Session{ID: "s2", TenantID: "t1", FlowID: "f2", ContactPhone: "p1", Status: models.SessionActive})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the existing session back, got %q", second.ID)
	}

	// A different contact, or the same contact on another tenant, is unaffected.
	other, err := s.CreateSession(models.Session{ID: "s3", TenantID: "t2", FlowID: "f1", ContactPhone: "p1", Status: models.SessionActive})
	if err != nil || other.ID != "s3" {
		t.Errorf("cross-tenant session should be independent: %v, %+v", err, other)
	}

	// Completing the first frees the slot.
	status := models.SessionCompleted
	if err := s.UpdateSession(first.ID, models.SessionPatch{Status: &status}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	replacement, err := s.CreateSession(models.Session{ID: "s4", TenantID: "t1", FlowID: "f1", ContactPhone: "p1", Status: models.SessionActive})
	if err != nil || replacement.ID != "s4" {
		t.Errorf("expected a fresh session after completion: %v, %+v", err, replacement)
	}
}

func TestInMemoryStoreUpdateSessionPatch(t *testing.T) {
	s := NewInMemoryStore()
	created, err := s.CreateSession(models.Session{ID: "s1", TenantID: "t1", FlowID: "f1", ContactPhone: "p1", Status: models.SessionActive})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	nodeID := "n5"
	awaiting := true
	varName := "email"
	err = s.UpdateSession(created.ID, models.SessionPatch{
		CurrentNodeID:     &nodeID,
		Variables:         map[string]string{"email": "x@y.z"},
		AwaitingInput:     &awaiting,
		InputVariableName: &varName,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	sess, _ := s.GetActiveSession("t1", "p1")
	if sess == nil {
		t.Fatalf("expected active session")
	}
	if sess.CurrentNodeID != "n5" || !sess.AwaitingInput || sess.InputVariableName != "email" {
		t.Errorf("patch not applied: %+v", sess)
	}
	if sess.Variables["email"] != "x@y.z" {
		t.Errorf("variables not applied: %+v", sess.Variables)
	}
	if !sess.LastActivityAt.After(created.LastActivityAt) && !sess.LastActivityAt.Equal(created.LastActivityAt) {
		t.Errorf("last_activity_at should be refreshed")
	}

	if err := s.UpdateSession("missing", models.SessionPatch{}); err == nil {
		t.Errorf("expected error for unknown session")
	}
}

func TestInMemoryStoreDeleteSessionsForTenant(t *testing.T) {
	s := NewInMemoryStore()
	if _, err := s.CreateSession(models.Session{ID: "s1", TenantID: "t1", FlowID: "f1", ContactPhone: "p1", Status: models.SessionActive}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.CreateSession(models.Session{ID: "s2", TenantID: "t2", FlowID: "f1", ContactPhone: "p1", Status: models.SessionActive}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.DeleteSessionsForTenant("t1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if sess, _ := s.GetActiveSession("t1", "p1"); sess != nil {
		t.Errorf("t1 sessions should be gone, got %+v", sess)
	}
	if sess, _ := s.GetActiveSession("t2", "p1"); sess == nil {
		t.Errorf("t2 sessions should survive")
	}
}

func TestInMemoryStoreExpireStaleSessions(t *testing.T) {
	s := NewInMemoryStore()
	stale := time.Now().Add(-time.Hour)
	if _, err := s.CreateSession(models.Session{ID: "old", TenantID: "t1", FlowID: "f1", ContactPhone: "p1", Status: models.SessionActive, LastActivityAt: stale}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := s.CreateSession(models.Session{ID: "fresh", TenantID: "t1", FlowID: "f1", ContactPhone: "p2", Status: models.SessionActive}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	count, err := s.ExpireStaleSessions(time.Now().Add(-30 * time.Minute))
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 expired session, got %d", count)
	}
	if sess, _ := s.GetActiveSession("t1", "p1"); sess != nil {
		t.Errorf("stale session should be completed, got %+v", sess)
	}
	if sess, _ := s.GetActiveSession("t1", "p2"); sess == nil {
		t.Errorf("fresh session should survive")
	}
}

func TestInMemoryStoreMessageLog(t *testing.T) {
	s := NewInMemoryStore()
	entries := []models.MessageLogEntry{
		{ID: "m1", TenantID: "t1", SessionID: "s1", Direction: models.DirectionInbound, Type: "text", Content: "oi"},
		{ID: "m2", TenantID: "t1", SessionID: "s1", Direction: models.DirectionOutbound, Type: "text", Content: "olá"},
		{ID: "m3", TenantID: "t1", SessionID: "other", Direction: models.DirectionInbound, Type: "text", Content: "x"},
	}
	for _, e := range entries {
		if err := s.AppendMessageLog(e); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	log, err := s.GetMessageLog("s1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(log) != 2 || log[0].ID != "m1" || log[1].ID != "m2" {
		t.Errorf("expected s1 entries in append order, got %+v", log)
	}
	if log[0].CreatedAt.IsZero() {
		t.Errorf("expected created_at stamped on append")
	}
}

func TestInMemoryStoreMenuItems(t *testing.T) {
	s := NewInMemoryStore()
	items := []models.MenuItem{
		{ID: "m2", TenantID: "t1", Key: "second", Title: "Second", Type: models.MenuItemMessage, DisplayOrder: 2},
		{ID: "m1", TenantID: "t1", Key: "root", Title: "Root", Type: models.MenuItemSubmenu, IsRoot: true, DisplayOrder: 1},
		{ID: "m3", TenantID: "t2", Key: "other", Title: "Other", Type: models.MenuItemMessage, DisplayOrder: 0},
	}
	for _, item := range items {
		if err := s.SaveMenuItem(item); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	got, err := s.GetMenuItems("t1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
		t.Errorf("expected t1 items in display order, got %+v", got)
	}

	if err := s.DeleteMenuItem("m1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, _ = s.GetMenuItems("t1")
	if len(got) != 1 || got[0].ID != "m2" {
		t.Errorf("expected m1 removed, got %+v", got)
	}
}

func mustCreateFlow(t *testing.T, s *InMemoryStore, f models.Flow) {
	t.Helper()
	if err := s.CreateFlow(f); err != nil {
		t.Fatalf("failed to create flow %s: %v", f.ID, err)
	}
}

func mustCreateNode(t *testing.T, s *InMemoryStore, n models.Node) {
	t.Helper()
	if err := s.CreateNode(n); err != nil {
		t.Fatalf("failed to create node %s: %v", n.ID, err)
	}
}

func mustCreateEdge(t *testing.T, s *InMemoryStore, e models.Edge) {
	t.Helper()
	if err := s.CreateEdge(e); err != nil {
		t.Fatalf("failed to create edge %s: %v", e.ID, err)
	}
}
