package flow

import (
	"testing"

	"github.com/gestorzap/botengine/internal/models"
)

func TestEvaluateCondition(t *testing.T) {
	variables := map[string]string{
		"plan":  "Premium",
		"email": "ana@example.com",
	}

	tests := []struct {
		name           string
		conditionType  models.ConditionType
		conditionValue string
		inputValue     string
		want           bool
	}{
		{"always matches anything", models.ConditionAlways, "", "whatever", true},
		{"always matches empty input", models.ConditionAlways, "", "", true},

		{"equals exact", models.ConditionEquals, "yes", "yes", true},
		{"equals ignores case", models.ConditionEquals, "YES", "yes", true},
		{"equals trims whitespace", models.ConditionEquals, "yes", "  yes  ", true},
		{"equals rejects partial", models.ConditionEquals, "yes", "yes please", false},

		{"contains substring", models.ConditionContains, "help", "I need HELP now", true},
		{"contains missing", models.ConditionContains, "help", "good morning", false},

		{"regex matches", models.ConditionRegex, `^\d{5}$`, "12345", true},
		{"regex case insensitive", models.ConditionRegex, "hello", "HELLO there", true},
		{"regex no match", models.ConditionRegex, `^\d+$`, "abc", false},
		{"regex malformed fails closed", models.ConditionRegex, "([unclosed", "anything", false},

		{"variable set without expected", models.ConditionVariable, "plan", "", true},
		{"variable unset without expected", models.ConditionVariable, "missing", "", false},
		{"variable equals expected", models.ConditionVariable, "plan:premium", "", true},
		{"variable wrong expected", models.ConditionVariable, "plan:basic", "", false},
		{"variable unset with expected", models.ConditionVariable, "missing:x", "", false},
		{"variable name trimmed", models.ConditionVariable, " plan :Premium", "", true},

		{"unknown condition type", models.ConditionType("bogus"), "", "anything", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EvaluateCondition(tc.conditionType, tc.conditionValue, tc.inputValue, variables)
			if got != tc.want {
				t.Errorf("EvaluateCondition(%q, %q, %q) = %v, want %v", tc.conditionType, tc.conditionValue, tc.inputValue, got, tc.want)
			}
		})
	}
}

func TestResolveNextNodePriority(t *testing.T) {
	source := models.Node{ID: "n1", FlowID: "f1", TenantID: "t1", Type: models.NodeTypeCondition}
	yes := models.Node{ID: "n2", FlowID: "f1", TenantID: "t1", Type: models.NodeTypeMessage}
	fallback := models.Node{ID: "n3", FlowID: "f1", TenantID: "t1", Type: models.NodeTypeMessage}
	nodes := []models.Node{source, yes, fallback}

	// Edges arrive pre-ordered by descending priority, as the store returns them.
	edges := []models.Edge{
		{ID: "e1", SourceNodeID: "n1", TargetNodeID: "n2", ConditionType: models.ConditionEquals, ConditionValue: "yes", Priority: 10},
		{ID: "e2", SourceNodeID: "n1", TargetNodeID: "n3", ConditionType: models.ConditionAlways, Priority: 0},
	}

	next := resolveNextNode(source, nodes, edges, "yes", nil)
	if next == nil || next.ID != "n2" {
		t.Fatalf("expected high-priority equals edge to win, got %+v", next)
	}

	next = resolveNextNode(source, nodes, edges, "no", nil)
	if next == nil || next.ID != "n3" {
		t.Fatalf("expected fallback edge when equals does not match, got %+v", next)
	}
}

func TestResolveNextNodeNoMatch(t *testing.T) {
	source := models.Node{ID: "n1", Type: models.NodeTypeMessage}
	nodes := []models.Node{source}
	edges := []models.Edge{
		{ID: "e1", SourceNodeID: "n1", TargetNodeID: "gone", ConditionType: models.ConditionEquals, ConditionValue: "yes"},
	}

	if next := resolveNextNode(source, nodes, edges, "no", nil); next != nil {
		t.Errorf("expected nil when no edge matches, got %+v", next)
	}
}

func TestResolveNextNodeSkipsDanglingTarget(t *testing.T) {
	source := models.Node{ID: "n1", Type: models.NodeTypeCondition}
	fallback := models.Node{ID: "n3", Type: models.NodeTypeEnd}
	nodes := []models.Node{source, fallback}

	// The higher-priority edge matches but points at a deleted node; the
	// lower-priority edge should still be considered.
	edges := []models.Edge{
		{ID: "e1", SourceNodeID: "n1", TargetNodeID: "deleted", ConditionType: models.ConditionAlways, Priority: 5},
		{ID: "e2", SourceNodeID: "n1", TargetNodeID: "n3", ConditionType: models.ConditionAlways, Priority: 0},
	}

	next := resolveNextNode(source, nodes, edges, "hi", nil)
	if next == nil || next.ID != "n3" {
		t.Fatalf("expected dangling edge to be skipped in favor of n3, got %+v", next)
	}
}

func TestResolveNextNodeIgnoresOtherSources(t *testing.T) {
	source := models.Node{ID: "n1", Type: models.NodeTypeMessage}
	other := models.Node{ID: "n2", Type: models.NodeTypeMessage}
	nodes := []models.Node{source, other}
	edges := []models.Edge{
		{ID: "e1", SourceNodeID: "n2", TargetNodeID: "n1", ConditionType: models.ConditionAlways},
	}

	if next := resolveNextNode(source, nodes, edges, "hi", nil); next != nil {
		t.Errorf("expected no match for edges of other nodes, got %+v", next)
	}
}
