// Package flow implements the conversational bot engine: condition
// evaluation, node processing and the message-driven orchestration loop.
package flow

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/gestorzap/botengine/internal/models"
)

// EvaluateCondition decides whether an edge should be taken, given the user's
// input and the session variables. Pure function; a malformed regex pattern
// fails closed (non-matching) rather than erroring.
func EvaluateCondition(ct models.ConditionType, conditionValue, inputValue string, variables map[string]string) bool {
	switch ct {
	case models.ConditionAlways:
		return true

	case models.ConditionEquals:
		return strings.EqualFold(strings.TrimSpace(inputValue), strings.TrimSpace(conditionValue))

	case models.ConditionContains:
		return strings.Contains(strings.ToLower(inputValue), strings.ToLower(conditionValue))

	case models.ConditionRegex:
		re, err := regexp.Compile("(?i)" + conditionValue)
		if err != nil {
			slog.Debug("EvaluateCondition invalid regex, treating as non-matching", "pattern", conditionValue, "error", err)
			return false
		}
		return re.MatchString(inputValue)

	case models.ConditionVariable:
		name, expected, hasExpected := strings.Cut(conditionValue, ":")
		stored, isSet := variables[strings.TrimSpace(name)]
		if !hasExpected {
			// Without an expected value the condition is "variable is set".
			return isSet
		}
		return isSet && strings.EqualFold(stored, expected)

	default:
		return false
	}
}

// resolveNextNode finds the first outgoing edge of node whose condition
// matches, scanning in descending priority order, and returns its target.
// A nil result means no edge matched and the flow halts at this point.
func resolveNextNode(node models.Node, nodes []models.Node, edges []models.Edge, inputValue string, variables map[string]string) *models.Node {
	for _, e := range edges {
		if e.SourceNodeID != node.ID {
			continue
		}
		if !EvaluateCondition(e.ConditionType, e.ConditionValue, inputValue, variables) {
			continue
		}
		for i := range nodes {
			if nodes[i].ID == e.TargetNodeID {
				return &nodes[i]
			}
		}
		// Edge matched but its target is gone; keep looking at lower
		// priority edges rather than halting on a dangling reference.
		slog.Debug("resolveNextNode edge target missing", "edge", e.ID, "target", e.TargetNodeID)
	}
	return nil
}
