package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/gestorzap/botengine/internal/models"
)

// Notifier is the outbound notification collaborator used by the
// send_notification action. Calls are best-effort: errors are logged by the
// processor and never affect flow progression.
type Notifier interface {
	Notify(ctx context.Context, tenantID, title, body string, data map[string]string) error
}

// ProcessResult is the outcome of processing one node: zero or more outbound
// responses, the next node to visit (nil halts the loop), and a partial
// session update.
type ProcessResult struct {
	Responses []models.Response
	NextNode  *models.Node
	Patch     models.SessionPatch
}

// processor walks single nodes. It never returns an error: malformed node
// configuration degrades to a no-op for the affected aspect.
type processor struct {
	notifier Notifier
}

// Process dispatches on the node type and produces the node's responses,
// session patch and successor.
func (p *processor) Process(ctx context.Context, node models.Node, sess *models.Session, nodes []models.Node, edges []models.Edge, inputValue string) ProcessResult {
	slog.Debug("Processor.Process invoked", "node", node.ID, "type", node.Type, "session", sess.ID)

	switch node.Type {
	case models.NodeTypeStart:
		return ProcessResult{NextNode: resolveNextNode(node, nodes, edges, inputValue, sess.Variables)}

	case models.NodeTypeMessage:
		return p.processMessage(node, sess, nodes, edges, inputValue)

	case models.NodeTypeInput:
		return p.processInput(node, sess, nodes, edges, inputValue)

	case models.NodeTypeCondition:
		return ProcessResult{NextNode: resolveNextNode(node, nodes, edges, inputValue, sess.Variables)}

	case models.NodeTypeAction:
		return p.processAction(ctx, node, sess, nodes, edges, inputValue)

	case models.NodeTypeDelay:
		return p.processDelay(node, sess, nodes, edges, inputValue)

	case models.NodeTypeGoto:
		// Flow switching is not implemented; the session simply ends here.
		return ProcessResult{Patch: completedPatch()}

	case models.NodeTypeEnd:
		return p.processEnd(node, sess)

	default:
		slog.Debug("Processor.Process unknown node type, halting", "node", node.ID, "type", node.Type)
		return ProcessResult{}
	}
}

// processMessage renders the node's message template and advances.
func (p *processor) processMessage(node models.Node, sess *models.Session, nodes []models.Node, edges []models.Edge, inputValue string) ProcessResult {
	var responses []models.Response
	if r, ok := buildContentResponse(node.Config, sess.Variables); ok {
		responses = append(responses, r)
	}
	return ProcessResult{
		Responses: responses,
		NextNode:  resolveNextNode(node, nodes, edges, inputValue, sess.Variables),
	}
}

// processInput is two-phase: prompt and wait on the first pass, store the
// answer and advance on the second.
func (p *processor) processInput(node models.Node, sess *models.Session, nodes []models.Node, edges []models.Edge, inputValue string) ProcessResult {
	variableName := node.Config.VariableName
	if variableName == "" {
		// Nothing to collect; degrade to a pass-through.
		slog.Debug("Processor input node without variable name, skipping", "node", node.ID)
		return ProcessResult{NextNode: resolveNextNode(node, nodes, edges, inputValue, sess.Variables)}
	}

	if !sess.AwaitingInput || sess.InputVariableName != variableName {
		// First pass: prompt and halt. Outgoing edges are ignored until the
		// contact answers.
		var responses []models.Response
		prompt := node.Config.Prompt
		if prompt == "" {
			prompt = node.Config.MessageText
		}
		if prompt != "" {
			responses = append(responses, models.Response{
				Type:    models.ResponseTypeText,
				Content: Interpolate(prompt, sess.Variables),
			})
		}
		return ProcessResult{
			Responses: responses,
			Patch: models.SessionPatch{
				AwaitingInput:     boolPtr(true),
				InputVariableName: strPtr(variableName),
			},
		}
	}

	// Second pass: store the answer and advance with the updated variables.
	variables := copyVariables(sess.Variables)
	variables[variableName] = inputValue
	return ProcessResult{
		NextNode: resolveNextNode(node, nodes, edges, inputValue, variables),
		Patch: models.SessionPatch{
			Variables:         variables,
			AwaitingInput:     boolPtr(false),
			InputVariableName: strPtr(""),
		},
	}
}

// processAction dispatches on the configured action type and always advances.
func (p *processor) processAction(ctx context.Context, node models.Node, sess *models.Session, nodes []models.Node, edges []models.Edge, inputValue string) ProcessResult {
	result := ProcessResult{}
	variables := sess.Variables

	switch node.Config.ActionType {
	case models.ActionSetVariable:
		if node.Config.ActionVariable != "" {
			variables = copyVariables(sess.Variables)
			variables[node.Config.ActionVariable] = Interpolate(node.Config.ActionValue, sess.Variables)
			result.Patch.Variables = variables
		} else {
			slog.Debug("Processor set_variable action without variable name, skipping", "node", node.ID)
		}

	case models.ActionSendNotification:
		if p.notifier != nil {
			title := Interpolate(node.Config.NotificationTitle, variables)
			body := Interpolate(node.Config.NotificationBody, variables)
			if err := p.notifier.Notify(ctx, node.TenantID, title, body, variables); err != nil {
				slog.Error("Processor notification dispatch failed", "error", err, "node", node.ID, "tenant", node.TenantID)
			}
		}

	case models.ActionHTTPRequest:
		// Placeholder: not implemented.
		slog.Debug("Processor http_request action is a no-op", "node", node.ID)

	default:
		slog.Debug("Processor unknown action type, skipping", "node", node.ID, "action", node.Config.ActionType)
	}

	result.NextNode = resolveNextNode(node, nodes, edges, inputValue, variables)
	return result
}

// processDelay emits a delay response for the transport layer to interpret.
// The engine never sleeps.
func (p *processor) processDelay(node models.Node, sess *models.Session, nodes []models.Node, edges []models.Edge, inputValue string) ProcessResult {
	var responses []models.Response
	if node.Config.DelaySeconds > 0 {
		responses = append(responses, models.Response{
			Type:    models.ResponseTypeDelay,
			DelayMs: node.Config.DelaySeconds * 1000,
		})
	}
	return ProcessResult{
		Responses: responses,
		NextNode:  resolveNextNode(node, nodes, edges, inputValue, sess.Variables),
	}
}

// processEnd completes the session, optionally emitting a final message.
func (p *processor) processEnd(node models.Node, sess *models.Session) ProcessResult {
	var responses []models.Response
	if r, ok := buildContentResponse(node.Config, sess.Variables); ok {
		responses = append(responses, r)
	}
	return ProcessResult{
		Responses: responses,
		Patch:     completedPatch(),
	}
}

// buildContentResponse assembles the outbound response described by a node's
// message configuration. Returns false when the config carries no content.
func buildContentResponse(cfg models.NodeConfig, variables map[string]string) (models.Response, bool) {
	text := Interpolate(cfg.MessageText, variables)

	if cfg.MediaURL != "" {
		mediaType := models.ResponseTypeImage
		if cfg.MediaType == "document" {
			mediaType = models.ResponseTypeDocument
		}
		return models.Response{Type: mediaType, MediaURL: cfg.MediaURL, Content: text}, true
	}
	if len(cfg.Buttons) > 0 {
		return models.Response{Type: models.ResponseTypeButtons, Content: text, Buttons: cfg.Buttons}, true
	}
	if text == "" {
		return models.Response{}, false
	}
	return models.Response{Type: models.ResponseTypeText, Content: text}, true
}

func completedPatch() models.SessionPatch {
	now := time.Now()
	status := models.SessionCompleted
	return models.SessionPatch{Status: &status, EndedAt: &now, AwaitingInput: boolPtr(false)}
}

func copyVariables(variables map[string]string) map[string]string {
	out := make(map[string]string, len(variables)+1)
	for k, v := range variables {
		out[k] = v
	}
	return out
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
