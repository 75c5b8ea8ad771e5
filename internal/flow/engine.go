package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestorzap/botengine/internal/metrics"
	"github.com/gestorzap/botengine/internal/models"
	"github.com/gestorzap/botengine/internal/store"
)

// MaxIterations caps node traversals within one engine invocation. It is the
// engine's only termination guarantee against cyclic graphs with no exit.
const MaxIterations = 10

// InboundMessage is one message arriving from the transport webhook.
type InboundMessage struct {
	TenantID     string
	ContactPhone string
	ContactName  string
	MessageText  string
	MessageType  string
	Metadata     map[string]string
}

// MenuHandler resolves conversations for tenants running in menu mode. It
// returns the responses to deliver and, when the matched menu item hands off
// to a flow, the id of the flow to start.
type MenuHandler interface {
	Handle(tenantID, phone, input string) (responses []models.Response, startFlowID string, err error)
}

// Engine walks flow graphs in response to inbound messages. It is stateless
// between invocations; all conversation state lives in the store.
type Engine struct {
	store    store.Store
	notifier Notifier
	proc     *processor
	locker   *ContactLocker
	menu     MenuHandler
}

// NewEngine creates an engine backed by the given store. The notifier may be
// nil, in which case send_notification actions are silently skipped.
func NewEngine(st store.Store, notifier Notifier) *Engine {
	return &Engine{
		store:    st,
		notifier: notifier,
		proc:     &processor{notifier: notifier},
		locker:   NewContactLocker(),
	}
}

// SetMenuHandler installs the menu front-end used for tenants whose settings
// enable menu mode. Without one, those tenants fall back to flow selection.
func (e *Engine) SetMenuHandler(h MenuHandler) {
	e.menu = h
}

// Handle processes one inbound message end to end: session resolution, the
// node traversal loop, persistence and message logging. It never panics or
// returns an error; every failure is reported as a structured HandleResult.
// Delivery of the returned responses is the caller's responsibility.
func (e *Engine) Handle(ctx context.Context, msg InboundMessage) (result models.HandleResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Engine.Handle panic recovered", "panic", r, "tenant", msg.TenantID, "phone", msg.ContactPhone)
			result = models.HandleResult{Success: false, Error: models.ErrCodeInternal}
		}
		outcome := "ok"
		if !result.Success {
			outcome = result.Error
		}
		metrics.MessagesHandled.WithLabelValues(outcome).Inc()
		metrics.HandleDuration.Observe(time.Since(started).Seconds())
	}()

	slog.Debug("Engine.Handle invoked", "tenant", msg.TenantID, "phone", msg.ContactPhone, "text_length", len(msg.MessageText))

	settings, err := e.store.GetTenantSettings(msg.TenantID)
	if err != nil {
		slog.Error("Engine.Handle settings lookup failed", "error", err, "tenant", msg.TenantID)
		return models.HandleResult{Success: false, Error: models.ErrCodeInternal}
	}
	if settings != nil && !settings.BotEnabled {
		slog.Debug("Engine.Handle bot disabled for tenant", "tenant", msg.TenantID)
		return models.HandleResult{Success: false, Error: models.ErrCodeBotDisabled}
	}

	countryCode := ""
	if settings != nil {
		countryCode = settings.DefaultCountryCode
	}
	phone := NormalizePhone(msg.ContactPhone, countryCode)
	if phone == "" {
		return models.HandleResult{Success: false, Error: models.ErrCodeInternal}
	}

	// Serialize per contact: two concurrent messages from the same contact
	// would otherwise race the session's read-then-write cycle.
	unlock := e.locker.Lock(msg.TenantID + "|" + phone)
	defer unlock()

	// Menu mode intercepts contacts without an active flow session. A menu
	// item of type flow hands back here with the flow to start.
	var menuResponses []models.Response
	forcedFlowID := ""
	if settings != nil && settings.MenuMode && e.menu != nil {
		active, lookupErr := e.store.GetActiveSession(msg.TenantID, phone)
		if lookupErr != nil {
			slog.Error("Engine.Handle session lookup failed", "error", lookupErr, "tenant", msg.TenantID, "phone", phone)
			return models.HandleResult{Success: false, Error: models.ErrCodeInternal}
		}
		if active == nil {
			responses, flowID, menuErr := e.menu.Handle(msg.TenantID, phone, msg.MessageText)
			if menuErr != nil {
				if errors.Is(menuErr, models.ErrNoRootMenu) {
					return models.HandleResult{Success: false, Error: models.ErrCodeNoActiveFlows}
				}
				slog.Error("Engine.Handle menu resolution failed", "error", menuErr, "tenant", msg.TenantID)
				return models.HandleResult{Success: false, Error: models.ErrCodeInternal}
			}
			if flowID == "" {
				return models.HandleResult{Success: true, Responses: responses}
			}
			menuResponses = responses
			forcedFlowID = flowID
		}
	}

	sess, flow, err := e.resolveSession(msg, phone, forcedFlowID)
	if err != nil {
		if errors.Is(err, models.ErrUnknownFlow) {
			return models.HandleResult{Success: false, Error: models.ErrCodeNoActiveFlows}
		}
		return models.HandleResult{Success: false, Error: models.ErrCodeInternal}
	}

	nodes, err := e.store.GetNodes(flow.ID)
	if err != nil || len(nodes) == 0 {
		slog.Debug("Engine.Handle flow has no nodes", "flow", flow.ID, "error", err)
		return models.HandleResult{Success: false, Error: models.ErrCodeNoNodes}
	}
	edges, err := e.store.GetEdges(flow.ID)
	if err != nil {
		slog.Error("Engine.Handle edge load failed", "error", err, "flow", flow.ID)
		return models.HandleResult{Success: false, Error: models.ErrCodeInternal}
	}

	current := e.resolveCurrentNode(sess, nodes)

	e.logMessage(sess, current.ID, models.DirectionInbound, msg.MessageType, msg.MessageText)

	responses := e.runLoop(ctx, sess, *current, nodes, edges, msg.MessageText)
	if len(menuResponses) > 0 {
		responses = append(menuResponses, responses...)
	}

	if err := e.persistSession(sess); err != nil {
		slog.Error("Engine.Handle session persistence failed", "error", err, "session", sess.ID)
		return models.HandleResult{Success: false, Error: models.ErrCodeInternal}
	}

	for _, r := range responses {
		if r.Type == models.ResponseTypeDelay {
			continue
		}
		e.logMessage(sess, sess.CurrentNodeID, models.DirectionOutbound, string(r.Type), r.Content)
	}

	if sess.Status == models.SessionCompleted {
		metrics.SessionsCompleted.Inc()
	}

	slog.Info("Engine.Handle completed", "tenant", msg.TenantID, "session", sess.ID, "responses", len(responses), "status", sess.Status)
	return models.HandleResult{
		Success:       true,
		SessionID:     sess.ID,
		Responses:     responses,
		SessionStatus: string(sess.Status),
	}
}

// runLoop drives the node traversal until the session needs input, reaches a
// terminal state, runs out of edges, or hits the iteration cap. The working
// session copy is mutated in place; persistence happens afterwards.
func (e *Engine) runLoop(ctx context.Context, sess *models.Session, current models.Node, nodes []models.Node, edges []models.Edge, inputValue string) []models.Response {
	var responses []models.Response

	for i := 0; i < MaxIterations; i++ {
		metrics.NodeTraversals.WithLabelValues(string(current.Type)).Inc()

		res := e.proc.Process(ctx, current, sess, nodes, edges, inputValue)
		responses = append(responses, res.Responses...)
		applyPatch(sess, res.Patch)
		sess.CurrentNodeID = current.ID

		if sess.AwaitingInput {
			slog.Debug("Engine loop awaiting input", "session", sess.ID, "node", current.ID, "variable", sess.InputVariableName)
			break
		}
		if sess.Status != models.SessionActive {
			slog.Debug("Engine loop session terminal", "session", sess.ID, "status", sess.Status)
			break
		}
		if res.NextNode == nil {
			slog.Debug("Engine loop no matching edge, halting", "session", sess.ID, "node", current.ID)
			break
		}
		current = *res.NextNode
	}
	return responses
}

// resolveSession loads the contact's active session or creates one, selecting
// a flow for new conversations: the forced flow when a menu handoff supplied
// one, else keyword match, then the tenant default, then the highest-priority
// active flow.
func (e *Engine) resolveSession(msg InboundMessage, phone, forcedFlowID string) (*models.Session, *models.Flow, error) {
	sess, err := e.store.GetActiveSession(msg.TenantID, phone)
	if err != nil {
		slog.Error("Engine session lookup failed", "error", err, "tenant", msg.TenantID, "phone", phone)
		return nil, nil, err
	}
	if sess != nil {
		flow, err := e.store.GetFlow(sess.FlowID)
		if err == nil && flow != nil {
			return sess, flow, nil
		}
		// The session's flow is gone; fall through and start fresh.
		slog.Debug("Engine active session references missing flow", "session", sess.ID, "flow", sess.FlowID)
		now := time.Now()
		status := models.SessionCompleted
		if updateErr := e.store.UpdateSession(sess.ID, models.SessionPatch{Status: &status, EndedAt: &now}); updateErr != nil {
			slog.Error("Engine failed to close orphaned session", "error", updateErr, "session", sess.ID)
		}
	}

	var flow *models.Flow
	if forcedFlowID != "" {
		flow, err = e.store.GetFlow(forcedFlowID)
		if err != nil {
			slog.Error("Engine forced flow lookup failed", "error", err, "flow", forcedFlowID)
			return nil, nil, err
		}
		if flow == nil {
			return nil, nil, models.ErrUnknownFlow
		}
	} else {
		flow, err = e.selectFlow(msg.TenantID, msg.MessageText)
		if err != nil {
			return nil, nil, err
		}
	}

	created, err := e.store.CreateSession(models.Session{
		ID:           uuid.NewString(),
		TenantID:     msg.TenantID,
		FlowID:       flow.ID,
		ContactPhone: phone,
		ContactName:  msg.ContactName,
		Variables: map[string]string{
			"phone": phone,
			"name":  msg.ContactName,
		},
		Status: models.SessionActive,
	})
	if err != nil {
		slog.Error("Engine session creation failed", "error", err, "tenant", msg.TenantID, "phone", phone)
		return nil, nil, err
	}
	metrics.SessionsCreated.Inc()
	slog.Debug("Engine created session", "session", created.ID, "flow", flow.ID, "tenant", msg.TenantID)
	return created, flow, nil
}

// selectFlow picks the flow for a new conversation. Flows arrive ordered by
// descending priority; the first keyword match wins.
func (e *Engine) selectFlow(tenantID, messageText string) (*models.Flow, error) {
	flows, err := e.store.GetFlowsForTenant(tenantID, true)
	if err != nil {
		slog.Error("Engine flow lookup failed", "error", err, "tenant", tenantID)
		return nil, err
	}
	if len(flows) == 0 {
		return nil, models.ErrUnknownFlow
	}

	lowerText := strings.ToLower(messageText)
	for i := range flows {
		for _, keyword := range flows[i].TriggerKeywords {
			if keyword != "" && strings.Contains(lowerText, strings.ToLower(keyword)) {
				return &flows[i], nil
			}
		}
	}
	for i := range flows {
		if flows[i].IsDefault {
			return &flows[i], nil
		}
	}
	return &flows[0], nil
}

// resolveCurrentNode determines where processing resumes: the session's
// stored node if still resolvable, else the flagged entry point, else the
// first start-typed node, else the first node in load order.
func (e *Engine) resolveCurrentNode(sess *models.Session, nodes []models.Node) *models.Node {
	if sess.CurrentNodeID != "" {
		for i := range nodes {
			if nodes[i].ID == sess.CurrentNodeID {
				return &nodes[i]
			}
		}
		slog.Debug("Engine stored current node no longer resolvable", "session", sess.ID, "node", sess.CurrentNodeID)
	}
	for i := range nodes {
		if nodes[i].IsEntryPoint {
			return &nodes[i]
		}
	}
	for i := range nodes {
		if nodes[i].Type == models.NodeTypeStart {
			return &nodes[i]
		}
	}
	return &nodes[0]
}

// persistSession writes the working session state back to the store.
func (e *Engine) persistSession(sess *models.Session) error {
	return e.store.UpdateSession(sess.ID, models.SessionPatch{
		CurrentNodeID:     strPtr(sess.CurrentNodeID),
		Variables:         sess.Variables,
		Status:            &sess.Status,
		AwaitingInput:     boolPtr(sess.AwaitingInput),
		InputVariableName: strPtr(sess.InputVariableName),
		EndedAt:           sess.EndedAt,
	})
}

// logMessage appends to the message log. Log failures are swallowed: the log
// is observability, never engine state.
func (e *Engine) logMessage(sess *models.Session, nodeID string, direction models.Direction, msgType, content string) {
	if msgType == "" {
		msgType = "text"
	}
	err := e.store.AppendMessageLog(models.MessageLogEntry{
		ID:        uuid.NewString(),
		TenantID:  sess.TenantID,
		SessionID: sess.ID,
		NodeID:    nodeID,
		Direction: direction,
		Type:      msgType,
		Content:   content,
	})
	if err != nil {
		slog.Error("Engine message log append failed", "error", err, "session", sess.ID, "direction", direction)
	}
}

// applyPatch merges a node processing patch into the working session copy.
func applyPatch(sess *models.Session, patch models.SessionPatch) {
	if patch.CurrentNodeID != nil {
		sess.CurrentNodeID = *patch.CurrentNodeID
	}
	if patch.Variables != nil {
		sess.Variables = patch.Variables
	}
	if patch.Status != nil {
		sess.Status = *patch.Status
	}
	if patch.AwaitingInput != nil {
		sess.AwaitingInput = *patch.AwaitingInput
	}
	if patch.InputVariableName != nil {
		sess.InputVariableName = *patch.InputVariableName
	}
	if patch.EndedAt != nil {
		sess.EndedAt = patch.EndedAt
	}
}
