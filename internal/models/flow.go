// Package models defines the flow graph structures for the bot engine.
package models

import "time"

// TriggerMode defines how a flow is selected for a new conversation.
type TriggerMode string

const (
	// TriggerFirstMessage starts the flow on any first message from a contact.
	TriggerFirstMessage TriggerMode = "first_message"
	// TriggerKeyword starts the flow when the inbound message matches a keyword.
	TriggerKeyword TriggerMode = "keyword"
	// TriggerManual means the flow is only started explicitly (e.g. by a menu item).
	TriggerManual TriggerMode = "manual"
)

// IsValidTriggerMode checks if the given trigger mode is supported.
func IsValidTriggerMode(tm TriggerMode) bool {
	switch tm {
	case TriggerFirstMessage, TriggerKeyword, TriggerManual:
		return true
	default:
		return false
	}
}

// Flow is a named, tenant-scoped conversation definition: a directed graph of
// nodes and edges. At most one active flow per tenant should carry IsDefault;
// that is enforced by the store, not by a database constraint.
type Flow struct {
	ID              string      `json:"id"`
	TenantID        string      `json:"tenant_id"`
	Name            string      `json:"name"`
	TriggerMode     TriggerMode `json:"trigger_mode"`
	TriggerKeywords []string    `json:"trigger_keywords,omitempty"`
	IsActive        bool        `json:"is_active"`
	IsDefault       bool        `json:"is_default"`
	IsTemplate      bool        `json:"is_template"`
	Priority        int         `json:"priority"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NodeType identifies the behavior of one flow step.
type NodeType string

const (
	NodeTypeStart     NodeType = "start"
	NodeTypeMessage   NodeType = "message"
	NodeTypeInput     NodeType = "input"
	NodeTypeCondition NodeType = "condition"
	NodeTypeAction    NodeType = "action"
	NodeTypeDelay     NodeType = "delay"
	NodeTypeGoto      NodeType = "goto"
	NodeTypeEnd       NodeType = "end"
)

// IsValidNodeType checks if the given node type is supported.
func IsValidNodeType(nt NodeType) bool {
	switch nt {
	case NodeTypeStart, NodeTypeMessage, NodeTypeInput, NodeTypeCondition,
		NodeTypeAction, NodeTypeDelay, NodeTypeGoto, NodeTypeEnd:
		return true
	default:
		return false
	}
}

// ActionType identifies the operation performed by an action node.
type ActionType string

const (
	ActionSetVariable      ActionType = "set_variable"
	ActionSendNotification ActionType = "send_notification"
	// ActionHTTPRequest is accepted but currently a no-op placeholder.
	ActionHTTPRequest ActionType = "http_request"
)

// NodeConfig is the type-specific payload of a node. Fields not relevant to
// the node's type are left zero; missing optional fields degrade to a no-op
// for that aspect rather than failing the processing pass.
type NodeConfig struct {
	// message / end nodes
	MessageText string   `json:"message_text,omitempty" yaml:"message_text,omitempty"`
	MediaURL    string   `json:"media_url,omitempty" yaml:"media_url,omitempty"`
	MediaType   string   `json:"media_type,omitempty" yaml:"media_type,omitempty"` // "image" or "document"
	Buttons     []Button `json:"buttons,omitempty" yaml:"buttons,omitempty"`

	// input nodes
	Prompt       string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	VariableName string `json:"variable_name,omitempty" yaml:"variable_name,omitempty"`

	// delay nodes
	DelaySeconds int `json:"delay_seconds,omitempty" yaml:"delay_seconds,omitempty"`

	// action nodes
	ActionType        ActionType `json:"action_type,omitempty" yaml:"action_type,omitempty"`
	ActionVariable    string     `json:"action_variable,omitempty" yaml:"action_variable,omitempty"`
	ActionValue       string     `json:"action_value,omitempty" yaml:"action_value,omitempty"`
	NotificationTitle string     `json:"notification_title,omitempty" yaml:"notification_title,omitempty"`
	NotificationBody  string     `json:"notification_body,omitempty" yaml:"notification_body,omitempty"`

	// goto nodes (flow switching is not implemented; the session is ended)
	TargetFlowID string `json:"target_flow_id,omitempty" yaml:"target_flow_id,omitempty"`
}

// Position is the 2D layout position of a node. Presentation only.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one step of a flow.
type Node struct {
	ID           string     `json:"id"`
	FlowID       string     `json:"flow_id"`
	TenantID     string     `json:"tenant_id"`
	Type         NodeType   `json:"type"`
	Label        string     `json:"label,omitempty"`
	Config       NodeConfig `json:"config"`
	Position     Position   `json:"position"`
	IsEntryPoint bool       `json:"is_entry_point"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ConditionType identifies how an edge's condition is evaluated.
type ConditionType string

const (
	ConditionAlways   ConditionType = "always"
	ConditionEquals   ConditionType = "equals"
	ConditionContains ConditionType = "contains"
	ConditionRegex    ConditionType = "regex"
	// ConditionVariable matches against a stored session variable. The
	// condition value has the form "name:expectedValue"; without a colon the
	// condition is satisfied when the variable is set at all.
	ConditionVariable ConditionType = "variable"
)

// IsValidConditionType checks if the given condition type is supported.
func IsValidConditionType(ct ConditionType) bool {
	switch ct {
	case ConditionAlways, ConditionEquals, ConditionContains, ConditionRegex, ConditionVariable:
		return true
	default:
		return false
	}
}

// Edge is a directed, conditional transition between two nodes of one flow.
// Edges are evaluated in descending priority order; the first match wins.
type Edge struct {
	ID             string        `json:"id"`
	FlowID         string        `json:"flow_id"`
	TenantID       string        `json:"tenant_id"`
	SourceNodeID   string        `json:"source_node_id"`
	TargetNodeID   string        `json:"target_node_id"`
	ConditionType  ConditionType `json:"condition_type"`
	ConditionValue string        `json:"condition_value,omitempty"`
	Label          string        `json:"label,omitempty"`
	Priority       int           `json:"priority"`
	CreatedAt      time.Time     `json:"created_at"`
}

// SessionStatus is the lifecycle state of a conversation session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// Session is the durable conversation state for one (tenant, contact) pair.
// At most one active session per (tenant, contact) exists at any time.
type Session struct {
	ID                string            `json:"id"`
	TenantID          string            `json:"tenant_id"`
	FlowID            string            `json:"flow_id"`
	ContactPhone      string            `json:"contact_phone"`
	ContactName       string            `json:"contact_name,omitempty"`
	CurrentNodeID     string            `json:"current_node_id,omitempty"`
	Variables         map[string]string `json:"variables"`
	Status            SessionStatus     `json:"status"`
	AwaitingInput     bool              `json:"awaiting_input"`
	InputVariableName string            `json:"input_variable_name,omitempty"`
	LastActivityAt    time.Time         `json:"last_activity_at"`
	CreatedAt         time.Time         `json:"created_at"`
	EndedAt           *time.Time        `json:"ended_at,omitempty"`
}

// SessionPatch is a partial update to a session produced by node processing.
// Nil pointer fields mean "leave unchanged".
type SessionPatch struct {
	CurrentNodeID     *string
	Variables         map[string]string
	Status            *SessionStatus
	AwaitingInput     *bool
	InputVariableName *string
	EndedAt           *time.Time
}

// Validate performs basic validation on a Flow.
func (f *Flow) Validate() error {
	if f.TenantID == "" {
		return ErrEmptyTenant
	}
	if f.Name == "" {
		return ErrEmptyFlowName
	}
	if f.TriggerMode != "" && !IsValidTriggerMode(f.TriggerMode) {
		return ErrInvalidTrigger
	}
	return nil
}

// Validate performs basic validation on a Node.
func (n *Node) Validate() error {
	if n.TenantID == "" {
		return ErrEmptyTenant
	}
	if !IsValidNodeType(n.Type) {
		return ErrInvalidNodeType
	}
	return nil
}

// Validate performs basic validation on an Edge.
func (e *Edge) Validate() error {
	if e.TenantID == "" {
		return ErrEmptyTenant
	}
	if !IsValidConditionType(e.ConditionType) {
		return ErrInvalidCondition
	}
	return nil
}
