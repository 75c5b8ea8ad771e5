// Package models defines the core data structures for the bot engine.
//
// It includes the flow graph (flows, nodes, edges), conversation sessions,
// engine responses, and the message log, which are shared across modules.
package models

import (
	"errors"
	"time"
)

// ResponseType defines how a single engine response should be delivered.
type ResponseType string

const (
	// ResponseTypeText is a plain text message.
	ResponseTypeText ResponseType = "text"
	// ResponseTypeImage is an image attachment with optional caption.
	ResponseTypeImage ResponseType = "image"
	// ResponseTypeDocument is a document attachment with optional caption.
	ResponseTypeDocument ResponseType = "document"
	// ResponseTypeButtons is a message with selectable buttons.
	ResponseTypeButtons ResponseType = "buttons"
	// ResponseTypeList is a structured list-message for providers with interactive pickers.
	ResponseTypeList ResponseType = "list"
	// ResponseTypeDelay instructs the transport to pause before the next message.
	ResponseTypeDelay ResponseType = "delay"
)

// Button represents one selectable option attached to a buttons-type response.
type Button struct {
	ID    string `json:"id" yaml:"id,omitempty"`
	Text  string `json:"text" yaml:"text"`
	Value string `json:"value" yaml:"value,omitempty"`
}

// ListRow is one selectable row of a list-type response.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups rows of a list-type response under an optional header.
type ListSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []ListRow `json:"rows"`
}

// Response is one outbound message produced by the engine. Delivery is the
// caller's responsibility; the engine never talks to the transport directly.
type Response struct {
	Type     ResponseType `json:"type"`
	Content  string       `json:"content,omitempty"`
	MediaURL string       `json:"media_url,omitempty"`
	Buttons  []Button     `json:"buttons,omitempty"`
	DelayMs  int          `json:"delay_ms,omitempty"`
	List     *ListMessage `json:"list,omitempty"`
}

// ListMessage is the structured form of a list-type response.
type ListMessage struct {
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	ButtonText  string        `json:"button_text,omitempty"`
	Footer      string        `json:"footer,omitempty"`
	Sections    []ListSection `json:"sections"`
}

// HandleResult is the structured outcome of one engine invocation.
type HandleResult struct {
	Success       bool       `json:"success"`
	SessionID     string     `json:"session_id,omitempty"`
	Responses     []Response `json:"responses"`
	SessionStatus string     `json:"session_status,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// Structured error codes reported in HandleResult.Error for configuration
// failures. These are results, not Go errors: the engine never propagates them.
const (
	ErrCodeBotDisabled   = "bot_disabled"
	ErrCodeNoActiveFlows = "no_active_flows"
	ErrCodeNoNodes       = "no_nodes"
	ErrCodeInternal      = "internal_error"
)

// Direction marks a message log entry as inbound or outbound.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// MessageLogEntry is an append-only record of one message tied to a session.
// Used for observability only; the engine never reads it back.
type MessageLogEntry struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	SessionID string    `json:"session_id"`
	NodeID    string    `json:"node_id,omitempty"`
	Direction Direction `json:"direction"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantSettings holds the per-tenant bot configuration the engine consults.
type TenantSettings struct {
	TenantID           string    `json:"tenant_id"`
	BotEnabled         bool      `json:"bot_enabled"`
	DefaultCountryCode string    `json:"default_country_code,omitempty"`
	MenuMode           bool      `json:"menu_mode"`
	SessionTTLMinutes  int       `json:"session_ttl_minutes,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Validation error variables shared across modules.
var (
	ErrEmptyTenant      = errors.New("tenant id cannot be empty")
	ErrEmptyPhone       = errors.New("contact phone cannot be empty")
	ErrEmptyFlowName    = errors.New("flow name cannot be empty")
	ErrInvalidNodeType  = errors.New("invalid node type")
	ErrInvalidTrigger   = errors.New("invalid trigger mode")
	ErrInvalidCondition = errors.New("invalid edge condition type")
	ErrUnknownFlow      = errors.New("flow not found")
	ErrUnknownNode      = errors.New("node not found")
	ErrUnknownMenuItem  = errors.New("menu item not found")
	ErrNoRootMenu       = errors.New("tenant has no root menu item")
	ErrEdgeAcrossFlows  = errors.New("edge source and target must belong to the same flow")
	ErrDuplicateActive  = errors.New("active session already exists for contact")
)
