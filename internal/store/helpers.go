package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gestorzap/botengine/internal/models"
)

// joinSet joins SET clause fragments for dynamic UPDATE statements.
func joinSet(parts []string) string {
	return strings.Join(parts, ", ")
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// marshalKeywords encodes a keyword list as JSON for storage. An empty list
// is stored as NULL.
func marshalKeywords(keywords []string) (interface{}, error) {
	if len(keywords) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(keywords)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trigger keywords: %w", err)
	}
	return string(data), nil
}

func unmarshalKeywords(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var keywords []string
	if err := json.Unmarshal([]byte(raw), &keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger keywords: %w", err)
	}
	return keywords, nil
}

// marshalNodeConfig encodes a node's type-specific payload as JSON.
func marshalNodeConfig(cfg models.NodeConfig) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal node config: %w", err)
	}
	return string(data), nil
}

// marshalVariables encodes the session variable bag as JSON.
func marshalVariables(vars map[string]string) (string, error) {
	if vars == nil {
		vars = map[string]string{}
	}
	data, err := json.Marshal(vars)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session variables: %w", err)
	}
	return string(data), nil
}

// scanFlow scans a Flow row. Column order must match flowColumns.
func scanFlow(row rowScanner) (models.Flow, error) {
	var f models.Flow
	var keywords sql.NullString
	err := row.Scan(
		&f.ID, &f.TenantID, &f.Name, &f.TriggerMode, &keywords,
		&f.IsActive, &f.IsDefault, &f.IsTemplate, &f.Priority, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return f, err
	}
	f.TriggerKeywords, err = unmarshalKeywords(keywords.String)
	return f, err
}

// scanNode scans a Node row. Column order must match nodeColumns.
func scanNode(row rowScanner) (models.Node, error) {
	var n models.Node
	var label, config sql.NullString
	err := row.Scan(
		&n.ID, &n.FlowID, &n.TenantID, &n.Type, &label, &config,
		&n.Position.X, &n.Position.Y, &n.IsEntryPoint, &n.CreatedAt,
	)
	if err != nil {
		return n, err
	}
	n.Label = label.String
	if config.String != "" {
		if err := json.Unmarshal([]byte(config.String), &n.Config); err != nil {
			return n, fmt.Errorf("failed to unmarshal node config: %w", err)
		}
	}
	return n, nil
}

// scanEdge scans an Edge row. Column order must match edgeColumns.
func scanEdge(row rowScanner) (models.Edge, error) {
	var e models.Edge
	var conditionValue, label sql.NullString
	err := row.Scan(
		&e.ID, &e.FlowID, &e.TenantID, &e.SourceNodeID, &e.TargetNodeID,
		&e.ConditionType, &conditionValue, &label, &e.Priority, &e.CreatedAt,
	)
	if err != nil {
		return e, err
	}
	e.ConditionValue = conditionValue.String
	e.Label = label.String
	return e, nil
}

// scanSession scans a Session row. Column order must match sessionColumns.
func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	var contactName, currentNodeID, variables, inputVariableName sql.NullString
	var endedAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.TenantID, &s.FlowID, &s.ContactPhone, &contactName,
		&currentNodeID, &variables, &s.Status, &s.AwaitingInput, &inputVariableName,
		&s.LastActivityAt, &s.CreatedAt, &endedAt,
	)
	if err != nil {
		return s, err
	}
	s.ContactName = contactName.String
	s.CurrentNodeID = currentNodeID.String
	s.InputVariableName = inputVariableName.String
	if endedAt.Valid {
		s.EndedAt = &endedAt.Time
	}
	s.Variables = map[string]string{}
	if variables.String != "" {
		if err := json.Unmarshal([]byte(variables.String), &s.Variables); err != nil {
			return s, fmt.Errorf("failed to unmarshal session variables: %w", err)
		}
	}
	return s, nil
}

// scanMenuItem scans a MenuItem row. Column order must match menuItemColumns.
func scanMenuItem(row rowScanner) (models.MenuItem, error) {
	var m models.MenuItem
	var parentID, section, description sql.NullString
	var targetMenuKey, targetFlowID, targetCommand, targetURL, targetMessage sql.NullString
	err := row.Scan(
		&m.ID, &m.TenantID, &parentID, &m.Key, &m.Title, &section, &description,
		&m.Type, &m.IsRoot, &m.DisplayOrder,
		&targetMenuKey, &targetFlowID, &targetCommand, &targetURL, &targetMessage,
		&m.CreatedAt,
	)
	if err != nil {
		return m, err
	}
	m.ParentID = parentID.String
	m.Section = section.String
	m.Description = description.String
	m.TargetMenuKey = targetMenuKey.String
	m.TargetFlowID = targetFlowID.String
	m.TargetCommand = targetCommand.String
	m.TargetURL = targetURL.String
	m.TargetMessage = targetMessage.String
	return m, nil
}

// scanLogEntry scans a MessageLogEntry row. Column order must match logColumns.
func scanLogEntry(row rowScanner) (models.MessageLogEntry, error) {
	var e models.MessageLogEntry
	var nodeID, content sql.NullString
	err := row.Scan(&e.ID, &e.TenantID, &e.SessionID, &nodeID, &e.Direction, &e.Type, &content, &e.CreatedAt)
	if err != nil {
		return e, err
	}
	e.NodeID = nodeID.String
	e.Content = content.String
	return e, nil
}

// Shared column lists keep SELECT statements and scan helpers in sync.
const (
	flowColumns     = `id, tenant_id, name, trigger_mode, trigger_keywords, is_active, is_default, is_template, priority, created_at, updated_at`
	nodeColumns     = `id, flow_id, tenant_id, type, label, config, position_x, position_y, is_entry_point, created_at`
	edgeColumns     = `id, flow_id, tenant_id, source_node_id, target_node_id, condition_type, condition_value, label, priority, created_at`
	sessionColumns  = `id, tenant_id, flow_id, contact_phone, contact_name, current_node_id, variables, status, awaiting_input, input_variable_name, last_activity_at, created_at, ended_at`
	menuItemColumns = `id, tenant_id, parent_id, key, title, section, description, type, is_root, display_order, target_menu_key, target_flow_id, target_command, target_url, target_message, created_at`
	logColumns      = `id, tenant_id, session_id, node_id, direction, type, content, created_at`
)
