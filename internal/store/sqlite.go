// Package store provides storage backends for the bot engine.
//
// This file implements the SQLite-backed store, the default for single-node
// deployments.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	"github.com/gestorzap/botengine/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore implements Store on top of a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetTenantSettings returns the settings for a tenant, or nil if none are stored.
func (s *SQLiteStore) GetTenantSettings(tenantID string) (*models.TenantSettings, error) {
	row := s.db.QueryRow(`SELECT tenant_id, bot_enabled, default_country_code, menu_mode, session_ttl_minutes, updated_at FROM tenant_settings WHERE tenant_id = ?`, tenantID)
	var ts models.TenantSettings
	var countryCode sql.NullString
	err := row.Scan(&ts.TenantID, &ts.BotEnabled, &countryCode, &ts.MenuMode, &ts.SessionTTLMinutes, &ts.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetTenantSettings failed", "error", err, "tenant", tenantID)
		return nil, fmt.Errorf("failed to query tenant settings: %w", err)
	}
	ts.DefaultCountryCode = countryCode.String
	return &ts, nil
}

// SaveTenantSettings inserts or replaces the settings for a tenant.
func (s *SQLiteStore) SaveTenantSettings(ts models.TenantSettings) error {
	_, err := s.db.Exec(`INSERT INTO tenant_settings (tenant_id, bot_enabled, default_country_code, menu_mode, session_ttl_minutes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET bot_enabled = excluded.bot_enabled, default_country_code = excluded.default_country_code, menu_mode = excluded.menu_mode, session_ttl_minutes = excluded.session_ttl_minutes, updated_at = excluded.updated_at`,
		ts.TenantID, ts.BotEnabled, nilIfEmpty(ts.DefaultCountryCode), ts.MenuMode, ts.SessionTTLMinutes, time.Now())
	if err != nil {
		slog.Error("SQLiteStore SaveTenantSettings failed", "error", err, "tenant", ts.TenantID)
		return fmt.Errorf("failed to save tenant settings: %w", err)
	}
	return nil
}

// CreateFlow inserts a flow definition. If the flow is marked default, any
// previous default flow of the tenant loses the flag first.
func (s *SQLiteStore) CreateFlow(f models.Flow) error {
	if err := f.Validate(); err != nil {
		return err
	}
	keywords, err := marshalKeywords(f.TriggerKeywords)
	if err != nil {
		return err
	}
	if f.IsDefault {
		if err := s.clearDefaultFlow(f.TenantID); err != nil {
			return err
		}
	}
	now := time.Now()
	_, err = s.db.Exec(`INSERT INTO bot_engine_flows (`+flowColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.TenantID, f.Name, f.TriggerMode, keywords, f.IsActive, f.IsDefault, f.IsTemplate, f.Priority, now, now)
	if err != nil {
		slog.Error("SQLiteStore CreateFlow failed", "error", err, "flow", f.ID)
		return fmt.Errorf("failed to insert flow %s: %w", f.ID, err)
	}
	slog.Debug("SQLiteStore CreateFlow succeeded", "flow", f.ID, "tenant", f.TenantID)
	return nil
}

// UpdateFlow rewrites a flow definition.
func (s *SQLiteStore) UpdateFlow(f models.Flow) error {
	if err := f.Validate(); err != nil {
		return err
	}
	keywords, err := marshalKeywords(f.TriggerKeywords)
	if err != nil {
		return err
	}
	if f.IsDefault {
		if err := s.clearDefaultFlow(f.TenantID); err != nil {
			return err
		}
	}
	res, err := s.db.Exec(`UPDATE bot_engine_flows SET name = ?, trigger_mode = ?, trigger_keywords = ?, is_active = ?, is_default = ?, is_template = ?, priority = ?, updated_at = ? WHERE id = ?`,
		f.Name, f.TriggerMode, keywords, f.IsActive, f.IsDefault, f.IsTemplate, f.Priority, time.Now(), f.ID)
	if err != nil {
		slog.Error("SQLiteStore UpdateFlow failed", "error", err, "flow", f.ID)
		return fmt.Errorf("failed to update flow %s: %w", f.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrUnknownFlow
	}
	return nil
}

// clearDefaultFlow drops the default flag from every flow of a tenant. At most
// one default flow per tenant is application-enforced, not a DB constraint.
func (s *SQLiteStore) clearDefaultFlow(tenantID string) error {
	if _, err := s.db.Exec(`UPDATE bot_engine_flows SET is_default = 0 WHERE tenant_id = ?`, tenantID); err != nil {
		return fmt.Errorf("failed to clear default flow for tenant %s: %w", tenantID, err)
	}
	return nil
}

// DeleteFlow removes a flow and cascades to its nodes, edges and sessions.
func (s *SQLiteStore) DeleteFlow(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete flow transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM bot_engine_edges WHERE flow_id = ?`,
		`DELETE FROM bot_engine_nodes WHERE flow_id = ?`,
		`DELETE FROM bot_engine_sessions WHERE flow_id = ?`,
		`DELETE FROM bot_engine_flows WHERE id = ?`,
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			slog.Error("SQLiteStore DeleteFlow failed", "error", err, "flow", id)
			return fmt.Errorf("failed to delete flow %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete flow transaction: %w", err)
	}
	slog.Info("SQLiteStore DeleteFlow succeeded", "flow", id)
	return nil
}

// GetFlow returns a flow by id, or nil if it does not exist.
func (s *SQLiteStore) GetFlow(id string) (*models.Flow, error) {
	row := s.db.QueryRow(`SELECT `+flowColumns+` FROM bot_engine_flows WHERE id = ?`, id)
	f, err := scanFlow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetFlow failed", "error", err, "flow", id)
		return nil, fmt.Errorf("failed to query flow %s: %w", id, err)
	}
	return &f, nil
}

// GetFlowsForTenant returns a tenant's flows ordered by descending priority.
func (s *SQLiteStore) GetFlowsForTenant(tenantID string, activeOnly bool) ([]models.Flow, error) {
	query := `SELECT ` + flowColumns + ` FROM bot_engine_flows WHERE tenant_id = ?`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY priority DESC, created_at ASC`
	rows, err := s.db.Query(query, tenantID)
	if err != nil {
		slog.Error("SQLiteStore GetFlowsForTenant query failed", "error", err, "tenant", tenantID)
		return nil, fmt.Errorf("failed to query flows: %w", err)
	}
	defer rows.Close()

	var flows []models.Flow
	for rows.Next() {
		f, err := scanFlow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flow row: %w", err)
		}
		flows = append(flows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flow rows: %w", err)
	}
	return flows, nil
}

// CreateNode inserts a node.
func (s *SQLiteStore) CreateNode(n models.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	config, err := marshalNodeConfig(n.Config)
	if err != nil {
		return err
	}
	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err = s.db.Exec(`INSERT INTO bot_engine_nodes (`+nodeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.FlowID, n.TenantID, n.Type, nilIfEmpty(n.Label), config, n.Position.X, n.Position.Y, n.IsEntryPoint, createdAt)
	if err != nil {
		slog.Error("SQLiteStore CreateNode failed", "error", err, "node", n.ID)
		return fmt.Errorf("failed to insert node %s: %w", n.ID, err)
	}
	return nil
}

// UpdateNode rewrites a node.
func (s *SQLiteStore) UpdateNode(n models.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	config, err := marshalNodeConfig(n.Config)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE bot_engine_nodes SET type = ?, label = ?, config = ?, position_x = ?, position_y = ?, is_entry_point = ? WHERE id = ?`,
		n.Type, nilIfEmpty(n.Label), config, n.Position.X, n.Position.Y, n.IsEntryPoint, n.ID)
	if err != nil {
		slog.Error("SQLiteStore UpdateNode failed", "error", err, "node", n.ID)
		return fmt.Errorf("failed to update node %s: %w", n.ID, err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return models.ErrUnknownNode
	}
	return nil
}

// DeleteNode removes a node and cleans up edges referencing it. Deleting a
// node does not otherwise touch the rest of the graph.
func (s *SQLiteStore) DeleteNode(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete node transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM bot_engine_edges WHERE source_node_id = ? OR target_node_id = ?`, id, id); err != nil {
		return fmt.Errorf("failed to delete edges for node %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM bot_engine_nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete node %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete node transaction: %w", err)
	}
	return nil
}

// GetNodes returns the nodes of a flow in creation order.
func (s *SQLiteStore) GetNodes(flowID string) ([]models.Node, error) {
	rows, err := s.db.Query(`SELECT `+nodeColumns+` FROM bot_engine_nodes WHERE flow_id = ? ORDER BY created_at ASC, id ASC`, flowID)
	if err != nil {
		slog.Error("SQLiteStore GetNodes query failed", "error", err, "flow", flowID)
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []models.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node row: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate node rows: %w", err)
	}
	return nodes, nil
}

// CreateEdge inserts an edge.
func (s *SQLiteStore) CreateEdge(e models.Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO bot_engine_edges (`+edgeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FlowID, e.TenantID, e.SourceNodeID, e.TargetNodeID, e.ConditionType, nilIfEmpty(e.ConditionValue), nilIfEmpty(e.Label), e.Priority, createdAt)
	if err != nil {
		slog.Error("SQLiteStore CreateEdge failed", "error", err, "edge", e.ID)
		return fmt.Errorf("failed to insert edge %s: %w", e.ID, err)
	}
	return nil
}

// DeleteEdge removes an edge.
func (s *SQLiteStore) DeleteEdge(id string) error {
	if _, err := s.db.Exec(`DELETE FROM bot_engine_edges WHERE id = ?`, id); err != nil {
		slog.Error("SQLiteStore DeleteEdge failed", "error", err, "edge", id)
		return fmt.Errorf("failed to delete edge %s: %w", id, err)
	}
	return nil
}

// GetEdges returns the edges of a flow ordered by descending priority.
func (s *SQLiteStore) GetEdges(flowID string) ([]models.Edge, error) {
	rows, err := s.db.Query(`SELECT `+edgeColumns+` FROM bot_engine_edges WHERE flow_id = ? ORDER BY priority DESC, created_at ASC`, flowID)
	if err != nil {
		slog.Error("SQLiteStore GetEdges query failed", "error", err, "flow", flowID)
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []models.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge row: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate edge rows: %w", err)
	}
	return edges, nil
}

// GetActiveSession returns the single active session for (tenant, phone),
// or nil if the contact has no active conversation.
func (s *SQLiteStore) GetActiveSession(tenantID, phone string) (*models.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM bot_engine_sessions WHERE tenant_id = ? AND contact_phone = ? AND status = 'active'`, tenantID, phone)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetActiveSession failed", "error", err, "tenant", tenantID, "phone", phone)
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}
	return &sess, nil
}

// CreateSession inserts a new active session. The unique partial index on
// (tenant_id, contact_phone) makes concurrent creates collide; on conflict
// the already-existing active session is returned.
func (s *SQLiteStore) CreateSession(sess models.Session) (*models.Session, error) {
	variables, err := marshalVariables(sess.Variables)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if sess.LastActivityAt.IsZero() {
		sess.LastActivityAt = now
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	_, err = s.db.Exec(`INSERT INTO bot_engine_sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.TenantID, sess.FlowID, sess.ContactPhone, nilIfEmpty(sess.ContactName),
		nilIfEmpty(sess.CurrentNodeID), variables, sess.Status, sess.AwaitingInput, nilIfEmpty(sess.InputVariableName),
		sess.LastActivityAt, sess.CreatedAt, sess.EndedAt)
	if err != nil {
		existing, getErr := s.GetActiveSession(sess.TenantID, sess.ContactPhone)
		if getErr == nil && existing != nil {
			slog.Debug("SQLiteStore CreateSession raced, reusing existing", "tenant", sess.TenantID, "phone", sess.ContactPhone, "session", existing.ID)
			return existing, nil
		}
		slog.Error("SQLiteStore CreateSession failed", "error", err, "tenant", sess.TenantID, "phone", sess.ContactPhone)
		return nil, fmt.Errorf("failed to insert session for %s: %w", sess.ContactPhone, err)
	}
	slog.Debug("SQLiteStore CreateSession succeeded", "session", sess.ID, "tenant", sess.TenantID)
	return &sess, nil
}

// UpdateSession applies a partial update to a session. Nil patch fields are
// left unchanged; last_activity_at is always refreshed.
func (s *SQLiteStore) UpdateSession(id string, patch models.SessionPatch) error {
	set := []string{"last_activity_at = ?"}
	args := []interface{}{time.Now()}

	if patch.CurrentNodeID != nil {
		set = append(set, "current_node_id = ?")
		args = append(args, nilIfEmpty(*patch.CurrentNodeID))
	}
	if patch.Variables != nil {
		variables, err := marshalVariables(patch.Variables)
		if err != nil {
			return err
		}
		set = append(set, "variables = ?")
		args = append(args, variables)
	}
	if patch.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.AwaitingInput != nil {
		set = append(set, "awaiting_input = ?")
		args = append(args, *patch.AwaitingInput)
	}
	if patch.InputVariableName != nil {
		set = append(set, "input_variable_name = ?")
		args = append(args, nilIfEmpty(*patch.InputVariableName))
	}
	if patch.EndedAt != nil {
		set = append(set, "ended_at = ?")
		args = append(args, *patch.EndedAt)
	}
	args = append(args, id)

	query := "UPDATE bot_engine_sessions SET " + joinSet(set) + " WHERE id = ?"
	res, err := s.db.Exec(query, args...)
	if err != nil {
		slog.Error("SQLiteStore UpdateSession failed", "error", err, "session", id)
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// DeleteSessionsForTenant removes every session of a tenant.
func (s *SQLiteStore) DeleteSessionsForTenant(tenantID string) error {
	res, err := s.db.Exec(`DELETE FROM bot_engine_sessions WHERE tenant_id = ?`, tenantID)
	if err != nil {
		slog.Error("SQLiteStore DeleteSessionsForTenant failed", "error", err, "tenant", tenantID)
		return fmt.Errorf("failed to delete sessions for tenant %s: %w", tenantID, err)
	}
	count, _ := res.RowsAffected()
	slog.Info("SQLiteStore DeleteSessionsForTenant succeeded", "tenant", tenantID, "count", count)
	return nil
}

// ExpireStaleSessions completes active sessions idle since before cutoff.
func (s *SQLiteStore) ExpireStaleSessions(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`UPDATE bot_engine_sessions SET status = 'completed', ended_at = ? WHERE status = 'active' AND last_activity_at < ?`, time.Now(), cutoff)
	if err != nil {
		slog.Error("SQLiteStore ExpireStaleSessions failed", "error", err)
		return 0, fmt.Errorf("failed to expire stale sessions: %w", err)
	}
	count, _ := res.RowsAffected()
	return count, nil
}

// AppendMessageLog appends one inbound or outbound message record.
func (s *SQLiteStore) AppendMessageLog(entry models.MessageLogEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO bot_message_log (`+logColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TenantID, entry.SessionID, nilIfEmpty(entry.NodeID), entry.Direction, entry.Type, nilIfEmpty(entry.Content), createdAt)
	if err != nil {
		slog.Error("SQLiteStore AppendMessageLog failed", "error", err, "session", entry.SessionID)
		return fmt.Errorf("failed to insert message log entry: %w", err)
	}
	return nil
}

// GetMessageLog returns a session's log entries in chronological order.
func (s *SQLiteStore) GetMessageLog(sessionID string) ([]models.MessageLogEntry, error) {
	rows, err := s.db.Query(`SELECT `+logColumns+` FROM bot_message_log WHERE session_id = ? ORDER BY created_at ASC`, sessionID)
	if err != nil {
		slog.Error("SQLiteStore GetMessageLog query failed", "error", err, "session", sessionID)
		return nil, fmt.Errorf("failed to query message log: %w", err)
	}
	defer rows.Close()

	var entries []models.MessageLogEntry
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message log row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message log rows: %w", err)
	}
	return entries, nil
}

// GetMenuItems returns a tenant's menu tree as a flat list in display order.
func (s *SQLiteStore) GetMenuItems(tenantID string) ([]models.MenuItem, error) {
	rows, err := s.db.Query(`SELECT `+menuItemColumns+` FROM bot_menu_items WHERE tenant_id = ? ORDER BY display_order ASC, created_at ASC`, tenantID)
	if err != nil {
		slog.Error("SQLiteStore GetMenuItems query failed", "error", err, "tenant", tenantID)
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item row: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu item rows: %w", err)
	}
	return items, nil
}

// SaveMenuItem inserts or replaces one menu item.
func (s *SQLiteStore) SaveMenuItem(item models.MenuItem) error {
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO bot_menu_items (`+menuItemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.TenantID, nilIfEmpty(item.ParentID), item.Key, item.Title, nilIfEmpty(item.Section), nilIfEmpty(item.Description),
		item.Type, item.IsRoot, item.DisplayOrder,
		nilIfEmpty(item.TargetMenuKey), nilIfEmpty(item.TargetFlowID), nilIfEmpty(item.TargetCommand), nilIfEmpty(item.TargetURL), nilIfEmpty(item.TargetMessage),
		createdAt)
	if err != nil {
		slog.Error("SQLiteStore SaveMenuItem failed", "error", err, "item", item.ID)
		return fmt.Errorf("failed to save menu item %s: %w", item.ID, err)
	}
	return nil
}

// DeleteMenuItem removes one menu item.
func (s *SQLiteStore) DeleteMenuItem(id string) error {
	if _, err := s.db.Exec(`DELETE FROM bot_menu_items WHERE id = ?`, id); err != nil {
		slog.Error("SQLiteStore DeleteMenuItem failed", "error", err, "item", id)
		return fmt.Errorf("failed to delete menu item %s: %w", id, err)
	}
	return nil
}
