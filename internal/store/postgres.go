// Package store provides storage backends for the bot engine.
//
// This file implements the PostgreSQL-backed store used for multi-node
// deployments.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/gestorzap/botengine/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants.
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore implements Store on top of PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// GetTenantSettings returns the settings for a tenant, or nil if none are stored.
func (s *PostgresStore) GetTenantSettings(tenantID string) (*models.TenantSettings, error) {
	row := s.db.QueryRow(`SELECT tenant_id, bot_enabled, default_country_code, menu_mode, session_ttl_minutes, updated_at FROM tenant_settings WHERE tenant_id = $1`, tenantID)
	var ts models.TenantSettings
	var countryCode sql.NullString
	err := row.Scan(&ts.TenantID, &ts.BotEnabled, &countryCode, &ts.MenuMode, &ts.SessionTTLMinutes, &ts.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetTenantSettings failed", "error", err, "tenant", tenantID)
		return nil, fmt.Errorf("failed to query tenant settings: %w", err)
	}
	ts.DefaultCountryCode = countryCode.String
	return &ts, nil
}

// SaveTenantSettings inserts or replaces the settings for a tenant.
func (s *PostgresStore) SaveTenantSettings(ts models.TenantSettings) error {
	_, err := s.db.Exec(`INSERT INTO tenant_settings (tenant_id, bot_enabled, default_country_code, menu_mode, session_ttl_minutes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tenant_id) DO UPDATE SET bot_enabled = EXCLUDED.bot_enabled, default_country_code = EXCLUDED.default_country_code, menu_mode = EXCLUDED.menu_mode, session_ttl_minutes = EXCLUDED.session_ttl_minutes, updated_at = EXCLUDED.updated_at`,
		ts.TenantID, ts.BotEnabled, nilIfEmpty(ts.DefaultCountryCode), ts.MenuMode, ts.SessionTTLMinutes, time.Now())
	if err != nil {
		slog.Error("PostgresStore SaveTenantSettings failed", "error", err, "tenant", ts.TenantID)
		return fmt.Errorf("failed to save tenant settings: %w", err)
	}
	return nil
}

// CreateFlow inserts a flow definition, clearing any previous default flag.
func (s *PostgresStore) CreateFlow(f models.Flow) error {
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
	_, err = s.db.Exec(`INSERT INTO bot_engine_flows (`+flowColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		f.ID, f.TenantID, f.Name, f.TriggerMode, keywords, f.IsActive, f.IsDefault, f.IsTemplate, f.Priority, now, now)
	if err != nil {
		slog.Error("PostgresStore CreateFlow failed", "error", err, "flow", f.ID)
		return fmt.Errorf("failed to insert flow %s: %w", f.ID, err)
	}
	slog.Debug("PostgresStore CreateFlow succeeded", "flow", f.ID, "tenant", f.TenantID)
	return nil
}

// UpdateFlow rewrites a flow definition.
func (s *PostgresStore) UpdateFlow(f models.Flow) error {
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
	res, err := s.db.Exec(`UPDATE bot_engine_flows SET name = $1, trigger_mode = $2, trigger_keywords = $3, is_active = $4, is_default = $5, is_template = $6, priority = $7, updated_at = $8 WHERE id = $9`,
		f.Name, f.TriggerMode, keywords, f.IsActive, f.IsDefault, f.IsTemplate, f.Priority, time.Now(), f.ID)
	if err != nil {
		slog.Error("PostgresStore UpdateFlow failed", "error", err, "flow", f.ID)
		return fmt.Errorf("failed to update flow %s: %w", f.ID, err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return models.ErrUnknownFlow
	}
	return nil
}

func (s *PostgresStore) clearDefaultFlow(tenantID string) error {
	if _, err := s.db.Exec(`UPDATE bot_engine_flows SET is_default = FALSE WHERE tenant_id = $1`, tenantID); err != nil {
		return fmt.Errorf("failed to clear default flow for tenant %s: %w", tenantID, err)
	}
	return nil
}

// DeleteFlow removes a flow and cascades to its nodes, edges and sessions.
func (s *PostgresStore) DeleteFlow(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete flow transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM bot_engine_edges WHERE flow_id = $1`,
		`DELETE FROM bot_engine_nodes WHERE flow_id = $1`,
		`DELETE FROM bot_engine_sessions WHERE flow_id = $1`,
		`DELETE FROM bot_engine_flows WHERE id = $1`,
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			slog.Error("PostgresStore DeleteFlow failed", "error", err, "flow", id)
			return fmt.Errorf("failed to delete flow %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete flow transaction: %w", err)
	}
	slog.Info("PostgresStore DeleteFlow succeeded", "flow", id)
	return nil
}

// GetFlow returns a flow by id, or nil if it does not exist.
func (s *PostgresStore) GetFlow(id string) (*models.Flow, error) {
	row := s.db.QueryRow(`SELECT `+flowColumns+` FROM bot_engine_flows WHERE id = $1`, id)
	f, err := scanFlow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetFlow failed", "error", err, "flow", id)
		return nil, fmt.Errorf("failed to query flow %s: %w", id, err)
	}
	return &f, nil
}

// GetFlowsForTenant returns a tenant's flows ordered by descending priority.
func (s *PostgresStore) GetFlowsForTenant(tenantID string, activeOnly bool) ([]models.Flow, error) {
	query := `SELECT ` + flowColumns + ` FROM bot_engine_flows WHERE tenant_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY priority DESC, created_at ASC`
	rows, err := s.db.Query(query, tenantID)
	if err != nil {
		slog.Error("PostgresStore GetFlowsForTenant query failed", "error", err, "tenant", tenantID)
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
func (s *PostgresStore) CreateNode(n models.Node) error {
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
	_, err = s.db.Exec(`INSERT INTO bot_engine_nodes (`+nodeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.ID, n.FlowID, n.TenantID, n.Type, nilIfEmpty(n.Label), config, n.Position.X, n.Position.Y, n.IsEntryPoint, createdAt)
	if err != nil {
		slog.Error("PostgresStore CreateNode failed", "error", err, "node", n.ID)
		return fmt.Errorf("failed to insert node %s: %w", n.ID, err)
	}
	return nil
}

// UpdateNode rewrites a node.
func (s *PostgresStore) UpdateNode(n models.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	config, err := marshalNodeConfig(n.Config)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE bot_engine_nodes SET type = $1, label = $2, config = $3, position_x = $4, position_y = $5, is_entry_point = $6 WHERE id = $7`,
		n.Type, nilIfEmpty(n.Label), config, n.Position.X, n.Position.Y, n.IsEntryPoint, n.ID)
	if err != nil {
		slog.Error("PostgresStore UpdateNode failed", "error", err, "node", n.ID)
		return fmt.Errorf("failed to update node %s: %w", n.ID, err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return models.ErrUnknownNode
	}
	return nil
}

// DeleteNode removes a node and cleans up edges referencing it.
func (s *PostgresStore) DeleteNode(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete node transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM bot_engine_edges WHERE source_node_id = $1 OR target_node_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete edges for node %s: %w", id, err)
	}
	if _, err := tx.Exec(`DELETE FROM bot_engine_nodes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete node %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete node transaction: %w", err)
	}
	return nil
}

// GetNodes returns the nodes of a flow in creation order.
func (s *PostgresStore) GetNodes(flowID string) ([]models.Node, error) {
	rows, err := s.db.Query(`SELECT `+nodeColumns+` FROM bot_engine_nodes WHERE flow_id = $1 ORDER BY created_at ASC, id ASC`, flowID)
	if err != nil {
		slog.Error("PostgresStore GetNodes query failed", "error", err, "flow", flowID)
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
func (s *PostgresStore) CreateEdge(e models.Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO bot_engine_edges (`+edgeColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.FlowID, e.TenantID, e.SourceNodeID, e.TargetNodeID, e.ConditionType, nilIfEmpty(e.ConditionValue), nilIfEmpty(e.Label), e.Priority, createdAt)
	if err != nil {
		slog.Error("PostgresStore CreateEdge failed", "error", err, "edge", e.ID)
		return fmt.Errorf("failed to insert edge %s: %w", e.ID, err)
	}
	return nil
}

// DeleteEdge removes an edge.
func (s *PostgresStore) DeleteEdge(id string) error {
	if _, err := s.db.Exec(`DELETE FROM bot_engine_edges WHERE id = $1`, id); err != nil {
		slog.Error("PostgresStore DeleteEdge failed", "error", err, "edge", id)
		return fmt.Errorf("failed to delete edge %s: %w", id, err)
	}
	return nil
}

// GetEdges returns the edges of a flow ordered by descending priority.
func (s *PostgresStore) GetEdges(flowID string) ([]models.Edge, error) {
	rows, err := s.db.Query(`SELECT `+edgeColumns+` FROM bot_engine_edges WHERE flow_id = $1 ORDER BY priority DESC, created_at ASC`, flowID)
	if err != nil {
		slog.Error("PostgresStore GetEdges query failed", "error", err, "flow", flowID)
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

// GetActiveSession returns the single active session for (tenant, phone).
func (s *PostgresStore) GetActiveSession(tenantID, phone string) (*models.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM bot_engine_sessions WHERE tenant_id = $1 AND contact_phone = $2 AND status = 'active'`, tenantID, phone)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetActiveSession failed", "error", err, "tenant", tenantID, "phone", phone)
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}
	return &sess, nil
}

// CreateSession inserts a new active session, returning the pre-existing one
// when the partial unique index reports a concurrent create.
func (s *PostgresStore) CreateSession(sess models.Session) (*models.Session, error) {
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
	_, err = s.db.Exec(`INSERT INTO bot_engine_sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		sess.ID, sess.TenantID, sess.FlowID, sess.ContactPhone, nilIfEmpty(sess.ContactName),
		nilIfEmpty(sess.CurrentNodeID), variables, sess.Status, sess.AwaitingInput, nilIfEmpty(sess.InputVariableName),
		sess.LastActivityAt, sess.CreatedAt, sess.EndedAt)
	if err != nil {
		existing, getErr := s.GetActiveSession(sess.TenantID, sess.ContactPhone)
		if getErr == nil && existing != nil {
			slog.Debug("PostgresStore CreateSession raced, reusing existing", "tenant", sess.TenantID, "phone", sess.ContactPhone, "session", existing.ID)
			return existing, nil
		}
		slog.Error("PostgresStore CreateSession failed", "error", err, "tenant", sess.TenantID, "phone", sess.ContactPhone)
		return nil, fmt.Errorf("failed to insert session for %s: %w", sess.ContactPhone, err)
	}
	slog.Debug("PostgresStore CreateSession succeeded", "session", sess.ID, "tenant", sess.TenantID)
	return &sess, nil
}

// UpdateSession applies a partial update to a session.
func (s *PostgresStore) UpdateSession(id string, patch models.SessionPatch) error {
	set := []string{"last_activity_at = $1"}
	args := []interface{}{time.Now()}

	appendSet := func(column string, value interface{}) {
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)+1))
		args = append(args, value)
	}

	if patch.CurrentNodeID != nil {
		appendSet("current_node_id", nilIfEmpty(*patch.CurrentNodeID))
	}
	if patch.Variables != nil {
		variables, err := marshalVariables(patch.Variables)
		if err != nil {
			return err
		}
		appendSet("variables", variables)
	}
	if patch.Status != nil {
		appendSet("status", *patch.Status)
	}
	if patch.AwaitingInput != nil {
		appendSet("awaiting_input", *patch.AwaitingInput)
	}
	if patch.InputVariableName != nil {
		appendSet("input_variable_name", nilIfEmpty(*patch.InputVariableName))
	}
	if patch.EndedAt != nil {
		appendSet("ended_at", *patch.EndedAt)
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE bot_engine_sessions SET %s WHERE id = $%d", joinSet(set), len(args))
	res, err := s.db.Exec(query, args...)
	if err != nil {
		slog.Error("PostgresStore UpdateSession failed", "error", err, "session", id)
		return fmt.Errorf("failed to update session %s: %w", id, err)
	}
	if count, _ := res.RowsAffected(); count == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// DeleteSessionsForTenant removes every session of a tenant.
func (s *PostgresStore) DeleteSessionsForTenant(tenantID string) error {
	res, err := s.db.Exec(`DELETE FROM bot_engine_sessions WHERE tenant_id = $1`, tenantID)
	if err != nil {
		slog.Error("PostgresStore DeleteSessionsForTenant failed", "error", err, "tenant", tenantID)
		return fmt.Errorf("failed to delete sessions for tenant %s: %w", tenantID, err)
	}
	count, _ := res.RowsAffected()
	slog.Info("PostgresStore DeleteSessionsForTenant succeeded", "tenant", tenantID, "count", count)
	return nil
}

// ExpireStaleSessions completes active sessions idle since before cutoff.
func (s *PostgresStore) ExpireStaleSessions(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`UPDATE bot_engine_sessions SET status = 'completed', ended_at = $1 WHERE status = 'active' AND last_activity_at < $2`, time.Now(), cutoff)
	if err != nil {
		slog.Error("PostgresStore ExpireStaleSessions failed", "error", err)
		return 0, fmt.Errorf("failed to expire stale sessions: %w", err)
	}
	count, _ := res.RowsAffected()
	return count, nil
}

// AppendMessageLog appends one inbound or outbound message record.
func (s *PostgresStore) AppendMessageLog(entry models.MessageLogEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO bot_message_log (`+logColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.TenantID, entry.SessionID, nilIfEmpty(entry.NodeID), entry.Direction, entry.Type, nilIfEmpty(entry.Content), createdAt)
	if err != nil {
		slog.Error("PostgresStore AppendMessageLog failed", "error", err, "session", entry.SessionID)
		return fmt.Errorf("failed to insert message log entry: %w", err)
	}
	return nil
}

// GetMessageLog returns a session's log entries in chronological order.
func (s *PostgresStore) GetMessageLog(sessionID string) ([]models.MessageLogEntry, error) {
	rows, err := s.db.Query(`SELECT `+logColumns+` FROM bot_message_log WHERE session_id = $1 ORDER BY created_at ASC`, sessionID)
	if err != nil {
		slog.Error("PostgresStore GetMessageLog query failed", "error", err, "session", sessionID)
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
func (s *PostgresStore) GetMenuItems(tenantID string) ([]models.MenuItem, error) {
	rows, err := s.db.Query(`SELECT `+menuItemColumns+` FROM bot_menu_items WHERE tenant_id = $1 ORDER BY display_order ASC, created_at ASC`, tenantID)
	if err != nil {
		slog.Error("PostgresStore GetMenuItems query failed", "error", err, "tenant", tenantID)
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
func (s *PostgresStore) SaveMenuItem(item models.MenuItem) error {
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(`INSERT INTO bot_menu_items (`+menuItemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET parent_id = EXCLUDED.parent_id, key = EXCLUDED.key, title = EXCLUDED.title, section = EXCLUDED.section, description = EXCLUDED.description, type = EXCLUDED.type, is_root = EXCLUDED.is_root, display_order = EXCLUDED.display_order, target_menu_key = EXCLUDED.target_menu_key, target_flow_id = EXCLUDED.target_flow_id, target_command = EXCLUDED.target_command, target_url = EXCLUDED.target_url, target_message = EXCLUDED.target_message`,
		item.ID, item.TenantID, nilIfEmpty(item.ParentID), item.Key, item.Title, nilIfEmpty(item.Section), nilIfEmpty(item.Description),
		item.Type, item.IsRoot, item.DisplayOrder,
		nilIfEmpty(item.TargetMenuKey), nilIfEmpty(item.TargetFlowID), nilIfEmpty(item.TargetCommand), nilIfEmpty(item.TargetURL), nilIfEmpty(item.TargetMessage),
		createdAt)
	if err != nil {
		slog.Error("PostgresStore SaveMenuItem failed", "error", err, "item", item.ID)
		return fmt.Errorf("failed to save menu item %s: %w", item.ID, err)
	}
	return nil
}

// DeleteMenuItem removes one menu item.
func (s *PostgresStore) DeleteMenuItem(id string) error {
	if _, err := s.db.Exec(`DELETE FROM bot_menu_items WHERE id = $1`, id); err != nil {
		slog.Error("PostgresStore DeleteMenuItem failed", "error", err, "item", id)
		return fmt.Errorf("failed to delete menu item %s: %w", id, err)
	}
	return nil
}
