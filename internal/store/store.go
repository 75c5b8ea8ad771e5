// Package store provides storage backends for the bot engine.
//
// It defines the Store interface consumed by the flow engine and menu
// navigator, with SQLite, PostgreSQL and in-memory implementations.
package store

import (
	"strings"
	"time"

	"github.com/gestorzap/botengine/internal/models"
)

// Store is the persistence collaborator for flows, sessions, menus and the
// message log. All data is scoped by tenant identifier.
type Store interface {
	// Tenant settings
	GetTenantSettings(tenantID string) (*models.TenantSettings, error)
	SaveTenantSettings(s models.TenantSettings) error

	// Flow definitions
	CreateFlow(f models.Flow) error
	UpdateFlow(f models.Flow) error
	// DeleteFlow removes a flow and cascades to its nodes, edges and sessions.
	DeleteFlow(id string) error
	GetFlow(id string) (*models.Flow, error)
	// GetFlowsForTenant returns flows ordered by descending priority.
	GetFlowsForTenant(tenantID string, activeOnly bool) ([]models.Flow, error)

	CreateNode(n models.Node) error
	UpdateNode(n models.Node) error
	// DeleteNode removes a node and cleans up edges referencing it.
	DeleteNode(id string) error
	// GetNodes returns the nodes of a flow in creation order.
	GetNodes(flowID string) ([]models.Node, error)

	CreateEdge(e models.Edge) error
	DeleteEdge(id string) error
	// GetEdges returns the edges of a flow ordered by descending priority.
	GetEdges(flowID string) ([]models.Edge, error)

	// Sessions
	GetActiveSession(tenantID, phone string) (*models.Session, error)
	// CreateSession inserts a new active session. If an active session for the
	// same (tenant, phone) already exists the existing one is returned instead,
	// preserving the at-most-one-active invariant under concurrent creates.
	CreateSession(s models.Session) (*models.Session, error)
	UpdateSession(id string, patch models.SessionPatch) error
	// DeleteSessionsForTenant is the tenant-initiated "reset flows" cleanup.
	DeleteSessionsForTenant(tenantID string) error
	// ExpireStaleSessions marks active sessions idle since before cutoff as
	// completed and returns how many were expired.
	ExpireStaleSessions(cutoff time.Time) (int64, error)

	// Message log
	AppendMessageLog(entry models.MessageLogEntry) error
	GetMessageLog(sessionID string) ([]models.MessageLogEntry, error)

	// Dynamic menu
	GetMenuItems(tenantID string) ([]models.MenuItem, error)
	SaveMenuItem(item models.MenuItem) error
	DeleteMenuItem(id string) error

	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store constructors.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite" based on its shape.
func DetectDSNType(dsn string) string {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "host=") || strings.Contains(lower, "dbname=") {
		return "postgres"
	}
	return "sqlite"
}
