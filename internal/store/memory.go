// Package store provides storage backends for the bot engine.
//
// This file implements an in-memory store used by tests and ephemeral runs.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gestorzap/botengine/internal/models"
)

// InMemoryStore is a map-backed Store. Safe for concurrent use.
type InMemoryStore struct {
	mu       sync.Mutex
	settings map[string]models.TenantSettings
	flows    map[string]models.Flow
	nodes    map[string]models.Node
	edges    map[string]models.Edge
	sessions map[string]models.Session
	menu     map[string]models.MenuItem
	log      []models.MessageLogEntry

	seq int // creation order tiebreaker for equal timestamps
	ord map[string]int
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		settings: make(map[string]models.TenantSettings),
		flows:    make(map[string]models.Flow),
		nodes:    make(map[string]models.Node),
		edges:    make(map[string]models.Edge),
		sessions: make(map[string]models.Session),
		menu:     make(map[string]models.MenuItem),
		ord:      make(map[string]int),
	}
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

func (s *InMemoryStore) touch(id string) {
	s.seq++
	s.ord[id] = s.seq
}

// GetTenantSettings returns the settings for a tenant, or nil if none are stored.
func (s *InMemoryStore) GetTenantSettings(tenantID string) (*models.TenantSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ts, ok := s.settings[tenantID]; ok {
		return &ts, nil
	}
	return nil, nil
}

// SaveTenantSettings inserts or replaces the settings for a tenant.
func (s *InMemoryStore) SaveTenantSettings(ts models.TenantSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts.UpdatedAt = time.Now()
	s.settings[ts.TenantID] = ts
	return nil
}

// CreateFlow inserts a flow, clearing any previous default flag for the tenant.
func (s *InMemoryStore) CreateFlow(f models.Flow) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.IsDefault {
		for id, other := range s.flows {
			if other.TenantID == f.TenantID && other.IsDefault {
				other.IsDefault = false
				s.flows[id] = other
			}
		}
	}
	now := time.Now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	s.flows[f.ID] = f
	s.touch(f.ID)
	return nil
}

// UpdateFlow rewrites a flow.
func (s *InMemoryStore) UpdateFlow(f models.Flow) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.flows[f.ID]
	if !ok {
		return models.ErrUnknownFlow
	}
	if f.IsDefault {
		for id, other := range s.flows {
			if other.TenantID == f.TenantID && other.IsDefault && id != f.ID {
				other.IsDefault = false
				s.flows[id] = other
			}
		}
	}
	f.CreatedAt = existing.CreatedAt
	f.UpdatedAt = time.Now()
	s.flows[f.ID] = f
	return nil
}

// DeleteFlow removes a flow and cascades to its nodes, edges and sessions.
func (s *InMemoryStore) DeleteFlow(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, id)
	for nid, n := range s.nodes {
		if n.FlowID == id {
			delete(s.nodes, nid)
		}
	}
	for eid, e := range s.edges {
		if e.FlowID == id {
			delete(s.edges, eid)
		}
	}
	for sid, sess := range s.sessions {
		if sess.FlowID == id {
			delete(s.sessions, sid)
		}
	}
	return nil
}

// GetFlow returns a flow by id, or nil if it does not exist.
func (s *InMemoryStore) GetFlow(id string) (*models.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.flows[id]; ok {
		return &f, nil
	}
	return nil, nil
}

// GetFlowsForTenant returns a tenant's flows ordered by descending priority.
func (s *InMemoryStore) GetFlowsForTenant(tenantID string, activeOnly bool) ([]models.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var flows []models.Flow
	for _, f := range s.flows {
		if f.TenantID != tenantID {
			continue
		}
		if activeOnly && !f.IsActive {
			continue
		}
		flows = append(flows, f)
	}
	sort.SliceStable(flows, func(i, j int) bool {
		if flows[i].Priority != flows[j].Priority {
			return flows[i].Priority > flows[j].Priority
		}
		return s.ord[flows[i].ID] < s.ord[flows[j].ID]
	})
	return flows, nil
}

// CreateNode inserts a node.
func (s *InMemoryStore) CreateNode(n models.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.nodes[n.ID] = n
	s.touch(n.ID)
	return nil
}

// UpdateNode rewrites a node.
func (s *InMemoryStore) UpdateNode(n models.Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.nodes[n.ID]
	if !ok {
		return models.ErrUnknownNode
	}
	n.CreatedAt = existing.CreatedAt
	s.nodes[n.ID] = n
	return nil
}

// DeleteNode removes a node and cleans up edges referencing it.
func (s *InMemoryStore) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.nodes, id)
	for eid, e := range s.edges {
		if e.SourceNodeID == id || e.TargetNodeID == id {
			delete(s.edges, eid)
		}
	}
	return nil
}

// GetNodes returns the nodes of a flow in creation order.
func (s *InMemoryStore) GetNodes(flowID string) ([]models.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var nodes []models.Node
	for _, n := range s.nodes {
		if n.FlowID == flowID {
			nodes = append(nodes, n)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return s.ord[nodes[i].ID] < s.ord[nodes[j].ID]
	})
	return nodes, nil
}

// CreateEdge inserts an edge.
func (s *InMemoryStore) CreateEdge(e models.Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.edges[e.ID] = e
	s.touch(e.ID)
	return nil
}

// DeleteEdge removes an edge.
func (s *InMemoryStore) DeleteEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.edges, id)
	return nil
}

// GetEdges returns the edges of a flow ordered by descending priority.
func (s *InMemoryStore) GetEdges(flowID string) ([]models.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var edges []models.Edge
	for _, e := range s.edges {
		if e.FlowID == flowID {
			edges = append(edges, e)
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Priority != edges[j].Priority {
			return edges[i].Priority > edges[j].Priority
		}
		return s.ord[edges[i].ID] < s.ord[edges[j].ID]
	})
	return edges, nil
}

// GetActiveSession returns the single active session for (tenant, phone).
func (s *InMemoryStore) GetActiveSession(tenantID, phone string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.TenantID == tenantID && sess.ContactPhone == phone && sess.Status == models.SessionActive {
			out := sess
			return &out, nil
		}
	}
	return nil, nil
}

// CreateSession inserts a new active session, returning the existing active
// session instead if one already exists for the contact.
func (s *InMemoryStore) CreateSession(sess models.Session) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.sessions {
		if other.TenantID == sess.TenantID && other.ContactPhone == sess.ContactPhone && other.Status == models.SessionActive {
			out := other
			return &out, nil
		}
	}
	now := time.Now()
	if sess.LastActivityAt.IsZero() {
		sess.LastActivityAt = now
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.Variables == nil {
		sess.Variables = map[string]string{}
	}
	s.sessions[sess.ID] = sess
	out := sess
	return &out, nil
}

// UpdateSession applies a partial update to a session.
func (s *InMemoryStore) UpdateSession(id string, patch models.SessionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
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
	sess.LastActivityAt = time.Now()
	s.sessions[id] = sess
	return nil
}

// DeleteSessionsForTenant removes every session of a tenant.
func (s *InMemoryStore) DeleteSessionsForTenant(tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.TenantID == tenantID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// ExpireStaleSessions completes active sessions idle since before cutoff.
func (s *InMemoryStore) ExpireStaleSessions(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	now := time.Now()
	for id, sess := range s.sessions {
		if sess.Status == models.SessionActive && sess.LastActivityAt.Before(cutoff) {
			sess.Status = models.SessionCompleted
			sess.EndedAt = &now
			s.sessions[id] = sess
			count++
		}
	}
	return count, nil
}

// AppendMessageLog appends one message record.
func (s *InMemoryStore) AppendMessageLog(entry models.MessageLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	s.log = append(s.log, entry)
	return nil
}

// GetMessageLog returns a session's log entries in append order.
func (s *InMemoryStore) GetMessageLog(sessionID string) ([]models.MessageLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []models.MessageLogEntry
	for _, e := range s.log {
		if e.SessionID == sessionID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// GetMenuItems returns a tenant's menu tree as a flat list in display order.
func (s *InMemoryStore) GetMenuItems(tenantID string) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []models.MenuItem
	for _, m := range s.menu {
		if m.TenantID == tenantID {
			items = append(items, m)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DisplayOrder != items[j].DisplayOrder {
			return items[i].DisplayOrder < items[j].DisplayOrder
		}
		return s.ord[items[i].ID] < s.ord[items[j].ID]
	})
	return items, nil
}

// SaveMenuItem inserts or replaces one menu item.
func (s *InMemoryStore) SaveMenuItem(item models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if _, ok := s.menu[item.ID]; !ok {
		s.touch(item.ID)
	}
	s.menu[item.ID] = item
	return nil
}

// DeleteMenuItem removes one menu item.
func (s *InMemoryStore) DeleteMenuItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.menu, id)
	return nil
}
