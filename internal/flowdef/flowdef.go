// Package flowdef reads and writes flow definitions as YAML documents.
//
// Definition files use human-readable node keys; installing a definition
// generates fresh identifiers and remaps the edge graph, in the same way
// template cloning does.
package flowdef

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/gestorzap/botengine/internal/models"
	"github.com/gestorzap/botengine/internal/store"
)

// File is the YAML representation of one flow definition.
type File struct {
	Name            string    `yaml:"name"`
	TriggerMode     string    `yaml:"trigger_mode,omitempty"`
	TriggerKeywords []string  `yaml:"trigger_keywords,omitempty"`
	Default         bool      `yaml:"default,omitempty"`
	Template        bool      `yaml:"template,omitempty"`
	Priority        int       `yaml:"priority,omitempty"`
	Nodes           []NodeDef `yaml:"nodes"`
	Edges           []EdgeDef `yaml:"edges,omitempty"`
}

// NodeDef is one node of a definition file, addressed by a local key.
type NodeDef struct {
	Key    string            `yaml:"key"`
	Type   string            `yaml:"type"`
	Label  string            `yaml:"label,omitempty"`
	Entry  bool              `yaml:"entry,omitempty"`
	Config models.NodeConfig `yaml:"config,omitempty"`
}

// EdgeDef is one edge of a definition file, referencing node keys.
type EdgeDef struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Condition string `yaml:"condition,omitempty"`
	Value     string `yaml:"value,omitempty"`
	Label     string `yaml:"label,omitempty"`
	Priority  int    `yaml:"priority,omitempty"`
}

// Parse decodes and validates a YAML flow definition.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse flow definition: %w", err)
	}
	if f.Name == "" {
		return nil, models.ErrEmptyFlowName
	}
	keys := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		if n.Key == "" {
			return nil, fmt.Errorf("flow definition %q: node without key", f.Name)
		}
		if keys[n.Key] {
			return nil, fmt.Errorf("flow definition %q: duplicate node key %q", f.Name, n.Key)
		}
		if !models.IsValidNodeType(models.NodeType(n.Type)) {
			return nil, fmt.Errorf("flow definition %q: node %q: %w", f.Name, n.Key, models.ErrInvalidNodeType)
		}
		keys[n.Key] = true
	}
	for _, e := range f.Edges {
		if !keys[e.From] || !keys[e.To] {
			return nil, fmt.Errorf("flow definition %q: edge %s->%s references unknown node", f.Name, e.From, e.To)
		}
		if e.Condition != "" && !models.IsValidConditionType(models.ConditionType(e.Condition)) {
			return nil, fmt.Errorf("flow definition %q: edge %s->%s: %w", f.Name, e.From, e.To, models.ErrInvalidCondition)
		}
	}
	return &f, nil
}

// Install materializes a parsed definition as a tenant-owned flow with fresh
// identifiers. The flow is created active unless it is a template.
func (f *File) Install(st store.Store, tenantID string) (*models.Flow, error) {
	triggerMode := models.TriggerMode(f.TriggerMode)
	if triggerMode == "" {
		triggerMode = models.TriggerKeyword
	}
	flow := models.Flow{
		ID:              uuid.NewString(),
		TenantID:        tenantID,
		Name:            f.Name,
		TriggerMode:     triggerMode,
		TriggerKeywords: append([]string(nil), f.TriggerKeywords...),
		IsActive:        !f.Template,
		IsDefault:       f.Default,
		IsTemplate:      f.Template,
		Priority:        f.Priority,
	}
	if err := st.CreateFlow(flow); err != nil {
		return nil, fmt.Errorf("failed to create flow %q: %w", f.Name, err)
	}

	nodeIDs := make(map[string]string, len(f.Nodes))
	for _, def := range f.Nodes {
		id := uuid.NewString()
		nodeIDs[def.Key] = id
		node := models.Node{
			ID:           id,
			FlowID:       flow.ID,
			TenantID:     tenantID,
			Type:         models.NodeType(def.Type),
			Label:        def.Label,
			Config:       def.Config,
			IsEntryPoint: def.Entry,
		}
		if err := st.CreateNode(node); err != nil {
			return nil, fmt.Errorf("failed to create node %q: %w", def.Key, err)
		}
	}

	for _, def := range f.Edges {
		condition := models.ConditionType(def.Condition)
		if condition == "" {
			condition = models.ConditionAlways
		}
		edge := models.Edge{
			ID:             uuid.NewString(),
			FlowID:         flow.ID,
			TenantID:       tenantID,
			SourceNodeID:   nodeIDs[def.From],
			TargetNodeID:   nodeIDs[def.To],
			ConditionType:  condition,
			ConditionValue: def.Value,
			Label:          def.Label,
			Priority:       def.Priority,
		}
		if err := st.CreateEdge(edge); err != nil {
			return nil, fmt.Errorf("failed to create edge %s->%s: %w", def.From, def.To, err)
		}
	}

	slog.Info("Flow definition installed", "flow", flow.ID, "name", f.Name, "tenant", tenantID, "nodes", len(f.Nodes), "edges", len(f.Edges))
	return &flow, nil
}

// Export serializes a stored flow back into the YAML definition form. Node
// keys are derived from labels where present, falling back to short ids.
func Export(st store.Store, flowID string) ([]byte, error) {
	flow, err := st.GetFlow(flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	if flow == nil {
		return nil, models.ErrUnknownFlow
	}
	nodes, err := st.GetNodes(flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	edges, err := st.GetEdges(flowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}

	f := File{
		Name:            flow.Name,
		TriggerMode:     string(flow.TriggerMode),
		TriggerKeywords: flow.TriggerKeywords,
		Default:         flow.IsDefault,
		Template:        flow.IsTemplate,
		Priority:        flow.Priority,
	}

	keys := make(map[string]string, len(nodes))
	used := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		key := slugify(n.Label)
		if key == "" || used[key] {
			key = shortID(n.ID)
		}
		used[key] = true
		keys[n.ID] = key
		f.Nodes = append(f.Nodes, NodeDef{
			Key:    key,
			Type:   string(n.Type),
			Label:  n.Label,
			Entry:  n.IsEntryPoint,
			Config: n.Config,
		})
	}
	for _, e := range edges {
		f.Edges = append(f.Edges, EdgeDef{
			From:      keys[e.SourceNodeID],
			To:        keys[e.TargetNodeID],
			Condition: string(e.ConditionType),
			Value:     e.ConditionValue,
			Label:     e.Label,
			Priority:  e.Priority,
		})
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal flow definition: %w", err)
	}
	return data, nil
}

// InstallDir installs every *.yaml/*.yml definition in a directory for the
// given tenant. Used at boot to seed stock templates. Individual file
// failures are logged and skipped so one bad file cannot block startup.
func InstallDir(st store.Store, dir, tenantID string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read flow definition directory: %w", err)
	}
	installed := 0
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Error("Flow definition read failed, skipping", "error", err, "path", path)
			continue
		}
		def, err := Parse(data)
		if err != nil {
			slog.Error("Flow definition parse failed, skipping", "error", err, "path", path)
			continue
		}
		if _, err := def.Install(st, tenantID); err != nil {
			slog.Error("Flow definition install failed, skipping", "error", err, "path", path)
			continue
		}
		installed++
	}
	return installed, nil
}

func slugify(label string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('_')
		}
	}
	return strings.Trim(sb.String(), "_")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
