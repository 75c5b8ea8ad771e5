package menu

import (
	"log/slog"
	"sync"

	"github.com/gestorzap/botengine/internal/models"
	"github.com/gestorzap/botengine/internal/store"
)

// CommandFunc runs a named command matched from a menu item and returns the
// responses to deliver to the contact.
type CommandFunc func(tenantID, phone, command string) ([]models.Response, error)

// Frontend adapts the Navigator to the engine's menu-mode entry point. It
// tracks each contact's current menu position in memory; menu navigation is
// ephemeral and restarts at the root after a process restart.
type Frontend struct {
	nav      *Navigator
	commands CommandFunc

	mu   sync.Mutex
	keys map[string]string // tenant|phone -> current menu key
}

// NewFrontend creates a menu front-end backed by the given store. commands
// may be nil; command menu items then produce no responses.
func NewFrontend(st store.Store, commands CommandFunc) *Frontend {
	return &Frontend{
		nav:      NewNavigator(st),
		commands: commands,
		keys:     make(map[string]string),
	}
}

// Handle resolves one input for a contact in menu mode. A flow-typed match
// returns the flow id for the engine to start; every other action is
// translated into deliverable responses.
func (f *Frontend) Handle(tenantID, phone, input string) ([]models.Response, string, error) {
	res, err := f.nav.Resolve(tenantID, f.current(tenantID, phone), input)
	if err != nil {
		return nil, "", err
	}

	switch res.Action {
	case ActionFlow:
		// Handing off to a flow resets menu state; when the flow session
		// completes the contact lands back on the root menu.
		f.reset(tenantID, phone)
		return nil, res.FlowID, nil

	case ActionCommand:
		if f.commands == nil {
			slog.Warn("Menu command matched but no command runner configured", "tenant", tenantID, "command", res.Command)
			return nil, "", nil
		}
		responses, err := f.commands(tenantID, phone, res.Command)
		if err != nil {
			slog.Error("Menu command execution failed", "error", err, "tenant", tenantID, "command", res.Command)
			return nil, "", err
		}
		return responses, "", nil

	case ActionLink, ActionMessage:
		return []models.Response{{Type: models.ResponseTypeText, Content: res.Text}}, "", nil

	default: // ActionRender
		f.set(tenantID, phone, res.MenuKey)
		resp := models.Response{Type: models.ResponseTypeText, Content: res.Text}
		if res.List != nil {
			resp.Type = models.ResponseTypeList
			resp.List = res.List
		}
		return []models.Response{resp}, "", nil
	}
}

func (f *Frontend) current(tenantID, phone string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[tenantID+"|"+phone]
}

func (f *Frontend) set(tenantID, phone, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[tenantID+"|"+phone] = key
}

func (f *Frontend) reset(tenantID, phone string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, tenantID+"|"+phone)
}
