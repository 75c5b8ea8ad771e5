// Package menu implements the dynamic menu navigator: a menu-tree front-end
// to the same session model the flow engine uses. It resolves free-text
// input against a tenant's menu tree and maps selections to navigation or
// hand-off actions.
package menu

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gestorzap/botengine/internal/models"
	"github.com/gestorzap/botengine/internal/store"
)

// MaxDepth caps ancestor-chain walks. The menu tree is not validated for
// cycles on write, so traversal is bounded defensively, mirroring the flow
// engine's iteration cap.
const MaxDepth = 8

// Universal navigation tokens, independent of any menu's content.
const (
	tokenBack = "0"
)

var homeTokens = map[string]bool{"#": true, "00": true, "##": true}

// ActionType describes what the caller should do with a Result.
type ActionType string

const (
	// ActionRender presents the rendered menu and waits for the next input.
	ActionRender ActionType = "render"
	// ActionFlow hands the conversation off to the flow engine.
	ActionFlow ActionType = "flow"
	// ActionCommand signals the caller to run a named command.
	ActionCommand ActionType = "command"
	// ActionLink returns a URL to present.
	ActionLink ActionType = "link"
	// ActionMessage returns a static message.
	ActionMessage ActionType = "message"
)

// Result is the outcome of resolving one user input against the menu tree.
type Result struct {
	Action ActionType

	// MenuKey is the menu the conversation is now on; the caller persists it
	// as the contact's menu state.
	MenuKey string

	// Text is the plain-text rendering (ActionRender) or the message/URL
	// payload for terminal actions.
	Text string

	// List is the structured list-message rendering for providers that
	// support interactive pickers. Set alongside Text for ActionRender.
	List *models.ListMessage

	FlowID  string
	Command string
}

// Navigator resolves user input against a tenant's menu tree.
type Navigator struct {
	store store.Store
}

// NewNavigator creates a Navigator backed by the given store.
func NewNavigator(st store.Store) *Navigator {
	return &Navigator{store: st}
}

// Resolve maps the contact's input to the next menu action. currentKey may be
// empty, meaning the contact is at (or returns to) the tenant's root menu.
// On unrecognized input the current menu is re-rendered with an inline error
// prefix rather than navigating.
func (n *Navigator) Resolve(tenantID, currentKey, input string) (Result, error) {
	items, err := n.store.GetMenuItems(tenantID)
	if err != nil {
		slog.Error("Navigator menu load failed", "error", err, "tenant", tenantID)
		return Result{}, err
	}

	tree := buildTree(items)
	root := tree.root()
	if root == nil {
		return Result{}, models.ErrNoRootMenu
	}

	current := tree.byKey(currentKey)
	if current == nil {
		current = root
	}

	trimmed := strings.TrimSpace(input)

	// Universal navigation first: independent of the menu's own entries.
	if homeTokens[trimmed] {
		return n.render(tree, root, ""), nil
	}
	if trimmed == tokenBack {
		parent := tree.parentOf(current)
		if parent == nil {
			parent = root
		}
		return n.render(tree, parent, ""), nil
	}

	children := tree.childrenOf(current)
	matched := matchChild(children, trimmed)
	if matched == nil {
		slog.Debug("Navigator input matched nothing, re-rendering", "tenant", tenantID, "menu", current.Key, "input", trimmed)
		return n.render(tree, current, invalidOptionPrefix), nil
	}

	switch matched.Type {
	case models.MenuItemSubmenu:
		target := matched
		if matched.TargetMenuKey != "" {
			if t := tree.byKey(matched.TargetMenuKey); t != nil {
				target = t
			}
		}
		return n.render(tree, target, ""), nil

	case models.MenuItemFlow:
		return Result{Action: ActionFlow, MenuKey: current.Key, FlowID: matched.TargetFlowID}, nil

	case models.MenuItemCommand:
		return Result{Action: ActionCommand, MenuKey: current.Key, Command: matched.TargetCommand}, nil

	case models.MenuItemLink:
		return Result{Action: ActionLink, MenuKey: current.Key, Text: matched.TargetURL}, nil

	case models.MenuItemMessage:
		return Result{Action: ActionMessage, MenuKey: current.Key, Text: matched.TargetMessage}, nil

	default:
		return n.render(tree, current, invalidOptionPrefix), nil
	}
}

// render produces both rendering forms for a menu.
func (n *Navigator) render(t *tree, item *models.MenuItem, errorPrefix string) Result {
	children := t.childrenOf(item)
	return Result{
		Action:  ActionRender,
		MenuKey: item.Key,
		Text:    renderText(item, t.path(item), children, errorPrefix),
		List:    renderList(item, children),
	}
}

// matchChild resolves input against a menu's children by, in order: 1-based
// ordinal index, exact case-insensitive key, then case-insensitive substring
// against the title in either direction.
func matchChild(children []*models.MenuItem, input string) *models.MenuItem {
	if input == "" {
		return nil
	}
	if index, err := strconv.Atoi(input); err == nil && index >= 1 && index <= len(children) {
		return children[index-1]
	}
	for _, c := range children {
		if strings.EqualFold(c.Key, input) {
			return c
		}
	}
	lower := strings.ToLower(input)
	for _, c := range children {
		title := strings.ToLower(c.Title)
		if strings.Contains(title, lower) || strings.Contains(lower, title) {
			return c
		}
	}
	return nil
}

// tree is an indexed view over a tenant's flat menu item list.
type tree struct {
	items  []*models.MenuItem
	byID   map[string]*models.MenuItem
	keyIdx map[string]*models.MenuItem
}

func buildTree(items []models.MenuItem) *tree {
	t := &tree{
		byID:   make(map[string]*models.MenuItem, len(items)),
		keyIdx: make(map[string]*models.MenuItem, len(items)),
	}
	for i := range items {
		item := &items[i]
		t.items = append(t.items, item)
		t.byID[item.ID] = item
		if item.Key != "" {
			t.keyIdx[strings.ToLower(item.Key)] = item
		}
	}
	return t
}

func (t *tree) root() *models.MenuItem {
	for _, item := range t.items {
		if item.IsRoot {
			return item
		}
	}
	return nil
}

func (t *tree) byKey(key string) *models.MenuItem {
	if key == "" {
		return nil
	}
	return t.keyIdx[strings.ToLower(key)]
}

func (t *tree) parentOf(item *models.MenuItem) *models.MenuItem {
	if item.ParentID == "" {
		return nil
	}
	return t.byID[item.ParentID]
}

// path returns the ancestor chain from the root down to item, capped at
// MaxDepth so a malformed (cyclic) tree cannot hang the renderer.
func (t *tree) path(item *models.MenuItem) []*models.MenuItem {
	var chain []*models.MenuItem
	for current := item; current != nil && len(chain) < MaxDepth; current = t.parentOf(current) {
		chain = append(chain, current)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// childrenOf returns an item's children in display order. Items are already
// ordered by the store.
func (t *tree) childrenOf(item *models.MenuItem) []*models.MenuItem {
	var children []*models.MenuItem
	for _, candidate := range t.items {
		if candidate.ParentID == item.ID {
			children = append(children, candidate)
		}
	}
	return children
}
