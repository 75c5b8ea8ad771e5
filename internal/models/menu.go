// Package models defines the dynamic menu structures for the menu-driven bot.
package models

import "time"

// MenuItemType identifies the action taken when a menu item is selected.
type MenuItemType string

const (
	// MenuItemSubmenu descends into a child menu.
	MenuItemSubmenu MenuItemType = "submenu"
	// MenuItemFlow hands the conversation off to a flow.
	MenuItemFlow MenuItemType = "flow"
	// MenuItemCommand signals the caller to run a named command.
	MenuItemCommand MenuItemType = "command"
	// MenuItemLink returns a URL to present to the contact.
	MenuItemLink MenuItemType = "link"
	// MenuItemMessage returns a static message.
	MenuItemMessage MenuItemType = "message"
)

// IsValidMenuItemType checks if the given menu item type is supported.
func IsValidMenuItemType(mt MenuItemType) bool {
	switch mt {
	case MenuItemSubmenu, MenuItemFlow, MenuItemCommand, MenuItemLink, MenuItemMessage:
		return true
	default:
		return false
	}
}

// MenuItem is one tenant-scoped node of the dynamic menu tree. Exactly one
// item per tenant may be marked root. Traversal assumes a strict tree; the
// renderer caps depth defensively rather than validating shape on write.
type MenuItem struct {
	ID           string       `json:"id"`
	TenantID     string       `json:"tenant_id"`
	ParentID     string       `json:"parent_id,omitempty"`
	Key          string       `json:"key"`
	Title        string       `json:"title"`
	Section      string       `json:"section,omitempty"`
	Description  string       `json:"description,omitempty"`
	Type         MenuItemType `json:"type"`
	IsRoot       bool         `json:"is_root"`
	DisplayOrder int          `json:"display_order"`

	// Exactly one target field is meaningful, per Type.
	TargetMenuKey string `json:"target_menu_key,omitempty"`
	TargetFlowID  string `json:"target_flow_id,omitempty"`
	TargetCommand string `json:"target_command,omitempty"`
	TargetURL     string `json:"target_url,omitempty"`
	TargetMessage string `json:"target_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
