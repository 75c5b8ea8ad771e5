package models

import (
	"errors"
	"testing"
)

func TestFlowValidate(t *testing.T) {
	tests := []struct {
		name string
		flow Flow
		want error
	}{
		{"valid", Flow{TenantID: "t1", Name: "x", TriggerMode: TriggerKeyword}, nil},
		{"empty trigger mode allowed", Flow{TenantID: "t1", Name: "x"}, nil},
		{"missing tenant", Flow{Name: "x"}, ErrEmptyTenant},
		{"missing name", Flow{TenantID: "t1"}, ErrEmptyFlowName},
		{"bad trigger", Flow{TenantID: "t1", Name: "x", TriggerMode: "bogus"}, ErrInvalidTrigger},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.flow.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNodeValidate(t *testing.T) {
	valid := Node{TenantID: "t1", Type: NodeTypeMessage}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := Node{TenantID: "t1", Type: "bogus"}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidNodeType) {
		t.Errorf("expected ErrInvalidNodeType, got %v", err)
	}
	noTenant := Node{Type: NodeTypeMessage}
	if err := noTenant.Validate(); !errors.Is(err, ErrEmptyTenant) {
		t.Errorf("expected ErrEmptyTenant, got %v", err)
	}
}

func TestEdgeValidate(t *testing.T) {
	valid := Edge{TenantID: "t1", ConditionType: ConditionAlways}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := Edge{TenantID: "t1", ConditionType: "bogus"}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("expected ErrInvalidCondition, got %v", err)
	}
}

func TestTypeValidators(t *testing.T) {
	for _, nt := range []NodeType{NodeTypeStart, NodeTypeMessage, NodeTypeInput, NodeTypeCondition, NodeTypeAction, NodeTypeDelay, NodeTypeGoto, NodeTypeEnd} {
		if !IsValidNodeType(nt) {
			t.Errorf("node type %q should be valid", nt)
		}
	}
	for _, ct := range []ConditionType{ConditionAlways, ConditionEquals, ConditionContains, ConditionRegex, ConditionVariable} {
		if !IsValidConditionType(ct) {
			t.Errorf("condition type %q should be valid", ct)
		}
	}
	for _, mt := range []MenuItemType{MenuItemSubmenu, MenuItemFlow, MenuItemCommand, MenuItemLink, MenuItemMessage} {
		if !IsValidMenuItemType(mt) {
			t.Errorf("menu item type %q should be valid", mt)
		}
	}
	if IsValidNodeType("bogus") || IsValidConditionType("bogus") || IsValidMenuItemType("bogus") || IsValidTriggerMode("bogus") {
		t.Errorf("unknown types should be invalid")
	}
}
