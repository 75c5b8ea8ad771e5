package menu

import (
	"errors"
	"strings"
	"testing"

	"github.com/gestorzap/botengine/internal/models"
	"github.com/gestorzap/botengine/internal/store"
)

// seedMenu installs a two-level menu tree for tenant t1:
//
//	root
//	├── vendas (submenu)
//	│   ├── planos (message)
//	│   └── falar  (flow -> flow-sales)
//	├── site (link)
//	└── status (command)
func seedMenu(t *testing.T, st store.Store) {
	t.Helper()
	items := []models.MenuItem{
		{ID: "root", TenantID: "t1", Key: "root", Title: "Menu principal", Type: models.MenuItemSubmenu, IsRoot: true, DisplayOrder: 0},
		{ID: "vendas", TenantID: "t1", ParentID: "root", Key: "vendas", Title: "Vendas", Type: models.MenuItemSubmenu, DisplayOrder: 1},
		{ID: "site", TenantID: "t1", ParentID: "root", Key: "site", Title: "Nosso site", Type: models.MenuItemLink, TargetURL: "https://example.com", DisplayOrder: 2},
		{ID: "status", TenantID: "t1", ParentID: "root", Key: "status", Title: "Status do pedido", Type: models.MenuItemCommand, TargetCommand: "order_status", DisplayOrder: 3},
		{ID: "planos", TenantID: "t1", ParentID: "vendas", Key: "planos", Title: "Planos e preços", Type: models.MenuItemMessage, TargetMessage: "Plano básico: R$49", DisplayOrder: 1},
		{ID: "falar", TenantID: "t1", ParentID: "vendas", Key: "falar", Title: "Falar com vendedor", Type: models.MenuItemFlow, TargetFlowID: "flow-sales", DisplayOrder: 2},
	}
	for _, item := range items {
		if err := st.SaveMenuItem(item); err != nil {
			t.Fatalf("failed to save menu item %s: %v", item.ID, err)
		}
	}
}

func TestNavigatorRendersRoot(t *testing.T) {
	st := store.NewInMemoryStore()
	seedMenu(t, st)
	nav := NewNavigator(st)

	res, err := nav.Resolve("t1", "", "oi")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Action != ActionRender || res.MenuKey != "root" {
		t.Fatalf("expected root rendering, got %+v", res)
	}
	for _, want := range []string{"Menu principal", "1. Vendas", "2. Nosso site", "3. Status do pedido"} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("rendering missing %q:\n%s", want, res.Text)
		}
	}
	if res.List == nil || len(res.List.Sections) == 0 {
		t.Errorf("expected list rendering alongside text, got %+v", res.List)
	}
}

func TestNavigatorOrdinalSelection(t *testing.T) {
	st := store.NewInMemoryStore()
	seedMenu(t, st)
	nav := NewNavigator(st)

	res, err := nav.Resolve("t1", "root", "1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Action != ActionRender || res.MenuKey != "vendas" {
		t.Fatalf("expected descent into vendas, got %+v", res)
	}
	if !strings.Contains(res.Text, "1. Planos e preços") {
		t.Errorf("submenu not rendered:\n%s", res.Text)
	}
	// Breadcrumb shows the path.
	if !strings.Contains(res.Text, "Menu principal › Vendas") {
		t.Errorf("expected breadcrumb in rendering:\n%s", res.Text)
	}
}

func TestNavigatorKeyAndTitleMatching(t *testing.T) {
	st := store.NewInMemoryStore()
	seedMenu(t, st)
	nav := NewNavigator(st)

	// Exact key, case-insensitive.
	res, err := nav.Resolve("t1", "root", "VENDAS")
	if err != nil || res.MenuKey != "vendas" {
		t.Errorf("key match failed: %v, %+v", err, res)
	}

	// Title substring.
	res, err = nav.Resolve("t1", "root", "site")
	if err != nil || res.Action != ActionLink || res.Text != "https://example.com" {
		t.Errorf("title match failed: %v, %+v", err, res)
	}
}

func TestNavigatorTerminalActions(t *testing.T) {
	st := store.NewInMemoryStore()
	seedMenu(t, st)
	nav := NewNavigator(st)

	res, err := nav.Resolve("t1", "vendas", "1")
	if err != nil || res.Action != ActionMessage || res.Text != "Plano básico: R$49" {
		t.Errorf("message item failed: %v, %+v", err, res)
	}

	res, err = nav.Resolve("t1", "vendas", "2")
	if err != nil || res.Action != ActionFlow || res.FlowID != "flow-sales" {
		t.Errorf("flow item failed: %v, %+v", err, res)
	}

	res, err = nav.Resolve("t1", "root", "3")
	if err != nil || res.Action != ActionCommand || res.Command != "order_status" {
		t.Errorf("command item failed: %v, %+v", err, res)
	}
}

func TestNavigatorBackAndHomeTokens(t *testing.T) {
	st := store.NewInMemoryStore()
	seedMenu(t, st)
	nav := NewNavigator(st)

	res, err := nav.Resolve("t1", "vendas", "0")
	if err != nil || res.Action != ActionRender || res.MenuKey != "root" {
		t.Errorf("back token failed: %v, %+v", err, res)
	}

	// Back at the root stays at the root.
	res, err = nav.Resolve("t1", "root", "0")
	if err != nil || res.MenuKey != "root" {
		t.Errorf("back at root failed: %v, %+v", err, res)
	}

	for _, token := range []string{"#", "00", "##"} {
		res, err = nav.Resolve("t1", "vendas", token)
		if err != nil || res.Action != ActionRender || res.MenuKey != "root" {
			t.Errorf("home token %q failed: %v, %+v", token, err, res)
		}
	}
}

func TestNavigatorInvalidInputRerenders(t *testing.T) {
	st := store.NewInMemoryStore()
	seedMenu(t, st)
	nav := NewNavigator(st)

	res, err := nav.Resolve("t1", "root", "999")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.Action != ActionRender || res.MenuKey != "root" {
		t.Fatalf("expected re-render on invalid input, got %+v", res)
	}
	if !strings.HasPrefix(res.Text, invalidOptionPrefix) {
		t.Errorf("expected inline error prefix:\n%s", res.Text)
	}
}

func TestNavigatorUnknownCurrentKeyFallsBackToRoot(t *testing.T) {
	st := store.NewInMemoryStore()
	seedMenu(t, st)
	nav := NewNavigator(st)

	res, err := nav.Resolve("t1", "stale-key", "bogus input")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if res.MenuKey != "root" {
		t.Errorf("expected fallback to root, got %+v", res)
	}
}

func TestNavigatorNoRootMenu(t *testing.T) {
	st := store.NewInMemoryStore()
	nav := NewNavigator(st)

	if _, err := nav.Resolve("t1", "", "oi"); !errors.Is(err, models.ErrNoRootMenu) {
		t.Errorf("expected ErrNoRootMenu, got %v", err)
	}
}

func TestRenderTextSections(t *testing.T) {
	root := &models.MenuItem{ID: "root", Key: "root", Title: "Menu", Description: "Escolha:"}
	children := []*models.MenuItem{
		{ID: "a", Title: "Planos", Section: "Vendas"},
		{ID: "b", Title: "Preços", Section: "Vendas"},
		{ID: "c", Title: "Reclamações", Section: "Suporte"},
	}

	text := renderText(root, []*models.MenuItem{root}, children, "")
	for _, want := range []string{"_Vendas_", "_Suporte_", "1. Planos", "2. Preços", "3. Reclamações", backFooter, homeFooter} {
		if !strings.Contains(text, want) {
			t.Errorf("rendering missing %q:\n%s", want, text)
		}
	}
}

func TestRenderListGroupsSections(t *testing.T) {
	root := &models.MenuItem{ID: "root", Key: "root", Title: "Menu"}
	children := []*models.MenuItem{
		{ID: "a", Key: "planos", Title: "Planos", Section: "Vendas"},
		{ID: "b", Key: "precos", Title: "Preços", Section: "Vendas"},
		{ID: "c", Key: "sac", Title: "Reclamações", Section: "Suporte"},
	}

	list := renderList(root, children)
	if len(list.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %+v", list.Sections)
	}
	if len(list.Sections[0].Rows) != 2 || list.Sections[0].Title != "Vendas" {
		t.Errorf("unexpected first section %+v", list.Sections[0])
	}
	if list.Sections[0].Rows[0].ID != "planos" {
		t.Errorf("row id should be the item key, got %+v", list.Sections[0].Rows[0])
	}
}

func TestTreePathCapsDepth(t *testing.T) {
	// A cyclic parent chain must not hang the renderer.
	items := []models.MenuItem{
		{ID: "a", Key: "a", Title: "A", ParentID: "b"},
		{ID: "b", Key: "b", Title: "B", ParentID: "a"},
	}
	tr := buildTree(items)
	path := tr.path(tr.byKey("a"))
	if len(path) != MaxDepth {
		t.Errorf("expected path capped at %d, got %d", MaxDepth, len(path))
	}
}
