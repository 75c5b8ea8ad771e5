package messaging

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gestorzap/botengine/internal/models"
)

// mockService records sent messages for dispatch assertions. Safe for use
// from the bridge's consume goroutine.
type mockService struct {
	mu      sync.Mutex
	texts   []string
	media   []string
	sendErr error
	inbound chan Inbound
}

func newMockService() *mockService {
	return &mockService{inbound: make(chan Inbound, 10)}
}

func (m *mockService) CanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

func (m *mockService) SendText(ctx context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.texts = append(m.texts, body)
	return nil
}

func (m *mockService) SendMedia(ctx context.Context, to, caption, mediaURL, mediaType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.media = append(m.media, mediaType+":"+mediaURL+":"+caption)
	return nil
}

func (m *mockService) Start(ctx context.Context) error { return nil }
func (m *mockService) Stop() error                     { return nil }
func (m *mockService) Inbound() <-chan Inbound         { return m.inbound }

func (m *mockService) sentTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

func (m *mockService) sentMedia() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.media...)
}

func TestDispatchTextAndMedia(t *testing.T) {
	svc := newMockService()
	responses := []models.Response{
		{Type: models.ResponseTypeText, Content: "Olá!"},
		{Type: models.ResponseTypeImage, Content: "veja", MediaURL: "https://cdn.example.com/a.png"},
		{Type: models.ResponseTypeDocument, Content: "contrato", MediaURL: "https://cdn.example.com/c.pdf"},
	}

	if err := Dispatch(context.Background(), svc, "5581999990000", responses); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(svc.texts) != 1 || svc.texts[0] != "Olá!" {
		t.Errorf("unexpected texts %+v", svc.texts)
	}
	if len(svc.media) != 2 {
		t.Fatalf("expected 2 media sends, got %+v", svc.media)
	}
	if svc.media[0] != "image:https://cdn.example.com/a.png:veja" {
		t.Errorf("unexpected media send %q", svc.media[0])
	}
}

func TestDispatchRendersButtons(t *testing.T) {
	svc := newMockService()
	responses := []models.Response{{
		Type:    models.ResponseTypeButtons,
		Content: "Confirma?",
		Buttons: []models.Button{{Text: "Sim"}, {Text: "Não"}},
	}}

	if err := Dispatch(context.Background(), svc, "5581999990000", responses); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(svc.texts) != 1 {
		t.Fatalf("expected 1 text, got %+v", svc.texts)
	}
	want := "Confirma?\n1. Sim\n2. Não"
	if svc.texts[0] != want {
		t.Errorf("buttons rendered as %q, want %q", svc.texts[0], want)
	}
}

func TestDispatchRendersList(t *testing.T) {
	svc := newMockService()
	responses := []models.Response{{
		Type: models.ResponseTypeList,
		List: &models.ListMessage{
			Title:       "Menu",
			Description: "Escolha:",
			Footer:      "0. Voltar",
			Sections: []models.ListSection{
				{Title: "Vendas", Rows: []models.ListRow{{Title: "Planos", Description: "preços e condições"}}},
				{Rows: []models.ListRow{{Title: "Suporte"}}},
			},
		},
	}}

	if err := Dispatch(context.Background(), svc, "5581999990000", responses); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if len(svc.texts) != 1 {
		t.Fatalf("expected 1 text, got %+v", svc.texts)
	}
	text := svc.texts[0]
	for _, want := range []string{"*Menu*", "*Vendas*", "1. Planos - preços e condições", "2. Suporte", "0. Voltar"} {
		if !strings.Contains(text, want) {
			t.Errorf("list rendering missing %q:\n%s", want, text)
		}
	}
}

func TestDispatchDelayPauses(t *testing.T) {
	svc := newMockService()
	responses := []models.Response{
		{Type: models.ResponseTypeDelay, DelayMs: 20},
		{Type: models.ResponseTypeText, Content: "depois"},
	}

	started := time.Now()
	if err := Dispatch(context.Background(), svc, "5581999990000", responses); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if elapsed := time.Since(started); elapsed < 20*time.Millisecond {
		t.Errorf("expected at least 20ms pause, took %v", elapsed)
	}
	if len(svc.texts) != 1 {
		t.Errorf("delay must not send anything, got %+v", svc.texts)
	}
}

func TestDispatchDelayRespectsContext(t *testing.T) {
	svc := newMockService()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	responses := []models.Response{
		{Type: models.ResponseTypeDelay, DelayMs: 5000},
		{Type: models.ResponseTypeText, Content: "nunca"},
	}

	err := Dispatch(ctx, svc, "5581999990000", responses)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if len(svc.texts) != 0 {
		t.Errorf("nothing should be sent after cancellation, got %+v", svc.texts)
	}
}

func TestDispatchStopsOnTransportError(t *testing.T) {
	svc := newMockService()
	svc.sendErr = errors.New("connection lost")
	responses := []models.Response{
		{Type: models.ResponseTypeText, Content: "um"},
		{Type: models.ResponseTypeText, Content: "dois"},
	}

	err := Dispatch(context.Background(), svc, "5581999990000", responses)
	if err == nil || !strings.Contains(err.Error(), "connection lost") {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}

func TestDelayDurationCap(t *testing.T) {
	if d := delayDuration(120_000); d != MaxDispatchDelay {
		t.Errorf("expected cap at %v, got %v", MaxDispatchDelay, d)
	}
	if d := delayDuration(-5); d != 0 {
		t.Errorf("negative delay should clamp to 0, got %v", d)
	}
	if d := delayDuration(1500); d != 1500*time.Millisecond {
		t.Errorf("expected 1.5s, got %v", d)
	}
}

func TestCanonicalizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+5581999990000", "5581999990000", false},
		{"  5581999990000  ", "5581999990000", false},
		{"", "", true},
		{"+", "", true},
		{"55 81 99999", "", true},
		{"abc", "", true},
	}
	for _, tc := range tests {
		got, err := canonicalizePhone(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("canonicalizePhone(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("canonicalizePhone(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}
