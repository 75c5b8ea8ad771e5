package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/gestorzap/botengine/internal/flow"
	"github.com/gestorzap/botengine/internal/models"
	"github.com/gestorzap/botengine/internal/store"
)

func TestBridgeDeliversEngineResponses(t *testing.T) {
	st := store.NewInMemoryStore()
	err := st.CreateFlow(models.Flow{ID: "f1", TenantID: "t1", Name: "Greeting", IsActive: true, IsDefault: true})
	if err != nil {
		t.Fatalf("failed to create flow: %v", err)
	}
	node := models.Node{ID: "n1", FlowID: "f1", TenantID: "t1", Type: models.NodeTypeMessage, IsEntryPoint: true, Config: models.NodeConfig{MessageText: "Olá {{name}}!"}}
	if err := st.CreateNode(node); err != nil {
		t.Fatalf("failed to create node: %v", err)
	}

	svc := newMockService()
	bridge := NewBridge(flow.NewEngine(st, nil), svc, "t1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := bridge.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	svc.inbound <- Inbound{From: "+5581999990000", Name: "Maria", Body: "oi"}

	deadline := time.After(2 * time.Second)
	for {
		if len(svc.sentTexts()) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("no response delivered")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if texts := svc.sentTexts(); texts[0] != "Olá Maria!" {
		t.Errorf("unexpected delivery %q", texts[0])
	}
	if err := bridge.Stop(); err != nil {
		t.Errorf("stop failed: %v", err)
	}
}

func TestBridgeIgnoresUndeliverableResults(t *testing.T) {
	// No flows configured: the engine reports no_active_flows and the bridge
	// must simply move on without sending anything.
	st := store.NewInMemoryStore()
	svc := newMockService()
	bridge := NewBridge(flow.NewEngine(st, nil), svc, "t1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := bridge.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	svc.inbound <- Inbound{From: "5581999990000", Body: "oi"}
	time.Sleep(50 * time.Millisecond)
	if texts, media := svc.sentTexts(), svc.sentMedia(); len(texts) != 0 || len(media) != 0 {
		t.Errorf("nothing should be delivered, got %+v %+v", texts, media)
	}
}
