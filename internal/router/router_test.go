package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/w1labs/atende/internal/bus"
	"github.com/w1labs/atende/internal/config"
	"github.com/w1labs/atende/internal/escalation"
	"github.com/w1labs/atende/internal/providers"
)

type fakeProvider struct {
	reply   string
	err     error
	lastReq providers.ChatRequest
}

func (f *fakeProvider) Name() string         { return "fake" }
func (f *fakeProvider) DefaultModel() string { return "fake-model" }

func (f *fakeProvider) Chat(_ context.Context, req providers.ChatRequest) (*providers.ChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &providers.ChatResponse{Content: f.reply, FinishReason: "stop"}, nil
}

func testSettings() config.EscalationConfig {
	return config.EscalationConfig{
		Keyword:      "humano",
		AckMessage:   "ack",
		ErrorMessage: "erro",
		SystemPrompt: "prompt",
		Provider:     "fake",
	}
}

func newTestRouter(t *testing.T, p providers.Provider) (*Router, *escalation.Store, *bus.MessageBus) {
	t.Helper()
	store := escalation.NewStore()
	registry := providers.NewRegistry()
	if p != nil {
		registry.Register(p)
	}
	b := bus.New()
	r := New(store, registry, b, testSettings)
	return r, store, b
}

func consumeReply(t *testing.T, b *bus.MessageBus) (bus.OutboundMessage, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return b.ConsumeOutbound(ctx)
}

func inbound(content string) bus.InboundMessage {
	return bus.InboundMessage{
		Channel:  "whatsapp",
		SenderID: "5511999999999@c.us",
		ChatID:   "5511999999999@c.us",
		Content:  content,
	}
}

func TestHandleEscalation(t *testing.T) {
	p := &fakeProvider{reply: "should not be used"}
	r, store, b := newTestRouter(t, p)

	original := "  Preciso falar com um HUMANO agora  "
	r.handle(context.Background(), inbound(original))

	reply, ok := consumeReply(t, b)
	if !ok {
		t.Fatal("expected acknowledgment reply")
	}
	if reply.Content != "ack" {
		t.Errorf("reply = %q, want fixed ack", reply.Content)
	}
	if reply.ChatID != "5511999999999@c.us" {
		t.Errorf("ChatID = %q", reply.ChatID)
	}

	all := store.AllRequests()
	if len(all) != 1 {
		t.Fatalf("store has %d requests, want 1", len(all))
	}
	if all[0].Message != original {
		t.Errorf("stored message = %q, want verbatim original", all[0].Message)
	}
	if all[0].Status != escalation.StatusPending {
		t.Errorf("status = %q, want pending", all[0].Status)
	}
	if p.lastReq.Messages != nil {
		t.Error("provider should not be called on escalation")
	}
}

func TestHandleAIReply(t *testing.T) {
	p := &fakeProvider{reply: "Uma holding é..."}
	r, store, b := newTestRouter(t, p)

	r.handle(context.Background(), inbound("  O que é uma HOLDING?  "))

	reply, ok := consumeReply(t, b)
	if !ok {
		t.Fatal("expected AI reply")
	}
	if reply.Content != "Uma holding é..." {
		t.Errorf("reply = %q, want provider output verbatim", reply.Content)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d requests, want 0", store.Len())
	}

	if len(p.lastReq.Messages) != 2 {
		t.Fatalf("provider got %d messages, want 2", len(p.lastReq.Messages))
	}
	if p.lastReq.Messages[0].Role != "system" || p.lastReq.Messages[0].Content != "prompt" {
		t.Errorf("system message = %+v", p.lastReq.Messages[0])
	}
	if p.lastReq.Messages[1].Content != "o que é uma holding?" {
		t.Errorf("user message = %q, want normalized text", p.lastReq.Messages[1].Content)
	}
}

func TestHandleProviderFailure(t *testing.T) {
	p := &fakeProvider{err: errors.New("upstream down")}
	r, store, b := newTestRouter(t, p)

	r.handle(context.Background(), inbound("qual o horário de atendimento?"))

	reply, ok := consumeReply(t, b)
	if !ok {
		t.Fatal("expected error reply")
	}
	if reply.Content != "erro" {
		t.Errorf("reply = %q, want fixed error text", reply.Content)
	}
	if store.Len() != 0 {
		t.Errorf("provider failure must not create requests, store has %d", store.Len())
	}

	if _, again := consumeReply(t, b); again {
		t.Error("exactly one reply expected per message")
	}
}

func TestHandleNoProvider(t *testing.T) {
	r, store, b := newTestRouter(t, nil)

	r.handle(context.Background(), inbound("oi"))

	reply, ok := consumeReply(t, b)
	if !ok {
		t.Fatal("expected error reply when no provider is registered")
	}
	if reply.Content != "erro" {
		t.Errorf("reply = %q, want fixed error text", reply.Content)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d requests, want 0", store.Len())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r, _, _ := newTestRouter(t, &fakeProvider{reply: "ok"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
