// Package router consumes inbound messages from the bus and decides their
// fate: escalation to the human operator queue or an AI-generated reply.
package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/w1labs/atende/internal/bus"
	"github.com/w1labs/atende/internal/config"
	"github.com/w1labs/atende/internal/escalation"
	"github.com/w1labs/atende/internal/providers"
)

// Router routes inbound messages. Escalated messages are registered in the
// store and acknowledged; everything else goes to a completion provider.
type Router struct {
	store     *escalation.Store
	providers *providers.Registry
	bus       bus.MessageRouter
	// settings returns the current escalation settings; hot-reloadable
	// behind the config watcher.
	settings func() config.EscalationConfig
	tracer   trace.Tracer
}

func New(store *escalation.Store, registry *providers.Registry, router bus.MessageRouter, settings func() config.EscalationConfig) *Router {
	return &Router{
		store:     store,
		providers: registry,
		bus:       router,
		settings:  settings,
		tracer:    otel.Tracer("atende/router"),
	}
}

// Run consumes inbound messages until ctx is cancelled. Each message is
// handled in its own goroutine so a slow provider call never stalls the
// rest of the queue.
func (r *Router) Run(ctx context.Context) {
	slog.Info("message router started")
	for {
		msg, ok := r.bus.ConsumeInbound(ctx)
		if !ok {
			slog.Info("message router stopped")
			return
		}
		go r.handle(ctx, msg)
	}
}

func (r *Router) handle(ctx context.Context, msg bus.InboundMessage) {
	runID := uuid.NewString()
	settings := r.settings()

	ctx, span := r.tracer.Start(ctx, "router.handle",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("channel", msg.Channel),
			attribute.String("sender.id", msg.SenderID),
		))
	defer span.End()

	log := slog.With("run_id", runID, "channel", msg.Channel, "sender", msg.SenderID)

	classifier := escalation.NewKeywordClassifier(settings.Keyword)
	if classifier.Escalate(msg.Content) {
		span.SetAttributes(attribute.Bool("escalated", true))
		r.escalate(log, settings, msg)
		return
	}

	span.SetAttributes(attribute.Bool("escalated", false))
	r.answer(ctx, span, log, settings, msg)
}

// escalate registers the request and sends the fixed acknowledgment.
// The stored message keeps the sender's original text verbatim.
func (r *Router) escalate(log *slog.Logger, settings config.EscalationConfig, msg bus.InboundMessage) {
	id := r.store.AddRequest(msg.SenderID, time.Now(), msg.Content)
	log.Info("message escalated to human queue", "request_id", id)

	r.bus.PublishOutbound(bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: settings.AckMessage,
	})
}

// answer asks the configured provider for a reply. On any failure the
// sender gets the fixed error text instead, and nothing is escalated.
func (r *Router) answer(ctx context.Context, span trace.Span, log *slog.Logger, settings config.EscalationConfig, msg bus.InboundMessage) {
	provider, err := r.providers.Get(settings.Provider)
	if err != nil {
		log.Error("no completion provider available", "error", err)
		span.SetStatus(codes.Error, "no provider")
		r.replyError(settings, msg)
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, settings.CompletionTimeoutDuration())
	defer cancel()

	resp, err := provider.Chat(callCtx, providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: settings.SystemPrompt},
			{Role: "user", Content: escalation.Normalize(msg.Content)},
		},
	})
	if err != nil {
		log.Error("completion failed", "provider", provider.Name(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		r.replyError(settings, msg)
		return
	}

	log.Debug("completion ok", "provider", provider.Name(), "finish_reason", resp.FinishReason)
	r.bus.PublishOutbound(bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: resp.Content,
	})
}

func (r *Router) replyError(settings config.EscalationConfig, msg bus.InboundMessage) {
	r.bus.PublishOutbound(bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: settings.ErrorMessage,
	})
}
