// Package bus provides the in-process message bus connecting channels to the
// router. Channels publish inbound messages; the router consumes them and
// publishes outbound replies which the channel manager dispatches.
package bus

import (
	"context"
	"log/slog"
)

const queueCapacity = 256

// MessageBus is a buffered in-process queue pair for inbound and outbound
// messages. Safe for concurrent use.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage
}

// New creates a MessageBus with default queue capacity.
func New() *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, queueCapacity),
		outbound: make(chan OutboundMessage, queueCapacity),
	}
}

// PublishInbound enqueues a message received from a channel.
// Drops the message with a warning if the queue is full so a stalled
// consumer can never block a channel's read loop.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	select {
	case b.inbound <- msg:
	default:
		slog.Warn("inbound queue full, dropping message",
			"channel", msg.Channel, "sender_id", msg.SenderID)
	}
}

// ConsumeInbound blocks until an inbound message is available or ctx is done.
// Returns ok=false when the context is cancelled.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case <-ctx.Done():
		return InboundMessage{}, false
	case msg := <-b.inbound:
		return msg, true
	}
}

// PublishOutbound enqueues a reply for channel dispatch.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	select {
	case b.outbound <- msg:
	default:
		slog.Warn("outbound queue full, dropping message",
			"channel", msg.Channel, "chat_id", msg.ChatID)
	}
}

// ConsumeOutbound blocks until an outbound message is available or ctx is done.
func (b *MessageBus) ConsumeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case <-ctx.Done():
		return OutboundMessage{}, false
	case msg := <-b.outbound:
		return msg, true
	}
}
