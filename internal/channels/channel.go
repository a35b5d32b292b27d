package channels

import (
	"context"
	"log/slog"

	"github.com/w1labs/atende/internal/bus"
)

// Channel is a messaging transport the gateway can receive from and
// send to.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error

	// Send delivers a message to a chat on this channel.
	Send(ctx context.Context, chatID, content string) error

	IsRunning() bool

	// IsAllowed reports whether a sender may talk to the bot.
	IsAllowed(senderID string) bool
}

// BaseChannel carries the state shared by all channel implementations.
type BaseChannel struct {
	name      string
	bus       bus.MessageRouter
	running   bool
	allowFrom map[string]bool
}

func NewBaseChannel(name string, router bus.MessageRouter, allowFrom []string) BaseChannel {
	allowed := make(map[string]bool, len(allowFrom))
	for _, id := range allowFrom {
		allowed[id] = true
	}
	return BaseChannel{
		name:      name,
		bus:       router,
		allowFrom: allowed,
	}
}

func (b *BaseChannel) Name() string    { return b.name }
func (b *BaseChannel) IsRunning() bool { return b.running }

func (b *BaseChannel) SetRunning(running bool) { b.running = running }

// IsAllowed returns true when the allowlist is empty (open) or the
// sender is on it.
func (b *BaseChannel) IsAllowed(senderID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}
	return b.allowFrom[senderID]
}

// HandleMessage publishes an inbound message to the bus after checking
// the allowlist.
func (b *BaseChannel) HandleMessage(senderID, chatID, content string, metadata map[string]string) {
	if !b.IsAllowed(senderID) {
		slog.Debug("sender not allowed, dropping message", "channel", b.name, "sender", senderID)
		return
	}
	b.bus.PublishInbound(bus.InboundMessage{
		Channel:  b.name,
		SenderID: senderID,
		ChatID:   chatID,
		Content:  content,
		Metadata: metadata,
	})
}

// Truncate shortens s to max runes for log previews.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
