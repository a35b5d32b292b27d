package channels

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/w1labs/atende/internal/bus"
)

// Manager owns the registered channels and the outbound dispatch loop.
type Manager struct {
	mu       sync.RWMutex
	channels map[string]Channel
	bus      bus.MessageRouter
}

func NewManager(router bus.MessageRouter) *Manager {
	return &Manager{
		channels: make(map[string]Channel),
		bus:      router,
	}
}

func (m *Manager) RegisterChannel(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch.Name()] = ch
	slog.Info("channel registered", "channel", ch.Name())
}

func (m *Manager) Channel(name string) (Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[name]
	return ch, ok
}

// StartAll starts every registered channel and the outbound dispatch
// loop. A channel that fails to start is logged and skipped so the
// rest of the gateway keeps running.
func (m *Manager) StartAll(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, ch := range m.channels {
		if err := ch.Start(ctx); err != nil {
			slog.Error("failed to start channel", "channel", name, "error", err)
			continue
		}
		slog.Info("channel started", "channel", name)
	}

	go m.dispatchOutbound(ctx)
}

// dispatchOutbound consumes outbound messages from the bus and routes
// each to its channel.
func (m *Manager) dispatchOutbound(ctx context.Context) {
	for {
		msg, ok := m.bus.ConsumeOutbound(ctx)
		if !ok {
			return
		}
		if err := m.SendToChannel(ctx, msg.Channel, msg.ChatID, msg.Content); err != nil {
			slog.Error("outbound dispatch failed", "channel", msg.Channel, "chat", msg.ChatID, "error", err)
		}
	}
}

// SendToChannel delivers content to a chat on the named channel.
func (m *Manager) SendToChannel(ctx context.Context, channel, chatID, content string) error {
	ch, ok := m.Channel(channel)
	if !ok {
		return fmt.Errorf("channel %q not registered", channel)
	}
	if !ch.IsRunning() {
		return fmt.Errorf("channel %q not running", channel)
	}
	return ch.Send(ctx, chatID, content)
}

func (m *Manager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, ch := range m.channels {
		if err := ch.Stop(); err != nil {
			slog.Error("failed to stop channel", "channel", name, "error", err)
		}
	}
}
