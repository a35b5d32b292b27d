package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Sender delivers a message to a chat on a named channel. Implemented by
// the channel manager.
type Sender interface {
	SendToChannel(ctx context.Context, channel, chatID, content string) error
}

// SendMessageHandler lets an operator push a message to a user directly,
// typically to follow up on an escalated request.
type SendMessageHandler struct {
	sender  Sender
	channel string
}

func NewSendMessageHandler(sender Sender, channel string) *SendMessageHandler {
	return &SendMessageHandler{sender: sender, channel: channel}
}

func (h *SendMessageHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/send-message", h.sendMessage)
	mux.HandleFunc("GET /{$}", h.liveness)
}

func (h *SendMessageHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.To == "" || body.Message == "" {
		writeError(w, http.StatusBadRequest, "Destinatário e mensagem são obrigatórios")
		return
	}

	if err := h.sender.SendToChannel(r.Context(), h.channel, body.To, body.Message); err != nil {
		slog.Error("operator send failed", "to", body.To, "error", err)
		writeError(w, http.StatusInternalServerError, "Erro ao enviar mensagem")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Mensagem enviada com sucesso",
	})
}

func (h *SendMessageHandler) liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("🤖 Bot WhatsApp + IA rodando com sistema de escalação para atendimento humano!"))
}
