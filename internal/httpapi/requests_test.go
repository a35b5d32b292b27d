package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/w1labs/atende/internal/escalation"
)

func newTestMux(store *escalation.Store) *http.ServeMux {
	mux := http.NewServeMux()
	NewRequestsHandler(store).RegisterRoutes(mux)
	return mux
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestListPending(t *testing.T) {
	store := escalation.NewStore()
	id1 := store.AddRequest("5511111111111@c.us", time.Now(), "preciso de um humano")
	id2 := store.AddRequest("5511222222222@c.us", time.Now(), "falar com humano")
	store.Resolve(id2, "ana")

	rec := doRequest(t, newTestMux(store), "GET", "/api/requests", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got []escalation.Request
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("pending count = %d, want 1", len(got))
	}
	if got[0].ID != id1 {
		t.Errorf("ID = %q, want %q", got[0].ID, id1)
	}
}

func TestListAll(t *testing.T) {
	store := escalation.NewStore()
	store.AddRequest("a@c.us", time.Now(), "humano")
	id := store.AddRequest("b@c.us", time.Now(), "humano")
	store.Resolve(id, "")

	rec := doRequest(t, newTestMux(store), "GET", "/api/requests/all", "")

	var got []escalation.Request
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("all count = %d, want 2", len(got))
	}
	if got[1].Status != escalation.StatusResolved {
		t.Errorf("second status = %q, want resolved", got[1].Status)
	}
}

func TestGetByID(t *testing.T) {
	store := escalation.NewStore()
	id := store.AddRequest("5511999999999@c.us", time.Now(), "  Quero falar com um HUMANO  ")

	t.Run("found", func(t *testing.T) {
		rec := doRequest(t, newTestMux(store), "GET", "/api/requests/"+id, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}

		var got map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got["id"] != id {
			t.Errorf("id = %v", got["id"])
		}
		if got["user"] != "5511999999999@c.us" {
			t.Errorf("user = %v", got["user"])
		}
		if got["userName"] != "5511999999999" {
			t.Errorf("userName = %v", got["userName"])
		}
		if got["message"] != "  Quero falar com um HUMANO  " {
			t.Errorf("message = %v, want verbatim text", got["message"])
		}
		if got["status"] != "pending" {
			t.Errorf("status = %v", got["status"])
		}
	})

	t.Run("not found", func(t *testing.T) {
		rec := doRequest(t, newTestMux(store), "GET", "/api/requests/does-not-exist", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}

		var got map[string]string
		json.Unmarshal(rec.Body.Bytes(), &got)
		if got["error"] != "Solicitação não encontrada" {
			t.Errorf("error = %q", got["error"])
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("with resolver name", func(t *testing.T) {
		store := escalation.NewStore()
		id := store.AddRequest("a@c.us", time.Now(), "humano")

		rec := doRequest(t, newTestMux(store), "POST", "/api/requests/resolve/"+id, `{"resolvedBy":"ana"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}

		var got map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &got)
		if got["success"] != true {
			t.Errorf("success = %v", got["success"])
		}
		if got["message"] != "Solicitação marcada como resolvida" {
			t.Errorf("message = %q", got["message"])
		}

		req, _ := store.RequestByID(id)
		if req.ResolvedBy == nil || *req.ResolvedBy != "ana" {
			t.Errorf("ResolvedBy = %v, want ana", req.ResolvedBy)
		}
	})

	t.Run("empty body defaults resolver", func(t *testing.T) {
		store := escalation.NewStore()
		id := store.AddRequest("a@c.us", time.Now(), "humano")

		rec := doRequest(t, newTestMux(store), "POST", "/api/requests/resolve/"+id, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}

		req, _ := store.RequestByID(id)
		if req.ResolvedBy == nil || *req.ResolvedBy != "operator" {
			t.Errorf("ResolvedBy = %v, want operator", req.ResolvedBy)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		store := escalation.NewStore()
		rec := doRequest(t, newTestMux(store), "POST", "/api/requests/resolve/nope", "{}")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

type fakeSender struct {
	err     error
	called  bool
	channel string
	chatID  string
	content string
}

func (f *fakeSender) SendToChannel(_ context.Context, channel, chatID, content string) error {
	f.called = true
	f.channel = channel
	f.chatID = chatID
	f.content = content
	return f.err
}

func newSendMux(sender *fakeSender) *http.ServeMux {
	mux := http.NewServeMux()
	NewSendMessageHandler(sender, "whatsapp").RegisterRoutes(mux)
	return mux
}

func TestSendMessage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sender := &fakeSender{}
		rec := doRequest(t, newSendMux(sender), "POST", "/api/send-message",
			`{"to":"5511999999999@c.us","message":"Olá, sou o atendente"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !sender.called {
			t.Fatal("sender not called")
		}
		if sender.channel != "whatsapp" || sender.chatID != "5511999999999@c.us" {
			t.Errorf("sent to %s/%s", sender.channel, sender.chatID)
		}

		var got map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &got)
		if got["message"] != "Mensagem enviada com sucesso" {
			t.Errorf("message = %q", got["message"])
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		cases := []string{`{}`, `{"to":"x@c.us"}`, `{"message":"oi"}`, `not json`}
		for _, body := range cases {
			sender := &fakeSender{}
			rec := doRequest(t, newSendMux(sender), "POST", "/api/send-message", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("body %q: status = %d, want 400", body, rec.Code)
			}
			if sender.called {
				t.Errorf("body %q: transport must not be reached", body)
			}
			var got map[string]string
			json.Unmarshal(rec.Body.Bytes(), &got)
			if got["error"] != "Destinatário e mensagem são obrigatórios" {
				t.Errorf("body %q: error = %q", body, got["error"])
			}
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("bridge down")}
		rec := doRequest(t, newSendMux(sender), "POST", "/api/send-message",
			`{"to":"x@c.us","message":"oi"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		var got map[string]string
		json.Unmarshal(rec.Body.Bytes(), &got)
		if got["error"] != "Erro ao enviar mensagem" {
			t.Errorf("error = %q", got["error"])
		}
	})
}

func TestLiveness(t *testing.T) {
	rec := doRequest(t, newSendMux(&fakeSender{}), "GET", "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sistema de escalação") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
