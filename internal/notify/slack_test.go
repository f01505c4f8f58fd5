package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/slack-go/slack"
)

type webhookRecorder struct {
	mu    sync.Mutex
	texts []string
	fail  bool
}

func (rec *webhookRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var msg struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec.mu.Lock()
	rec.texts = append(rec.texts, msg.Text)
	fail := rec.fail
	rec.mu.Unlock()

	if fail {
		http.Error(w, "channel_is_archived", http.StatusInternalServerError)
		return
	}
	fmt.Fprint(w, "ok")
}

func TestSendPostsTwoMessagesInOrder(t *testing.T) {
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec)
	t.Cleanup(server.Close)

	n := NewWebhook(server.URL)
	err := n.Send(context.Background(), "overview body", "details body")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(rec.texts) != 2 {
		t.Fatalf("received %d messages, want 2", len(rec.texts))
	}
	if rec.texts[0] != "overview body" {
		t.Errorf("first message = %q, want overview body", rec.texts[0])
	}
	if rec.texts[1] != "details body" {
		t.Errorf("second message = %q, want details body", rec.texts[1])
	}
}

func TestSendStopsAfterOverviewFailure(t *testing.T) {
	rec := &webhookRecorder{fail: true}
	server := httptest.NewServer(rec)
	t.Cleanup(server.Close)

	n := NewWebhook(server.URL)
	err := n.Send(context.Background(), "overview body", "details body")
	if err == nil {
		t.Fatal("Send() error = nil, want delivery error")
	}

	if len(rec.texts) != 1 {
		t.Errorf("received %d messages, want 1: details must not follow a failed overview", len(rec.texts))
	}
}

func TestBotPostsToChannel(t *testing.T) {
	var (
		mu       sync.Mutex
		channels []string
		texts    []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/chat.postMessage", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		channels = append(channels, r.Form.Get("channel"))
		texts = append(texts, r.Form.Get("text"))
		mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"channel":"C123","ts":"1234.5678"}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	n := &Notifier{
		client:  slack.New("xoxb-test", slack.OptionAPIURL(server.URL+"/")),
		channel: "C123",
	}
	err := n.Send(context.Background(), "overview body", "details body")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(texts) != 2 || texts[0] != "overview body" || texts[1] != "details body" {
		t.Errorf("texts = %v, want overview then details", texts)
	}
	for i, ch := range channels {
		if ch != "C123" {
			t.Errorf("message %d posted to %q, want C123", i, ch)
		}
	}
}
