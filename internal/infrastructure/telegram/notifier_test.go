package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TrendsAgent/internal/config"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "123:abc", ChatID: "-100", APIURL: server.URL + "/"})
	if err := n.PublishDigest(context.Background(), "2 new drafts pending review"); err != nil {
		t.Fatalf("PublishDigest returned error: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotChat != "-100" || gotText != "2 new drafts pending review" {
		t.Fatalf("unexpected form chat=%q text=%q", gotChat, gotText)
	}
}

func TestPublishDigestTruncatesLongMessages(t *testing.T) {
	t.Parallel()

	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotText = r.PostForm.Get("text")
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "t", ChatID: "c", APIURL: server.URL})
	if err := n.PublishDigest(context.Background(), strings.Repeat("x", 5000)); err != nil {
		t.Fatalf("PublishDigest returned error: %v", err)
	}
	if len([]rune(gotText)) != maxMessageLength || !strings.HasSuffix(gotText, "...") {
		t.Fatalf("message not truncated, length %d", len([]rune(gotText)))
	}
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	if err := NewNotifier(config.TelegramConfig{}).PublishDigest(context.Background(), "x"); err == nil {
		t.Fatal("expected misconfiguration error")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	err := NewNotifier(config.TelegramConfig{BotToken: "t", ChatID: "c", APIURL: server.URL}).PublishDigest(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected telegram error, got %v", err)
	}
}
