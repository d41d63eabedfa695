package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/andysheldon-creator/OpenClaw-Optimised-sub007/config"
)

func TestInitRejectsBadLevel(t *testing.T) {
	l := &Logger{Logger: logrus.New()}
	if _, err := l.Init(&config.Logger{Level: "loud"}); err == nil {
		t.Fatal("Init accepted an invalid level")
	}
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if id == "" {
		t.Fatal("EnsureRequestID returned an empty ID")
	}
	ctx2, id2 := EnsureRequestID(ctx)
	if id2 != id {
		t.Errorf("second EnsureRequestID = %q, want stable %q", id2, id)
	}
	if ctx2 != ctx {
		t.Error("context was replaced even though an ID existed")
	}
}

func TestEntryCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Logger: logrus.New()}
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(&buf)

	ctx := SetRequestID(context.Background(), "req-1234")
	l.Info(ctx, "hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry[requestIDKey] != "req-1234" {
		t.Errorf("request_id = %v, want req-1234", entry[requestIDKey])
	}
}
