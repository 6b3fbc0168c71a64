package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNew_WritesDailyFile(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	dir := filepath.Join(t.TempDir(), "logs")
	log, err := New(dir, "debug", false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debugw("probe", "k", 1)
	_ = log.Sync()

	name := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	raw, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{`"msg":"logger online"`, `"msg":"probe"`, `"level":"debug"`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("log missing %s:\n%s", want, raw)
		}
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(t.TempDir(), "loud", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestFromContext(t *testing.T) {
	l := zap.NewNop().Sugar()
	if got := FromContext(WithContext(context.Background(), l)); got != l {
		t.Fatal("logger not carried by context")
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("missing logger should fall back to global")
	}
}
