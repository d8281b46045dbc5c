package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitLogFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "logs", "rundeckbot.log")
	if err := InitLog(filename, false); err != nil {
		t.Fatal("init log failed", err)
	}
	defer func() { Log = NewStderrLogger(false) }()

	Log.Trace("TestInitLogFile", "trace line")
	Log.Debug("TestInitLogFile", "debug line")
	Log.Error("TestInitLogFile", "error line")
	Log.Sync()

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal("read log failed", err)
	}
	content := string(data)
	if !strings.Contains(content, "trace line") || !strings.Contains(content, "error line") {
		t.Fatal("log content", content)
	}
	if strings.Contains(content, "debug line") {
		t.Fatal("debug disabled", content)
	}
}

func TestRealClock(t *testing.T) {
	start := RealClock.Now()
	RealClock.Sleep(10 * time.Millisecond)
	if RealClock.Now().Sub(start) < 10*time.Millisecond {
		t.Fatal("sleep too short")
	}
}
