package debuglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// readLog closes the logger and returns what was written to path.
func readLog(t *testing.T, path string) string {
	t.Helper()
	if err := Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(content)
}

func TestLevelNamesRoundTrip(t *testing.T) {
	for _, level := range []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError, LevelOff} {
		name := level.String()
		if got := ParseLogLevel(strings.ToLower(name)); got != level {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", strings.ToLower(name), got, level)
		}
	}
}

func TestParseLogLevelAliasesAndFallback(t *testing.T) {
	tests := map[string]LogLevel{
		"WARNING":   LevelWarn,
		"  debug  ": LevelDebug,
		"verbose":   LevelInfo,
		"":          LevelInfo,
	}
	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	tests := []struct {
		level   LogLevel
		present []string
		absent  []string
	}{
		{LevelDebug, []string{"query submitted", "fetch done", "stale", "fetch failed"}, nil},
		{LevelInfo, []string{"fetch done", "stale", "fetch failed"}, []string{"query submitted"}},
		{LevelError, []string{"fetch failed"}, []string{"query submitted", "fetch done", "stale"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "gallr.log")
			if err := Setup(tt.level, logPath); err != nil {
				t.Fatalf("Setup failed: %v", err)
			}
			if GetLevel() != tt.level {
				t.Errorf("GetLevel() = %v, want %v", GetLevel(), tt.level)
			}

			Debugf("query submitted: %q", "cats")
			Infof("fetch done page=%d", 1)
			Warnf("discarding stale fetch")
			Errorf("fetch failed: %s", "HTTP 500")

			content := readLog(t, logPath)
			for _, s := range tt.present {
				if !strings.Contains(content, s) {
					t.Errorf("expected %q in log at %v", s, tt.level)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(content, s) {
					t.Errorf("did not expect %q in log at %v", s, tt.level)
				}
			}
		})
	}
}

func TestSetupOffWritesNothing(t *testing.T) {
	dir := t.TempDir()
	if err := Setup(LevelOff, filepath.Join(dir, "gallr.log")); err != nil {
		t.Fatalf("Setup with LevelOff failed: %v", err)
	}
	Errorf("dropped")

	if _, err := os.Stat(filepath.Join(dir, "gallr.log")); !os.IsNotExist(err) {
		t.Errorf("no log file should be created when logging is off, stat err = %v", err)
	}
}

func TestFieldLoggerAppendsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fields.log")
	if err := Setup(LevelDebug, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	WithFields(map[string]interface{}{
		"session": "abc",
		"total":   24,
	}).Infof("fetch done")

	content := readLog(t, logPath)
	for _, want := range []string{"[INFO] fetch done", "session=abc", "total=24"} {
		if !strings.Contains(content, want) {
			t.Errorf("expected %q in %q", want, content)
		}
	}
}

func TestFieldLoggerSortedFieldsAndWith(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sorted.log")
	if err := Setup(LevelDebug, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	base := WithFields(map[string]interface{}{"session": "abc", "query": "cats"})
	base.With("page", 2).Debugf("fetch started")
	base.Infof("no page here")

	content := readLog(t, logPath)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %q", len(lines), content)
	}
	if !strings.Contains(lines[0], "[DEBUG] fetch started [page=2 query=cats session=abc]") {
		t.Errorf("unexpected first line: %s", lines[0])
	}
	if strings.Contains(lines[1], "page=") {
		t.Errorf("With must not mutate the parent logger: %s", lines[1])
	}
}

func TestSetupCreatesMissingDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "gallr.log")
	if err := Setup(LevelWarn, logPath); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer Close()

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("expected log file to exist: %v", err)
	}
}

func TestSetLevelAtRuntime(t *testing.T) {
	t.Cleanup(func() { SetLevel(LevelOff) })

	SetLevel(LevelDebug)
	if GetLevel() != LevelDebug {
		t.Errorf("SetLevel(LevelDebug) failed, got %v", GetLevel())
	}
	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("SetLevel(LevelError) failed, got %v", GetLevel())
	}
}

func TestDefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got, want := DefaultPath(), filepath.Join(home, ".gallr", "gallr.log"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
