package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestDebug_DisabledInProduction(t *testing.T) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
	logger.SetLevel(log.DebugLevel)

	appLogger := &AppLogger{
		logger: logger,
		debug:  false, // Production mode
	}

	appLogger.Debug("debug message that should not appear")

	output := buf.String()
	if strings.Contains(output, "debug message that should not appear") {
		t.Errorf("Expected debug message to be suppressed in production mode, got: %s", output)
	}
}

func TestNewAppLoggerTo_Levels(t *testing.T) {
	tests := []struct {
		name      string
		debug     bool
		wantInfo  bool
		wantWarn  bool
		wantDebug bool
	}{
		{name: "production keeps warnings only", debug: false, wantWarn: true},
		{name: "debug keeps everything", debug: true, wantInfo: true, wantWarn: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewAppLoggerTo(&buf, tt.debug)

			logger.Info("info-line")
			logger.Warn("warn-line")
			logger.Debug("debug-line")

			output := buf.String()
			if got := strings.Contains(output, "info-line"); got != tt.wantInfo {
				t.Errorf("info present = %v, want %v (output: %s)", got, tt.wantInfo, output)
			}
			if got := strings.Contains(output, "warn-line"); got != tt.wantWarn {
				t.Errorf("warn present = %v, want %v (output: %s)", got, tt.wantWarn, output)
			}
			if got := strings.Contains(output, "debug-line"); got != tt.wantDebug {
				t.Errorf("debug present = %v, want %v (output: %s)", got, tt.wantDebug, output)
			}
			if logger.IsDebug() != tt.debug {
				t.Errorf("IsDebug() = %v, want %v", logger.IsDebug(), tt.debug)
			}
		})
	}
}

func TestWith(t *testing.T) {
	logger, buf := NewTestLogger()

	child := logger.With("request_id", "42")
	child.Info("handled")

	output := buf.String()
	if !strings.Contains(output, "request_id") || !strings.Contains(output, "42") {
		t.Errorf("Expected child logger fields in output, got: %s", output)
	}
	if !child.IsDebug() {
		t.Error("child logger should inherit debug mode")
	}
}

func TestLogRequest(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.LogRequest("tools/call", "7")

	output := buf.String()
	if !strings.Contains(output, "Request received") {
		t.Errorf("Expected log output to contain 'Request received', got: %s", output)
	}
	if !strings.Contains(output, "tools/call") {
		t.Errorf("Expected log output to contain the method, got: %s", output)
	}
}

func TestLogRequest_DisabledInProduction(t *testing.T) {
	var buf bytes.Buffer
	appLogger := NewAppLoggerTo(&buf, false)

	appLogger.LogRequest("initialize", "1")

	if strings.Contains(buf.String(), "Request received") {
		t.Errorf("Expected request logging to be suppressed in production mode, got: %s", buf.String())
	}
}

func TestLogToolCall(t *testing.T) {
	logger, buf := NewTestLogger()

	logger.LogToolCall("read_file", true, time.Now())

	output := buf.String()
	if !strings.Contains(output, "Tool call") {
		t.Errorf("Expected log output to contain 'Tool call', got: %s", output)
	}
	if !strings.Contains(output, "read_file") {
		t.Errorf("Expected log output to contain tool name, got: %s", output)
	}
	if !strings.Contains(output, "is_error=true") {
		t.Errorf("Expected log output to contain error flag, got: %s", output)
	}
}

func TestDebugObject(t *testing.T) {
	logger, buf := NewTestLogger()

	testObj := struct {
		Name  string
		Value int
	}{
		Name:  "test",
		Value: 42,
	}

	logger.DebugObject("test_object", testObj)

	output := buf.String()
	if !strings.Contains(output, "Object dump") {
		t.Errorf("Expected log output to contain 'Object dump', got: %s", output)
	}
	if !strings.Contains(output, "test_object") {
		t.Errorf("Expected log output to contain object name, got: %s", output)
	}
}

func TestLogPerformance(t *testing.T) {
	logger, buf := NewTestLogger()

	start := time.Now()
	time.Sleep(1 * time.Millisecond) // Small delay for measurable duration
	logger.LogPerformance("test_operation", start)

	output := buf.String()
	if !strings.Contains(output, "Performance") {
		t.Errorf("Expected log output to contain 'Performance', got: %s", output)
	}
	if !strings.Contains(output, "test_operation") {
		t.Errorf("Expected log output to contain operation name, got: %s", output)
	}
	if !strings.Contains(output, "duration") {
		t.Errorf("Expected log output to contain duration, got: %s", output)
	}
}

func TestNewAppLogger_DebugWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DEBUG", "1")

	logger := NewAppLogger()
	logger.Info("mirrored line")

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("Expected debug log file to exist: %v", err)
	}
	if !strings.Contains(string(data), "mirrored line") {
		t.Errorf("Expected log file to contain message, got: %s", data)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	// Reset the singleton for testing
	defaultLogger = nil
	once = sync.Once{}

	t.Chdir(t.TempDir())
	t.Setenv("DEBUG", "1")

	// Test that package-level functions work
	Info("package level info")
	Warn("package level warn")
	Error("package level error")
	Debug("package level debug")

	start := time.Now()
	LogPerformance("package_operation", start)

	// If we get here without panics, the package-level functions work
}

func TestGetDefault_Singleton(t *testing.T) {
	// Reset the singleton for testing
	defaultLogger = nil
	once = sync.Once{}

	logger1 := GetDefault()
	logger2 := GetDefault()

	if logger1 != logger2 {
		t.Error("Expected GetDefault() to return the same instance (singleton)")
	}
}

// Benchmark tests
func BenchmarkInfo(b *testing.B) {
	logger, _ := NewTestLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", "iteration", i)
	}
}

func BenchmarkDebug(b *testing.B) {
	logger, _ := NewTestLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("benchmark debug message", "iteration", i)
	}
}
