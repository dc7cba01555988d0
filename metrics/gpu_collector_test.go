package metrics

import (
	"errors"
	"testing"
	"time"
)

func testGPUMetrics() GPUMetrics {
	return GPUMetrics{
		Utilization: 42.5,
		Temperature: 65,
		MemoryTotal: 8 << 30,
		MemoryUsed:  2 << 30,
		MemoryFree:  6 << 30,
	}
}

func TestParseNvidiaSMIOutput(t *testing.T) {
	out := "42, 65, 2048, 8192"

	metrics, err := parseNvidiaSMIOutput(out)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if metrics.Utilization != 42 {
		t.Errorf("expected utilization 42, got %v", metrics.Utilization)
	}
	if metrics.Temperature != 65 {
		t.Errorf("expected temperature 65, got %v", metrics.Temperature)
	}
	wantUsed := int64(2048) * 1024 * 1024
	wantTotal := int64(8192) * 1024 * 1024
	if metrics.MemoryUsed != wantUsed {
		t.Errorf("expected memory used %d, got %d", wantUsed, metrics.MemoryUsed)
	}
	if metrics.MemoryTotal != wantTotal {
		t.Errorf("expected memory total %d, got %d", wantTotal, metrics.MemoryTotal)
	}
	if metrics.MemoryFree != wantTotal-wantUsed {
		t.Errorf("expected memory free %d, got %d", wantTotal-wantUsed, metrics.MemoryFree)
	}
}

func TestParseNvidiaSMIOutput_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"empty", ""},
		{"whitespace only", "  \n  "},
		{"too few fields", "42, 65"},
		{"non-numeric field", "42, hot, 2048, 8192"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseNvidiaSMIOutput(tt.output); err == nil {
				t.Errorf("expected parse error for %q", tt.output)
			}
		})
	}
}

func TestGPUCollector_CollectWithMockReader(t *testing.T) {
	reader := NewMockGPUReader(testGPUMetrics())

	var callbackMetrics []GPUMetrics
	collector := NewGPUCollectorWithReader(DefaultGPUCollectorConfig(), reader, func(m GPUMetrics) {
		callbackMetrics = append(callbackMetrics, m)
	})

	collector.collectOnce()

	if !collector.IsAvailable() {
		t.Error("expected collector to report available")
	}
	if collector.GetLastError() != nil {
		t.Errorf("unexpected error: %v", collector.GetLastError())
	}
	if got := collector.GetCurrentMetrics(); got != testGPUMetrics() {
		t.Errorf("unexpected current metrics: %+v", got)
	}
	if len(callbackMetrics) != 1 {
		t.Errorf("expected 1 callback invocation, got %d", len(callbackMetrics))
	}
	if collector.GetHistorySize() != 1 {
		t.Errorf("expected 1 history sample, got %d", collector.GetHistorySize())
	}
}

func TestGPUCollector_ReaderErrorMarksUnavailable(t *testing.T) {
	reader := NewMockGPUReader(testGPUMetrics())
	collector := NewGPUCollectorWithReader(DefaultGPUCollectorConfig(), reader, nil)

	collector.collectOnce()
	if !collector.IsAvailable() {
		t.Fatal("expected available after first sample")
	}

	reader.SetError(errors.New("no gpu"))
	collector.collectOnce()

	if collector.IsAvailable() {
		t.Error("expected unavailable after reader error")
	}
	if collector.GetLastError() == nil {
		t.Error("expected last error to be recorded")
	}
	// The failed sample does not extend history; the last good sample stays.
	if collector.GetHistorySize() != 1 {
		t.Errorf("expected history unchanged, got %d", collector.GetHistorySize())
	}
	if got := collector.GetCurrentMetrics(); got != testGPUMetrics() {
		t.Errorf("expected last good sample retained, got %+v", got)
	}
}

func TestGPUCollector_HistoryWraps(t *testing.T) {
	reader := NewMockGPUReader(GPUMetrics{})
	config := DefaultGPUCollectorConfig()
	config.HistorySize = 3

	collector := NewGPUCollectorWithReader(config, reader, nil)

	for i := 1; i <= 5; i++ {
		reader.SetMetrics(GPUMetrics{Utilization: float64(i * 10)})
		collector.collectOnce()
	}

	history := collector.GetHistory(10)
	if len(history) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(history))
	}
	// Oldest first: samples 3, 4, 5
	for i, wantUtil := range []float64{30, 40, 50} {
		if history[i].Utilization != wantUtil {
			t.Errorf("sample %d: expected utilization %v, got %v", i, wantUtil, history[i].Utilization)
		}
	}
}

func TestGPUCollector_StartStop(t *testing.T) {
	reader := NewMockGPUReader(testGPUMetrics())
	config := DefaultGPUCollectorConfig()
	config.CollectionInterval = time.Second

	collector := NewGPUCollectorWithReader(config, reader, nil)
	collector.Start()

	// Start samples immediately; give the goroutine a moment.
	deadline := time.Now().Add(2 * time.Second)
	for collector.GetHistorySize() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	collector.Stop()

	if collector.GetHistorySize() == 0 {
		t.Error("expected at least one sample after Start")
	}
	if reader.CallCount() == 0 {
		t.Error("expected reader to have been called")
	}
}

func TestGPUCollector_ConfigDefaults(t *testing.T) {
	collector := NewGPUCollector(GPUCollectorConfig{}, nil)

	if collector.config.CollectionInterval != 5*time.Second {
		t.Errorf("expected default interval, got %v", collector.config.CollectionInterval)
	}
	if collector.config.HistorySize != 720 {
		t.Errorf("expected default history size, got %d", collector.config.HistorySize)
	}
	if collector.config.NvidiaSMIPath != "nvidia-smi" {
		t.Errorf("expected default nvidia-smi path, got %q", collector.config.NvidiaSMIPath)
	}
}
