// Package metrics: GPUCollector periodically samples GPU telemetry via
// nvidia-smi and feeds the MetricsStore. On hosts without an NVIDIA GPU
// the collector marks itself unavailable and keeps retrying quietly.
package metrics

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

// GPUReader is the interface for reading GPU metrics. The abstraction
// exists so tests can substitute a mock for the nvidia-smi probe.
type GPUReader interface {
	// ReadGPUMetrics reads the current GPU metrics.
	// Returns an error if the GPU is unavailable or metrics cannot be read.
	ReadGPUMetrics() (GPUMetrics, error)
}

// GPUCollectorConfig configures the GPUCollector behavior.
type GPUCollectorConfig struct {
	// CollectionInterval is how often to sample GPU telemetry
	CollectionInterval time.Duration

	// HistorySize is the number of samples retained (720 = 1h at 5s)
	HistorySize int

	// NvidiaSMIPath is the path to the nvidia-smi executable.
	// Empty means "nvidia-smi" resolved via PATH.
	NvidiaSMIPath string
}

// DefaultGPUCollectorConfig returns a default configuration.
func DefaultGPUCollectorConfig() GPUCollectorConfig {
	return GPUCollectorConfig{
		CollectionInterval: 5 * time.Second,
		HistorySize:        720,
		NvidiaSMIPath:      "nvidia-smi",
	}
}

// GPUCollector samples GPU telemetry on a fixed interval in a background
// goroutine, retaining a circular-buffer history for the dashboard's GPU
// endpoint.
type GPUCollector struct {
	mu sync.RWMutex

	config GPUCollectorConfig
	reader GPUReader

	// History storage (circular buffer)
	history  []GPUMetrics
	histHead int
	histSize int
	histCap  int

	// Current state
	lastMetrics GPUMetrics
	available   bool
	lastError   error

	// Callback invoked with each fresh sample
	onMetrics func(GPUMetrics)

	// Control
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGPUCollector creates a GPUCollector. onMetrics, if non-nil, is
// invoked with each successfully collected sample.
func NewGPUCollector(config GPUCollectorConfig, onMetrics func(GPUMetrics)) *GPUCollector {
	if config.CollectionInterval < time.Second {
		config.CollectionInterval = 5 * time.Second
	}
	if config.HistorySize < 1 {
		config.HistorySize = 720
	}
	if config.NvidiaSMIPath == "" {
		config.NvidiaSMIPath = "nvidia-smi"
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &GPUCollector{
		config:    config,
		history:   make([]GPUMetrics, config.HistorySize),
		histCap:   config.HistorySize,
		onMetrics: onMetrics,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// NewGPUCollectorWithReader creates a GPUCollector with a custom
// GPUReader, primarily for testing.
func NewGPUCollectorWithReader(config GPUCollectorConfig, reader GPUReader, onMetrics func(GPUMetrics)) *GPUCollector {
	c := NewGPUCollector(config, onMetrics)
	c.reader = reader
	return c
}

// Start begins periodic collection in a background goroutine.
func (c *GPUCollector) Start() {
	c.wg.Add(1)
	go c.collectLoop()
}

// Stop halts collection, blocking until the goroutine has exited.
func (c *GPUCollector) Stop() {
	c.cancel()
	c.wg.Wait()
}

// IsAvailable returns true if the last sample succeeded.
func (c *GPUCollector) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

// GetLastError returns the most recent collection error, or nil.
func (c *GPUCollector) GetLastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// GetCurrentMetrics returns the most recently collected sample.
func (c *GPUCollector) GetCurrentMetrics() GPUMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastMetrics
}

// GetHistory returns up to limit samples, oldest first.
func (c *GPUCollector) GetHistory(limit int) []GPUMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if limit <= 0 || c.histSize == 0 {
		return []GPUMetrics{}
	}
	if limit > c.histSize {
		limit = c.histSize
	}

	result := make([]GPUMetrics, limit)
	for i := 0; i < limit; i++ {
		idx := (c.histHead - c.histSize + i + c.histCap) % c.histCap
		result[i] = c.history[idx]
	}
	return result
}

// GetHistorySize returns the current number of retained samples.
func (c *GPUCollector) GetHistorySize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.histSize
}

// collectLoop is the main collection goroutine.
func (c *GPUCollector) collectLoop() {
	defer c.wg.Done()

	// Sample immediately so the dashboard has data before the first tick
	c.collectOnce()

	ticker := time.NewTicker(c.config.CollectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.collectOnce()
		}
	}
}

// collectOnce performs a single sample.
func (c *GPUCollector) collectOnce() {
	var metrics GPUMetrics
	var err error

	if c.reader != nil {
		metrics, err = c.reader.ReadGPUMetrics()
	} else {
		metrics, err = c.readNvidiaSMI()
	}

	c.mu.Lock()
	if err != nil {
		c.available = false
		c.lastError = err
		// Keep the last valid sample, but don't extend history
	} else {
		c.available = true
		c.lastError = nil
		c.lastMetrics = metrics

		c.history[c.histHead] = metrics
		c.histHead = (c.histHead + 1) % c.histCap
		if c.histSize < c.histCap {
			c.histSize++
		}
	}
	c.mu.Unlock()

	// Callback runs outside the lock
	if c.onMetrics != nil && err == nil {
		c.onMetrics(metrics)
	}
}

// readNvidiaSMI queries nvidia-smi for one telemetry sample.
func (c *GPUCollector) readNvidiaSMI() (GPUMetrics, error) {
	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.config.NvidiaSMIPath,
		"--query-gpu=utilization.gpu,temperature.gpu,memory.used,memory.total",
		"--format=csv,noheader,nounits")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return GPUMetrics{}, fmt.Errorf("nvidia-smi failed: %w (stderr: %s)", err, stderr.String())
	}

	return parseNvidiaSMIOutput(stdout.String())
}

// parseNvidiaSMIOutput parses the CSV line emitted by nvidia-smi.
func parseNvidiaSMIOutput(output string) (GPUMetrics, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return GPUMetrics{}, fmt.Errorf("empty nvidia-smi output")
	}

	reader := csv.NewReader(strings.NewReader(output))
	record, err := reader.Read()
	if err != nil {
		return GPUMetrics{}, fmt.Errorf("failed to parse CSV: %w", err)
	}

	if len(record) < 4 {
		return GPUMetrics{}, fmt.Errorf("unexpected field count: got %d, expected 4", len(record))
	}

	util, err := parseSMIField(record[0], "utilization")
	if err != nil {
		return GPUMetrics{}, err
	}
	temp, err := parseSMIField(record[1], "temperature")
	if err != nil {
		return GPUMetrics{}, err
	}
	memUsedMiB, err := parseSMIField(record[2], "memory used")
	if err != nil {
		return GPUMetrics{}, err
	}
	memTotalMiB, err := parseSMIField(record[3], "memory total")
	if err != nil {
		return GPUMetrics{}, err
	}

	// nvidia-smi reports MiB with nounits
	const mibToBytes = 1024 * 1024
	memTotal := int64(memTotalMiB * mibToBytes)
	memUsed := int64(memUsedMiB * mibToBytes)

	return GPUMetrics{
		Utilization: util,
		Temperature: temp,
		MemoryTotal: memTotal,
		MemoryUsed:  memUsed,
		MemoryFree:  memTotal - memUsed,
	}, nil
}

func parseSMIField(raw, name string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return v, nil
}

// MockGPUReader is a mock GPUReader for tests.
type MockGPUReader struct {
	mu      sync.Mutex
	metrics GPUMetrics
	err     error
	calls   int
}

// NewMockGPUReader creates a mock reader returning the given metrics.
func NewMockGPUReader(metrics GPUMetrics) *MockGPUReader {
	return &MockGPUReader{metrics: metrics}
}

// SetMetrics updates the metrics returned by this mock.
func (m *MockGPUReader) SetMetrics(metrics GPUMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
}

// SetError sets an error to be returned by ReadGPUMetrics.
func (m *MockGPUReader) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ReadGPUMetrics returns the configured mock metrics or error.
func (m *MockGPUReader) ReadGPUMetrics() (GPUMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return GPUMetrics{}, m.err
	}
	return m.metrics, nil
}

// CallCount returns the number of ReadGPUMetrics calls.
func (m *MockGPUReader) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
