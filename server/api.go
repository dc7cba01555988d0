package server

import (
	"net/http"
	"strconv"
	"time"

	"vision_backend/db"
	"vision_backend/metrics"

	"go.uber.org/zap"
)

// Default and maximum limits for the history endpoint.
const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Health        string    `json:"health"`
	Version       string    `json:"version"`
	Mode          string    `json:"mode"`
	Model         string    `json:"model"`
	Device        string    `json:"device"`
	PipelineState string    `json:"pipeline_state"`
	Uptime        string    `json:"uptime"`
	UptimeSecs    float64   `json:"uptime_secs"`
	LastCheck     time.Time `json:"last_check"`
	GPUAvailable  bool      `json:"gpu_available"`

	TotalProcessed int64         `json:"total_processed"`
	TotalSuccess   int64         `json:"total_success"`
	TotalErrors    int64         `json:"total_errors"`
	TotalRejected  int64         `json:"total_rejected"`
	SuccessRate    float64       `json:"success_rate"`
	AvgDuration    time.Duration `json:"avg_duration_ns"`
}

// handleAPIStatus handles GET /api/status.
func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// The metrics store is optional; without one the backend fields are
	// still reported and the counters stay zero.
	var status metrics.SystemStatus
	var stats metrics.GenerationStats
	if s.store != nil {
		status = s.store.GetSystemStatus()
		stats = s.store.GetGenerationStats()
	} else {
		status.Health = "running"
		status.LastCheck = time.Now()
	}

	gpuAvail := false
	if s.gpu != nil {
		gpuAvail = s.gpu.IsAvailable()
	}

	s.writeJSON(w, http.StatusOK, StatusResponse{
		Health:         status.Health,
		Version:        s.version,
		Mode:           s.mode,
		Model:          s.backend.ModelID(),
		Device:         string(s.backend.Device()),
		PipelineState:  s.backend.State().String(),
		Uptime:         status.Uptime.Round(time.Second).String(),
		UptimeSecs:     status.Uptime.Seconds(),
		LastCheck:      status.LastCheck,
		GPUAvailable:   gpuAvail,
		TotalProcessed: stats.TotalProcessed,
		TotalSuccess:   stats.TotalSuccess,
		TotalErrors:    stats.TotalErrors,
		TotalRejected:  stats.TotalRejected,
		SuccessRate:    stats.SuccessRate,
		AvgDuration:    stats.AvgDuration,
	})
}

// HistoryEntry is one record in the /api/history response. The shape is
// shared between the persistent table and the in-memory fallback.
type HistoryEntry struct {
	RequestID     string    `json:"request_id"`
	Status        string    `json:"status"`
	PromptChars   int       `json:"prompt_chars"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Steps         int       `json:"steps"`
	GuidanceScale float64   `json:"guidance_scale"`
	Seed          int64     `json:"seed"`
	Device        string    `json:"device,omitempty"`
	DurationMS    int       `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
	Count   int            `json:"count"`
	Limit   int            `json:"limit"`
}

// handleAPIHistory handles GET /api/history requests.
// Query parameters:
//   - limit: number of records to return (default 20, max 100)
//
// When the history database is disabled, recent in-memory records are
// served instead so the viewer still has something to show.
func (s *Server) handleAPIHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	var entries []HistoryEntry

	if s.history != nil {
		records, err := s.history.QueryRecentHistory(r.Context(), limit)
		if err != nil {
			s.logger.Error("Failed to query generation history", zap.Error(err))
			s.writeDetail(w, http.StatusInternalServerError, "internal server error")
			return
		}
		entries = make([]HistoryEntry, len(records))
		for i, rec := range records {
			entries[i] = historyEntryFromDB(rec)
		}
	} else if s.store != nil {
		records := s.store.GetRecentGenerations(limit)
		entries = make([]HistoryEntry, len(records))
		for i, rec := range records {
			entries[i] = historyEntryFromMetrics(rec)
		}
	}

	s.writeJSON(w, http.StatusOK, HistoryResponse{
		History: entries,
		Count:   len(entries),
		Limit:   limit,
	})
}

func historyEntryFromDB(rec db.HistoryRecord) HistoryEntry {
	return HistoryEntry{
		RequestID:     rec.RequestID,
		Status:        rec.Status,
		PromptChars:   rec.PromptChars,
		Width:         rec.Width,
		Height:        rec.Height,
		Steps:         rec.Steps,
		GuidanceScale: rec.GuidanceScale,
		Seed:          rec.Seed,
		Device:        rec.Device,
		DurationMS:    rec.DurationMS,
		CreatedAt:     rec.CreatedAt,
	}
}

func historyEntryFromMetrics(rec metrics.GenerationRecord) HistoryEntry {
	return HistoryEntry{
		RequestID:     rec.ID,
		Status:        rec.Status,
		PromptChars:   rec.PromptChars,
		Width:         rec.Width,
		Height:        rec.Height,
		Steps:         rec.Steps,
		GuidanceScale: rec.GuidanceScale,
		Seed:          rec.Seed,
		Device:        rec.Device,
		DurationMS:    int(rec.Duration.Milliseconds()),
		CreatedAt:     rec.StartTime,
	}
}

// GPUResponse is the body of GET /api/gpu.
type GPUResponse struct {
	Available   bool                 `json:"available"`
	Current     *metrics.GPUMetrics  `json:"current,omitempty"`
	History     []metrics.GPUMetrics `json:"history,omitempty"`
	HistorySize int                  `json:"history_size,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// handleAPIGPU handles GET /api/gpu requests.
// Query parameters:
//   - history: number of historical samples to include (default 0)
func (s *Server) handleAPIGPU(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.gpu == nil {
		s.writeJSON(w, http.StatusOK, GPUResponse{
			Available: false,
			Error:     "GPU monitoring not configured",
		})
		return
	}

	response := GPUResponse{Available: s.gpu.IsAvailable()}

	if response.Available {
		current := s.gpu.GetCurrentMetrics()
		response.Current = &current

		if historyStr := r.URL.Query().Get("history"); historyStr != "" {
			if n, err := strconv.Atoi(historyStr); err == nil && n > 0 {
				response.History = s.gpu.GetHistory(n)
				response.HistorySize = len(response.History)
			}
		}
	} else if err := s.gpu.GetLastError(); err != nil {
		response.Error = err.Error()
	}

	s.writeJSON(w, http.StatusOK, response)
}
