package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	"vision_backend/db"
	"vision_backend/logging"
	"vision_backend/metrics"
	"vision_backend/sdruntime"
	"vision_backend/server/static"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK         bool   `json:"ok"`
	Mode       string `json:"mode"`
	ModelImage string `json:"model_image"`
}

// GenerateResponse is the success body of POST /generate.
type GenerateResponse struct {
	OK        bool   `json:"ok"`
	Mode      string `json:"mode"`
	Model     string `json:"model"`
	PNGBase64 string `json:"png_base64"`
}

// DetailResponse is the error body for all non-2xx responses.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// handleHealth handles GET /health. Always 200, regardless of mode or
// pipeline state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{
		OK:         true,
		Mode:       s.mode,
		ModelImage: s.modelImage,
	})
}

// handleGenerate handles POST /generate: decode, validate, run one
// generation, encode the result. The mode gate runs before anything else
// so a misconfigured process rejects every request identically.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	requestID := uuid.New().String()
	logger := s.logger.With(zap.String("request_id", requestID))

	if s.mode != "local" {
		logger.Warn("Generation rejected, non-local mode",
			zap.String("mode", s.mode),
			zap.String("error_kind", KindConfiguration.String()),
		)
		s.writeDetail(w, KindConfiguration.StatusCode(), KindConfiguration.Detail())
		return
	}

	req, err := DecodeGenerateRequest(r)
	if err != nil {
		s.rejectRequest(w, logger, requestID, sdruntime.GenerateParams{}, err)
		return
	}

	params := req.ToParams()
	if err := sdruntime.ValidateParams(params); err != nil {
		s.rejectRequest(w, logger, requestID, params, err)
		return
	}

	start := time.Now()
	var result *sdruntime.GenerateResult

	run := func(ctx context.Context) error {
		var genErr error
		result, genErr = s.backend.Generate(ctx, params)
		return genErr
	}

	if s.wrapper != nil {
		err = s.wrapper.WrapOperation(r.Context(), "generate", run)
	} else {
		err = run(r.Context())
	}

	duration := time.Since(start)

	if err != nil {
		kind := ClassifyError(err)
		logger.Error("Generation failed",
			zap.String("error_kind", kind.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		s.recordOutcome(requestID, metrics.StatusError, params, 0, duration, start, kind.String())
		s.writeDetail(w, kind.StatusCode(), kind.Detail())
		return
	}

	encoded := sdruntime.EncodeBase64(result.ImageData)

	logger.Info("Generation complete", logging.GenerationFields(logging.GenerationMetrics{
		Model:         s.backend.ModelID(),
		Device:        string(s.backend.Device()),
		Width:         result.Width,
		Height:        result.Height,
		Steps:         params.Steps,
		GuidanceScale: params.GuidanceScale,
		Seed:          result.Seed,
		PromptChars:   utf8.RuneCountInString(params.Prompt),
		Duration:      duration,
		OutputBytes:   len(result.ImageData),
	}))

	s.recordOutcome(requestID, metrics.StatusSuccess, params, result.Seed, duration, start, "")
	s.storePreview(result)

	s.writeJSON(w, http.StatusOK, GenerateResponse{
		OK:        true,
		Mode:      "local",
		Model:     s.modelImage,
		PNGBase64: encoded,
	})
}

// rejectRequest records and answers a validation failure. No inference
// is performed and the pipeline is never touched.
func (s *Server) rejectRequest(w http.ResponseWriter, logger *zap.Logger, requestID string, params sdruntime.GenerateParams, err error) {
	logger.Warn("Generation request rejected",
		zap.String("error_kind", KindValidation.String()),
		zap.Error(err),
	)
	s.recordOutcome(requestID, metrics.StatusRejected, params, 0, 0, time.Now(), err.Error())
	s.writeDetail(w, KindValidation.StatusCode(), err.Error())
}

// recordOutcome feeds the metrics store and, when history is enabled,
// the generation_history table. Only metadata is recorded.
func (s *Server) recordOutcome(requestID, status string, params sdruntime.GenerateParams, seed int64, duration time.Duration, start time.Time, errMsg string) {
	promptChars := utf8.RuneCountInString(params.Prompt)
	device := string(s.backend.Device())

	if s.store != nil {
		s.store.RecordGeneration(metrics.GenerationRecord{
			ID:            requestID,
			Status:        status,
			PromptChars:   promptChars,
			Width:         params.Width,
			Height:        params.Height,
			Steps:         params.Steps,
			GuidanceScale: params.GuidanceScale,
			Seed:          seed,
			Device:        device,
			StartTime:     start,
			EndTime:       start.Add(duration),
			Duration:      duration,
			ErrorMsg:      errMsg,
		})
		s.store.SetPipelineInfo(s.backend.State().String(), s.backend.ModelID(), device)
	}

	if s.history != nil {
		record := db.HistoryRecord{
			RequestID:     requestID,
			Status:        status,
			PromptChars:   promptChars,
			Width:         params.Width,
			Height:        params.Height,
			Steps:         params.Steps,
			GuidanceScale: params.GuidanceScale,
			Seed:          seed,
			ModelName:     s.backend.ModelID(),
			Device:        device,
			DurationMS:    int(duration.Milliseconds()),
			ErrorMessage:  errMsg,
			CreatedAt:     time.Now().UTC(),
		}
		if _, err := s.history.InsertHistory(context.Background(), record); err != nil {
			s.logger.Warn("Failed to record generation history",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
		}
	}
}

// handleViewer serves the embedded single-page viewer.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeDetail(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	page, err := static.ViewerHTML()
	if err != nil {
		s.logger.Error("Failed to load embedded viewer", zap.Error(err))
		s.writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// handleRoot redirects the bare root to the viewer.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/viewer", http.StatusTemporaryRedirect)
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already written; nothing more to do than log.
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeDetail writes an error response in the {"detail": ...} shape.
func (s *Server) writeDetail(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, DetailResponse{Detail: detail})
}
