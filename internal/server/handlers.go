package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/common"
	"github.com/caselaw/casestrainer/internal/pipeline"
	"github.com/caselaw/casestrainer/internal/queue"
	"github.com/caselaw/casestrainer/internal/store"
)

// validate runs struct-tag validation against decoded /analyze request
// bodies. A single instance is reused across requests; per the
// validator docs it is safe for concurrent use once its struct cache is
// warm.
var validate = validator.New()

var (
	errRequestTooLarge        = errors.New("request body exceeds the configured upload limit")
	errMissingFile            = errors.New(`multipart request must include a "file" part`)
	errMalformedJSON          = errors.New("malformed JSON body")
	errUnknownRequestType     = errors.New(`type must be "text" or "url"`)
	errUnsupportedContentType = errors.New("unsupported Content-Type")
)

// analyzeRequestJSON mirrors the two JSON-bodied POST /analyze input
// shapes (spec §6.1): {"type":"text",...} and {"type":"url",...}.
type analyzeRequestJSON struct {
	Type      string `json:"type" validate:"required,oneof=text url"`
	Text      string `json:"text"`
	URL       string `json:"url"`
	ForceMode string `json:"force_mode" validate:"omitempty,oneof=sync async"`
}

// AnalyzeHandler decodes exactly one of a JSON text/url body or a
// multipart file upload, dispatches it (spec §4.1), and either runs the
// pipeline inline or enqueues a Job.
func (s *Server) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}

	req, err := decodeAnalyzeRequest(w, r, s.app.Config.Pipeline.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, errRequestTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "input_error", err.Error())
		return
	}

	ctx := r.Context()
	decision, err := pipeline.Dispatch(ctx, req, s.app.Config)
	if err != nil {
		writeTypedError(w, err)
		return
	}

	if decision.Mode == pipeline.ModeQueued {
		s.enqueueJob(ctx, w, decision.Input)
		return
	}

	text, err := pipeline.DecodeInput(ctx, decision.Input, s.app.Config)
	if err != nil {
		writeTypedError(w, err)
		return
	}

	result, err := s.app.Pipeline.Run(ctx, text, func() bool { return false }, nil)
	if err != nil {
		writeTypedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":   "immediate",
		"result": result,
	})
}

func (s *Server) enqueueJob(ctx context.Context, w http.ResponseWriter, input citation.JobInput) {
	job := &citation.Job{
		ID:         common.NewJobID(),
		Status:     citation.JobStatusQueued,
		Phase:      citation.JobPhaseInitializing,
		EnqueuedAt: time.Now().UTC(),
		Input:      input,
	}

	if err := s.app.Store.SaveJob(job); err != nil {
		s.app.Logger.Error().Err(err).Msg("Failed to persist new job")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create job")
		return
	}
	if err := s.app.Queue.Enqueue(ctx, queue.Message{JobID: job.ID}); err != nil {
		s.app.Logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to enqueue job")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to enqueue job")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"mode":    "queued",
		"task_id": job.ID,
	})
}

// TaskStatusHandler implements GET /task_status/{task_id} (spec §6.1).
func (s *Server) TaskStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required")
		return
	}

	taskID := strings.TrimPrefix(r.URL.Path, "/task_status/")
	if taskID == "" {
		writeError(w, http.StatusBadRequest, "input_error", "task_id is required")
		return
	}

	job, err := s.app.Store.GetJob(taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "task not found or expired")
			return
		}
		s.app.Logger.Error().Err(err).Str("job_id", taskID).Msg("Failed to read job")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to read task status")
		return
	}

	body := map[string]any{
		"status":       job.Status,
		"phase":        job.Phase,
		"percent":      job.Percent,
		"heartbeat_at": job.HeartbeatAt,
	}
	if job.ResultID != "" {
		body["result_id"] = job.ResultID
	}
	if job.Error != "" {
		body["error"] = job.Error
	}
	writeJSON(w, http.StatusOK, body)
}

// ResultHandler implements GET /result/{result_id} (spec §6.1).
func (s *Server) ResultHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required")
		return
	}

	resultID := strings.TrimPrefix(r.URL.Path, "/result/")
	if resultID == "" {
		writeError(w, http.StatusBadRequest, "input_error", "result_id is required")
		return
	}

	result, err := s.app.Store.GetResult(resultID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "result not found or expired")
			return
		}
		s.app.Logger.Error().Err(err).Str("result_id", resultID).Msg("Failed to read result")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to read result")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HealthHandler implements GET /health (spec §6.1).
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": common.GetVersion(),
	})
}

// decodeAnalyzeRequest reads either a multipart/form-data file upload
// or a JSON text/url body into a pipeline.Request, enforcing
// maxUploadBytes on the request body either way.
func decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request, maxUploadBytes int64) (pipeline.Request, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		return decodeMultipartAnalyzeRequest(r, maxUploadBytes)
	case strings.HasPrefix(contentType, "application/json"), contentType == "":
		return decodeJSONAnalyzeRequest(r)
	default:
		return pipeline.Request{}, errUnsupportedContentType
	}
}

func decodeMultipartAnalyzeRequest(r *http.Request, maxUploadBytes int64) (pipeline.Request, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if isRequestTooLarge(err) {
			return pipeline.Request{}, errRequestTooLarge
		}
		return pipeline.Request{}, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return pipeline.Request{}, errMissingFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if isRequestTooLarge(err) {
			return pipeline.Request{}, errRequestTooLarge
		}
		return pipeline.Request{}, err
	}

	mimeType := header.Header.Get("Content-Type")
	return pipeline.Request{
		FileName:  header.Filename,
		FileData:  data,
		MIMEType:  mimeType,
		ForceMode: r.FormValue("force_mode"),
	}, nil
}

func decodeJSONAnalyzeRequest(r *http.Request) (pipeline.Request, error) {
	var body analyzeRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if isRequestTooLarge(err) {
			return pipeline.Request{}, errRequestTooLarge
		}
		return pipeline.Request{}, errMalformedJSON
	}

	if err := validate.Struct(body); err != nil {
		return pipeline.Request{}, errUnknownRequestType
	}

	switch body.Type {
	case "text":
		return pipeline.Request{Text: body.Text, ForceMode: body.ForceMode}, nil
	case "url":
		return pipeline.Request{URL: body.URL, ForceMode: body.ForceMode}, nil
	default:
		return pipeline.Request{}, errUnknownRequestType
	}
}

func isRequestTooLarge(err error) bool {
	return err != nil && strings.Contains(err.Error(), "http: request body too large")
}
