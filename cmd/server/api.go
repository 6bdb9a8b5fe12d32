package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/p-n-ai/pai-quiz/internal/apperr"
	"github.com/p-n-ai/pai-quiz/internal/assessment"
	"github.com/p-n-ai/pai-quiz/internal/progression"
)

const maxBodyBytes = 1 << 20

// newMux creates the HTTP router: health checks, metrics, the score feed and
// the assessment API.
func newMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", a.handleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())
	if a.hub != nil {
		mux.Handle("GET /ws/scores", a.hub)
	}

	mux.HandleFunc("POST /v1/items/sample", a.handleSampleItems)
	mux.HandleFunc("POST /v1/answers/check", a.handleCheckAnswer)
	mux.HandleFunc("POST /v1/cases/pick", a.handlePickCase)
	mux.HandleFunc("POST /v1/batches", a.handleSubmitBatch)
	mux.HandleFunc("POST /v1/quizzes", a.handleSubmitQuiz)
	mux.HandleFunc("GET /v1/learners/{learnerID}/progress", a.handleProgress)
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (a *app) handleReadyz(w http.ResponseWriter, r *http.Request) {
	failed, err := a.ready(r.Context())
	if err != nil {
		slog.Warn("readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "failed": failed})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func (a *app) handleSampleItems(w http.ResponseWriter, r *http.Request) {
	var req assessment.SampleRequest
	if !decode(w, r, &req) {
		return
	}
	items, err := a.svc.SampleItems(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type checkAnswerRequest struct {
	ItemID   string `json:"item_id"`
	Token    string `json:"sealed_answer"`
	OptionID string `json:"option_id"`
}

func (a *app) handleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	var req checkAnswerRequest
	if !decode(w, r, &req) {
		return
	}
	ok, err := a.svc.CheckAnswer(req.ItemID, req.Token, req.OptionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"correct": ok})
}

func (a *app) handlePickCase(w http.ResponseWriter, r *http.Request) {
	var req assessment.CaseRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := a.svc.PickCase(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"case": c})
}

func (a *app) handleSubmitBatch(w http.ResponseWriter, r *http.Request) {
	var req assessment.SubmitRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := a.svc.SubmitBatch(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *app) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req assessment.QuizRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := a.svc.SubmitQuiz(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *app) handleProgress(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Progress(r.Context(), r.PathValue("learnerID"), r.URL.Query().Get("track"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// writeError maps an error class to a status code. Only unclassified errors are logged.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperr.IsValidation(err):
		status = http.StatusBadRequest
	case apperr.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, progression.ErrVersionConflict):
		status = http.StatusConflict
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}
