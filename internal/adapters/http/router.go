package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	sessions ports.SessionManager
	ingest   ports.DocumentIngestor
	ask      ports.QuestionService
	docs     ports.DocumentRepository
	history  ports.SessionRepository

	metrics        *metrics.HTTPServerMetrics
	historyLimit   int
	rateLimitRPS   float64
	rateLimitBurst int
}

type RouterOptions struct {
	HistoryLimit   int
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(
	sessions ports.SessionManager,
	ingest ports.DocumentIngestor,
	ask ports.QuestionService,
	docs ports.DocumentRepository,
	history ports.SessionRepository,
	m *metrics.HTTPServerMetrics,
	options RouterOptions,
) *Router {
	if options.HistoryLimit <= 0 {
		options.HistoryLimit = 10
	}
	return &Router{
		sessions:       sessions,
		ingest:         ingest,
		ask:            ask,
		docs:           docs,
		history:        history,
		metrics:        m,
		historyLimit:   options.HistoryLimit,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/sessions", rt.createSession)
	mux.HandleFunc("GET /v1/sessions/{id}", rt.getSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", rt.deleteSession)
	mux.HandleFunc("POST /v1/sessions/{id}/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/sessions/{id}/documents", rt.listDocuments)
	mux.HandleFunc("POST /v1/sessions/{id}/ask", rt.askQuestion)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocumentByID)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	session, err := rt.sessions.Create(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := rt.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := rt.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(
		r.Context(),
		r.PathValue("id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordUpload(serviceName, "error", fileHeader.Size)
		}
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, "accepted", fileHeader.Size)
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if _, err := rt.sessions.Get(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}

	docs, err := rt.docs.ListBySession(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) askQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	if _, err := rt.sessions.Get(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}

	history, err := rt.history.ListRecentMessages(r.Context(), sessionID, rt.historyLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	started := time.Now()
	answer, err := rt.ask.Ask(r.Context(), sessionID, req.Question, history)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordQuestion(serviceName, "error", 0, false, time.Since(started))
		}
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordQuestion(serviceName, "success", len(answer.Citations), answer.Warning != "", time.Since(started))
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.docs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
