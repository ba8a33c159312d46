package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	poiservice "postcard/contexts/content-pipeline/poi-service"
	poierrors "postcard/contexts/content-pipeline/poi-service/domain/errors"
	poihttp "postcard/contexts/content-pipeline/poi-service/transport/http"
	renderorchestrator "postcard/contexts/content-pipeline/render-orchestrator"
	rendererrors "postcard/contexts/content-pipeline/render-orchestrator/domain/errors"
	renderhttp "postcard/contexts/content-pipeline/render-orchestrator/transport/http"
	"postcard/internal/shared/workflow"

	_ "postcard/internal/platform/httpserver/docs"
)

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	health  HealthChecker
	pois    poiservice.Module
	renders renderorchestrator.Module
}

func New(
	pois poiservice.Module,
	renders renderorchestrator.Module,
	health HealthChecker,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		health:  health,
		pois:    pois,
		renders: renders,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing table for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.mux.HandleFunc("POST /pois", s.handleCreatePOI)
	s.mux.HandleFunc("GET /pois", s.handleListPOIs)
	s.mux.HandleFunc("GET /pois/{poi_id}", s.handleGetPOI)
	s.mux.HandleFunc("PATCH /pois/{poi_id}", s.handleUpdatePOI)
	s.mux.HandleFunc("POST /pois/{poi_id}/validate", s.handleValidatePOI)
	s.mux.HandleFunc("POST /pois/{poi_id}/publish", s.handlePublishPOI)
	s.mux.HandleFunc("POST /pois/{poi_id}/archive", s.handleArchivePOI)
	s.mux.HandleFunc("POST /pois/{poi_id}/revert", s.handleRevertPOI)

	s.mux.HandleFunc("GET /renders", s.handleListRenders)
	s.mux.HandleFunc("GET /renders/{job_id}", s.handleGetRender)
	s.mux.HandleFunc("GET /renders/{job_id}/scenes", s.handleListScenes)
	// Retry is keyed as /renders/retry/{job_id} while voiceover and publish
	// hang off the job id. ServeMux rejects the overlapping patterns, so one
	// registration dispatches on the path segments.
	s.mux.HandleFunc("POST /renders/{first}/{second}", s.handleRenderAction)
}

func (s *Server) handleRenderAction(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")
	if first == "retry" {
		s.handleRetryRender(w, r, second)
		return
	}
	switch second {
	case "voiceover":
		s.handleAttachVoiceover(w, r, first)
	case "publish":
		s.handlePublishVideo(w, r, first)
	default:
		writeRenderError(w, http.StatusNotFound, "unknown_action", "unknown render action")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Healthy(r.Context()); err != nil {
			s.logger.Error("health check failed",
				"event", "health_check_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err,
			)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreatePOI(w http.ResponseWriter, r *http.Request) {
	var req poihttp.CreatePOIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePOIError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.pois.Handler.CreatePOIHandler(r.Context(), req)
	if err != nil {
		writePOIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPOIs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, pageSize, ok := parsePagination(w, query.Get("page"), query.Get("page_size"), writePOIError)
	if !ok {
		return
	}
	resp, err := s.pois.Handler.ListPOIsHandler(r.Context(), query.Get("status"), page, pageSize)
	if err != nil {
		writePOIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPOI(w http.ResponseWriter, r *http.Request) {
	resp, err := s.pois.Handler.GetPOIHandler(r.Context(), r.PathValue("poi_id"))
	if err != nil {
		writePOIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdatePOI(w http.ResponseWriter, r *http.Request) {
	var req poihttp.UpdatePOIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writePOIError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.pois.Handler.UpdatePOIHandler(r.Context(), r.PathValue("poi_id"), req)
	if err != nil {
		writePOIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidatePOI(w http.ResponseWriter, r *http.Request) {
	resp, err := s.pois.Handler.ValidatePOIHandler(r.Context(), r.PathValue("poi_id"))
	if err != nil {
		writePOIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePublishPOI(w http.ResponseWriter, r *http.Request) {
	resp, err := s.pois.Handler.PublishPOIHandler(r.Context(), r.PathValue("poi_id"))
	if err != nil {
		writePOIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleArchivePOI(w http.ResponseWriter, r *http.Request) {
	resp, err := s.pois.Handler.ArchivePOIHandler(r.Context(), r.PathValue("poi_id"))
	if err != nil {
		writePOIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevertPOI(w http.ResponseWriter, r *http.Request) {
	resp, err := s.pois.Handler.RevertPOIHandler(r.Context(), r.PathValue("poi_id"))
	if err != nil {
		writePOIDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRenders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, pageSize, ok := parsePagination(w, query.Get("page"), query.Get("page_size"), writeRenderError)
	if !ok {
		return
	}
	resp, err := s.renders.Handler.ListRendersHandler(r.Context(), query.Get("poi_id"), page, pageSize)
	if err != nil {
		writeRenderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRender(w http.ResponseWriter, r *http.Request) {
	resp, err := s.renders.Handler.GetRenderHandler(r.Context(), r.PathValue("job_id"))
	if err != nil {
		writeRenderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.renders.Handler.ListScenesHandler(r.Context(), r.PathValue("job_id"))
	if err != nil {
		writeRenderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAttachVoiceover(w http.ResponseWriter, r *http.Request, jobID string) {
	var req renderhttp.AttachVoiceoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRenderError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.renders.Handler.AttachVoiceoverHandler(r.Context(), jobID, req)
	if err != nil {
		writeRenderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePublishVideo(w http.ResponseWriter, r *http.Request, jobID string) {
	resp, err := s.renders.Handler.PublishVideoHandler(r.Context(), jobID)
	if err != nil {
		writeRenderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetryRender(w http.ResponseWriter, r *http.Request, jobID string) {
	resp, err := s.renders.Handler.RetryRenderHandler(r.Context(), jobID)
	if err != nil {
		writeRenderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writePOIDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, poierrors.ErrPOINotFound):
		writePOIError(w, http.StatusNotFound, "poi_not_found", err.Error())
	case errors.Is(err, workflow.ErrTransitionDenied):
		writePOIError(w, http.StatusConflict, "transition_denied", err.Error())
	case errors.Is(err, poierrors.ErrInvalidCoordinates):
		writePOIError(w, http.StatusBadRequest, "invalid_coordinates", err.Error())
	case errors.Is(err, poierrors.ErrInvalidPOIInput):
		writePOIError(w, http.StatusBadRequest, "invalid_poi_input", err.Error())
	case errors.Is(err, poierrors.ErrInvalidListFilter):
		writePOIError(w, http.StatusBadRequest, "invalid_list_filter", err.Error())
	default:
		writePOIError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRenderDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rendererrors.ErrRenderNotFound):
		writeRenderError(w, http.StatusNotFound, "render_not_found", err.Error())
	case errors.Is(err, rendererrors.ErrJobNotPublishable):
		writeRenderError(w, http.StatusConflict, "job_not_publishable", err.Error())
	case errors.Is(err, workflow.ErrTransitionDenied):
		writeRenderError(w, http.StatusConflict, "transition_denied", err.Error())
	case errors.Is(err, rendererrors.ErrInvalidScriptEvent):
		writeRenderError(w, http.StatusBadRequest, "invalid_script_event", err.Error())
	case errors.Is(err, rendererrors.ErrInvalidListFilter):
		writeRenderError(w, http.StatusBadRequest, "invalid_list_filter", err.Error())
	default:
		writeRenderError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePOIError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, poihttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeRenderError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, renderhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parsePagination(
	w http.ResponseWriter,
	pageRaw string,
	pageSizeRaw string,
	writeError func(http.ResponseWriter, int, string, string),
) (int, int, bool) {
	page := 0
	pageSize := 0
	if pageRaw != "" {
		parsed, err := strconv.Atoi(pageRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_page", "page must be an integer")
			return 0, 0, false
		}
		page = parsed
	}
	if pageSizeRaw != "" {
		parsed, err := strconv.Atoi(pageSizeRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_page_size", "page_size must be an integer")
			return 0, 0, false
		}
		pageSize = parsed
	}
	return page, pageSize, true
}
