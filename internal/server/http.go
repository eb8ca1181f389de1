package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
	"github.com/sentiric/sentiric-contact-resolver/internal/l10n"
	"github.com/sentiric/sentiric-contact-resolver/internal/logger"
	"github.com/sentiric/sentiric-contact-resolver/internal/resolver"
)

const traceHeader = "X-Trace-Id"

// Handler serves the resolver over HTTP.
type Handler struct {
	resolver *resolver.Resolver
	bundle   *l10n.Bundle
	log      zerolog.Logger
	timeout  time.Duration
}

// NewHandler builds the HTTP handler. timeout bounds each resolution; zero
// leaves it to the client connection.
func NewHandler(res *resolver.Resolver, bundle *l10n.Bundle, timeout time.Duration, log zerolog.Logger) *Handler {
	return &Handler{resolver: res, bundle: bundle, timeout: timeout, log: log}
}

// Routes mounts every endpoint. gatherer backs /metrics.
func (h *Handler) Routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(traceID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/contacts", h.handleFindContacts)
		r.Get("/participants/name", h.handleParticipantName)
	})
	return r
}

// NewHTTPServer builds an http.Server with the defaults used across services.
func NewHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

type recordResponse struct {
	ID          string            `json:"id"`
	PrimaryInfo string            `json:"primary_info"`
	Name        []directory.Entry `json:"name,omitempty"`
	Email       []directory.Entry `json:"email,omitempty"`
	Tel         []directory.Entry `json:"tel,omitempty"`
}

type findResponse struct {
	IDs     []string         `json:"ids"`
	Records []recordResponse `json:"records"`
}

type nameResponse struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) handleFindContacts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.resolveContext(r.Context())
	defer cancel()
	l := logger.ContextLogger(ctx, h.log)

	query := r.URL.Query()
	q := &resolver.IdentityQuery{
		ContactID:  query.Get("contact_id"),
		Identities: query["identity"],
	}
	l.Debug().
		Str("event", logger.EventHttpRequest).
		Dict("attributes", zerolog.Dict().
			Str("path", r.URL.Path).
			Str("contact_id", q.ContactID).
			Int("identities", len(q.Identities))).
		Msg("Kişi çözümleme isteği alındı")

	res, err := h.resolver.Find(ctx, q)
	if err != nil {
		writeError(w, err)
		return
	}

	loc := h.localizer(r)
	resp := findResponse{IDs: res.IDs, Records: make([]recordResponse, 0, len(res.Records))}
	for _, rec := range res.Records {
		resp.Records = append(resp.Records, recordResponse{
			ID:          rec.ID,
			PrimaryInfo: resolver.PrettyPrimaryInfo(rec, loc),
			Name:        rec.Name,
			Email:       rec.Email,
			Tel:         rec.Tel,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleParticipantName(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.resolveContext(r.Context())
	defer cancel()

	query := r.URL.Query()
	p := resolver.Participant{
		DisplayName: query.Get("display_name"),
		Account:     query.Get("account"),
	}
	name := h.resolver.ParticipantName(ctx, p, h.localizer(r))
	writeJSON(w, http.StatusOK, nameResponse{Name: name})
}

func (h *Handler) resolveContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func (h *Handler) localizer(r *http.Request) l10n.Localizer {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return h.bundle.For(lang)
	}
	return h.bundle.For(r.Header.Get("Accept-Language"))
}

func traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(traceHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(traceHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithTraceID(r.Context(), id)))
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, resolver.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_input", Message: err.Error()})
	case errors.Is(err, resolver.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, resolver.ErrDirectoryFailure):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "directory_failure", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
