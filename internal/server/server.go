package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"taskboard/internal/domain"
	"taskboard/internal/identity"
	"taskboard/internal/service"
)

const apiVersion = "1.0.0"

// Config for the HTTP API handler.
type Config struct {
	Services      service.Services
	ServiceKey    identity.ServiceKey
	BasePath      string
	AllowedOrigin string
	Logger        zerolog.Logger
}

// apiError is the failure half of the response envelope.
type apiError struct {
	status  int
	Success bool     `json:"success"`
	Message string   `json:"message" example:"Task not found"`
	Errors  []string `json:"errors,omitempty"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Message }

// New returns an HTTP handler exposing the taskboard API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Services.Tasks == nil || cfg.Services.Employees == nil || cfg.Services.Auth == nil {
		return nil, errors.New("services required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, msg, errs...)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		// Schema and decoding failures are client errors like any other bad input.
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		return newAPIError(status, msg, errs...)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(hlog.NewHandler(cfg.Logger))
	router.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	router.Use(middleware.Recoverer)
	router.Use(corsMiddleware(cfg.AllowedOrigin))
	router.Use(captureBody)
	router.Use(newAuthMiddleware(cfg.Services.Auth, cfg.ServiceKey))

	hcfg := huma.DefaultConfig("Taskboard API", apiVersion)
	hcfg.OpenAPIPath = ""
	hcfg.DocsPath = "" // served by registerDocs
	hcfg.SchemasPath = ""
	hcfg.CreateHooks = nil
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(api)
	registerAuth(group, cfg.Services.Auth)
	registerTasks(group, cfg.Services.Tasks)
	registerEmployees(group, cfg.Services)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, message string, errs ...error) huma.StatusError {
	e := &apiError{status: status, Message: message}
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err.Error())
		}
	}
	return e
}

// handleError maps domain errors onto HTTP statuses. Unclassified errors are logged and
// reported as 500 without details.
func handleError(ctx context.Context, err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var (
		ve  domain.ValidationError
		nf  domain.NotFoundError
		aue domain.AuthenticationError
		aze domain.AuthorizationError
	)
	switch {
	case errors.As(err, &ve):
		return newAPIError(http.StatusBadRequest, ve.Message)
	case errors.As(err, &nf):
		return newAPIError(http.StatusNotFound, nf.Error())
	case errors.As(err, &aue):
		return newAPIError(http.StatusUnauthorized, aue.Error())
	case errors.As(err, &aze):
		return newAPIError(http.StatusForbidden, aze.Error())
	default:
		zerolog.Ctx(ctx).Error().Err(err).Msg("request failed")
		return newAPIError(http.StatusInternalServerError, "internal error")
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"system"},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body HealthResponse `json:"body"`
	}, error) {
		return &struct {
			Body HealthResponse `json:"body"`
		}{Body: HealthResponse{Status: "ok", Message: "Server running"}}, nil
	})
}
