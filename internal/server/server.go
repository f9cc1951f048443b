package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"transformline/internal/businesscase"
	"transformline/internal/domain"
	"transformline/internal/engine"
	"transformline/internal/finance"
	"transformline/internal/orchestrator"
	"transformline/internal/readiness"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   *engine.Engine
	BasePath string
	Auth     AuthConfig
	Logger   zerolog.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"not_found"`
	Message string         `json:"message" example:"transformation not found"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true" example:"{\"id\":\"0b6f\"}"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

type output[T any] struct {
	Body T
}

func ok[T any](v T) *output[T] {
	return &output[T]{Body: v}
}

// New returns an HTTP handler exposing the transformation API.
func New(cfg Config) (http.Handler, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(cfg.Logger))
	router.Use(middleware.Recoverer)
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Transformline API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	e := cfg.Engine
	registerDocs(router, basePath)
	registerHealth(group, e)
	registerProjections(group, e)
	registerAssessments(group, e)
	registerBusinessCases(group, e)
	registerTransformations(group, e)
	registerEvents(group, e)
	registerOpenAPI(router, api, basePath, cfg.Auth.enabled())

	return router, nil
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case engine.IsNotFound(err):
		return newAPIError(http.StatusNotFound, "not_found", msg, nil)
	case errors.Is(err, orchestrator.ErrFinalPhase):
		return newAPIError(http.StatusConflict, "final_phase", msg, nil)
	case engine.IsInvalid(err):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string, secured bool) {
	var (
		once sync.Once
		doc  []byte
	)
	docPath := path.Join(basePath, "openapi.json")
	r.Get(docPath, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			if secured {
				applyAuthSecurity(oas, basePath)
			}
			doc, _ = json.Marshal(oas)
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(doc)
	})
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	for _, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{Ref: "#/components/schemas/ApiError"},
					},
				},
			}
		}
	}
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{{"bearerAuth": {}}}
	oas.Security = security
	healthPath := path.Join("/", basePath, "health")
	for route, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if route == healthPath {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func swaggerHTML(basePath string) string {
	docURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Transformline API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, docURL)
}

type healthResponse struct {
	Status string `json:"status" enum:"ok,migration_pending"`
	engine.SchemaStatus
}

func registerHealth(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check with the workspace schema version",
	}, func(ctx context.Context, _ *struct{}) (*output[healthResponse], error) {
		schema, err := e.Schema(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		resp := healthResponse{Status: "ok", SchemaStatus: schema}
		if !schema.Current() {
			resp.Status = "migration_pending"
		}
		return ok(resp), nil
	})
}

func registerProjections(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "create-projection",
		Method:      http.MethodPost,
		Path:        "/projections",
		Summary:     "Project cash flows, NPV, ROI, payback and IRR",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body ProjectionRequest
	}) (*output[finance.Projection], error) {
		p, err := e.Project(input.Body.toEngine())
		if err != nil {
			return nil, handleError(err)
		}
		return ok(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-sensitivity",
		Method:      http.MethodPost,
		Path:        "/projections/sensitivity",
		Summary:     "Rerun a projection under scenarios and a variable sweep",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body ProjectionRequest
	}) (*output[finance.SensitivityReport], error) {
		r, err := e.Sensitivity(input.Body.toEngine())
		if err != nil {
			return nil, handleError(err)
		}
		return ok(r), nil
	})
}

func registerAssessments(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-questions",
		Method:      http.MethodGet,
		Path:        "/questions",
		Summary:     "Readiness questionnaire",
	}, func(ctx context.Context, _ *struct{}) (*output[[]readiness.Question], error) {
		return ok(e.Assessor.Questions()), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-assessment",
		Method:        http.MethodPost,
		Path:          "/assessments",
		Summary:       "Score a readiness questionnaire",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body AssessmentRequest
	}) (*output[engine.Assessment], error) {
		a, err := e.Assess(ctx, engine.AssessOptions{
			Organization: input.Body.Organization,
			Industry:     input.Body.Industry,
			Responses:    input.Body.Responses,
			ActorID:      actorID(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return ok(a), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-assessments",
		Method:      http.MethodGet,
		Path:        "/assessments",
		Summary:     "List assessments",
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"50"`
	}) (*output[paginatedAssessments], error) {
		items, err := e.ListAssessments(ctx, normalizeLimit(input.Limit))
		if err != nil {
			return nil, handleError(err)
		}
		return ok(paginatedAssessments{Items: nonNilSlice(items)}), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-assessment",
		Method:      http.MethodGet,
		Path:        "/assessments/{id}",
		Summary:     "Get assessment",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*output[engine.Assessment], error) {
		a, err := e.GetAssessment(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return ok(a), nil
	})
}

func registerBusinessCases(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-business-case",
		Method:        http.MethodPost,
		Path:          "/business-cases",
		Summary:       "Generate a business case",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body BusinessCaseRequest
	}) (*output[engine.StoredCase], error) {
		c, err := e.GenerateCase(ctx, engine.CaseOptions{
			Request: input.Body.toRequest(),
			PlanID:  input.Body.PlanID,
			ActorID: actorID(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return ok(c), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "preview-presentation",
		Method:      http.MethodPost,
		Path:        "/business-cases/presentation",
		Summary:     "Generate an executive presentation without storing the case",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body BusinessCaseRequest
	}) (*output[businesscase.Presentation], error) {
		c, err := e.Cases.Generate(input.Body.toRequest())
		if err != nil {
			return nil, handleError(err)
		}
		return ok(e.Cases.Presentation(c)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-business-cases",
		Method:      http.MethodGet,
		Path:        "/business-cases",
		Summary:     "List business cases",
	}, func(ctx context.Context, input *struct {
		PlanID string `query:"plan_id"`
		Limit  int    `query:"limit" default:"50"`
	}) (*output[paginatedCases], error) {
		items, err := e.ListCases(ctx, input.PlanID, normalizeLimit(input.Limit))
		if err != nil {
			return nil, handleError(err)
		}
		return ok(paginatedCases{Items: nonNilSlice(items)}), nil
	})

	type casePath struct {
		ID string `path:"id"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-business-case",
		Method:      http.MethodGet,
		Path:        "/business-cases/{id}",
		Summary:     "Get business case",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *casePath) (*output[businesscase.Case], error) {
		c, err := e.GetCase(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return ok(c), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-business-case-presentation",
		Method:      http.MethodGet,
		Path:        "/business-cases/{id}/presentation",
		Summary:     "Executive presentation of a stored case",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *casePath) (*output[businesscase.Presentation], error) {
		p, err := e.PresentCase(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return ok(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-business-case-sensitivity",
		Method:      http.MethodGet,
		Path:        "/business-cases/{id}/sensitivity",
		Summary:     "Sensitivity analysis of a stored case",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *casePath) (*output[finance.SensitivityReport], error) {
		r, err := e.CaseSensitivity(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return ok(r), nil
	})
}

func registerTransformations(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-transformation",
		Method:        http.MethodPost,
		Path:          "/transformations",
		Summary:       "Initialize a transformation plan",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateTransformationRequest
	}) (*output[orchestrator.Plan], error) {
		p, err := e.InitTransformation(ctx, engine.TransformOptions{
			Profile: input.Body.profile(),
			Target:  orchestrator.MaturityLevel(input.Body.TargetMaturity),
			ActorID: actorID(ctx),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return ok(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-transformations",
		Method:      http.MethodGet,
		Path:        "/transformations",
		Summary:     "List transformation plans",
	}, func(ctx context.Context, _ *struct{}) (*output[paginatedPlans], error) {
		items, err := e.ListPlans(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return ok(paginatedPlans{Items: nonNilSlice(items)}), nil
	})

	type planPath struct {
		ID string `path:"id"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-transformation",
		Method:      http.MethodGet,
		Path:        "/transformations/{id}",
		Summary:     "Get transformation plan",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *planPath) (*output[orchestrator.Plan], error) {
		p, err := e.GetPlan(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return ok(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assess-transformation",
		Method:      http.MethodPost,
		Path:        "/transformations/{id}/readiness",
		Summary:     "Assess organizational readiness",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string            `path:"id"`
		Body *ReadinessRequest `required:"false"`
	}) (*output[orchestrator.Readiness], error) {
		var assessmentID string
		if input.Body != nil {
			assessmentID = input.Body.AssessmentID
		}
		r, err := e.AssessTransformation(ctx, input.ID, assessmentID, actorID(ctx))
		if err != nil {
			return nil, handleError(err)
		}
		return ok(r), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-transformation-roadmap",
		Method:      http.MethodGet,
		Path:        "/transformations/{id}/roadmap",
		Summary:     "Phased transformation roadmap",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *planPath) (*output[[]orchestrator.RoadmapPhase], error) {
		r, err := e.Roadmap(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return ok(r), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-transformation-progress",
		Method:      http.MethodGet,
		Path:        "/transformations/{id}/progress",
		Summary:     "Track transformation progress",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *planPath) (*output[orchestrator.Progress], error) {
		p, err := e.Progress(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return ok(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "advance-transformation",
		Method:      http.MethodPost,
		Path:        "/transformations/{id}/advance",
		Summary:     "Move the plan into its next phase",
		Errors:      []int{http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *planPath) (*output[orchestrator.Plan], error) {
		p, err := e.Advance(ctx, input.ID, actorID(ctx))
		if err != nil {
			return nil, handleError(err)
		}
		return ok(p), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-transformation-target",
		Method:      http.MethodPut,
		Path:        "/transformations/{id}/target",
		Summary:     "Change the target maturity level",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body SetTargetRequest
	}) (*output[orchestrator.Plan], error) {
		p, err := e.SetTarget(ctx, input.ID, orchestrator.MaturityLevel(input.Body.TargetMaturity), actorID(ctx))
		if err != nil {
			return nil, handleError(err)
		}
		return ok(p), nil
	})
}

func registerEvents(api huma.API, e *engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "List recent events",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Type       string `query:"type"`
		EntityKind string `query:"entity_kind" enum:"transformation,assessment,business_case"`
		EntityID   string `query:"entity_id"`
		Limit      int    `query:"limit" default:"50"`
		Cursor     string `query:"cursor"`
	}) (*output[paginatedEvents], error) {
		limit := normalizeLimit(input.Limit)
		var cursorID int64
		if input.Cursor != "" {
			parsed, err := strconv.ParseInt(input.Cursor, 10, 64)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid cursor", map[string]any{"cursor": input.Cursor})
			}
			cursorID = parsed
		}
		items, err := e.ListEvents(ctx, domain.EventFilter{
			Type:       input.Type,
			EntityKind: input.EntityKind,
			EntityID:   input.EntityID,
			Limit:      limit + 1,
			Cursor:     cursorID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		resp := paginatedEvents{Items: []EventResponse{}}
		if len(items) > limit {
			// the cursor is exclusive, so it points at the last returned event
			resp.NextCursor = fmt.Sprintf("%d", items[limit-1].ID)
			items = items[:limit]
		}
		for _, evt := range items {
			resp.Items = append(resp.Items, eventResponse(evt))
		}
		return ok(resp), nil
	})
}

func normalizeLimit(in int) int {
	if in <= 0 {
		return 50
	}
	if in > 200 {
		return 200
	}
	return in
}
