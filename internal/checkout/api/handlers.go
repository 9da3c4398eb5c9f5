package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gr4vydemo/internal/checkout"
	"gr4vydemo/internal/common/api"
	"gr4vydemo/internal/common/events"
	"gr4vydemo/internal/common/middleware"
	"gr4vydemo/internal/gr4vy"
	"gr4vydemo/internal/presenter"
	"gr4vydemo/internal/settings"
)

// Checkout error codes
const (
	ErrCodeMissingConfiguration = "MISSING_CONFIGURATION"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeActionFailed         = "ACTION_FAILED"
)

// Handler handles checkout screen HTTP requests
type Handler struct {
	settings  *settings.Service
	runner    *checkout.Runner
	publisher events.EventPublisher
	logger    *slog.Logger
}

// NewHandler creates a new checkout handler. A nil publisher disables settings events.
func NewHandler(svc *settings.Service, runner *checkout.Runner, publisher events.EventPublisher, logger *slog.Logger) *Handler {
	return &Handler{
		settings:  svc,
		runner:    runner,
		publisher: publisher,
		logger:    logger,
	}
}

// Routes returns the checkout API routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/actions", h.ListActions)
	r.Post("/actions/{screen}", h.RunAction)

	r.Get("/settings", h.ListSettings)
	r.Get("/settings/admin", h.GetAdmin)
	r.Put("/settings/admin", h.SaveAdmin)

	r.Get("/forms/{screen}", h.GetForm)
	r.Put("/forms/{screen}", h.SaveForm)

	return r
}

// ActionSummary is one home screen entry
type ActionSummary struct {
	ID      checkout.Action `json:"id"`
	Name    string          `json:"name"`
	Title   string          `json:"title"`
	Loading bool            `json:"loading"`
}

// ListActions handles GET /actions
func (h *Handler) ListActions(w http.ResponseWriter, r *http.Request) {
	out := make([]ActionSummary, 0, len(checkout.Actions))
	for _, a := range checkout.Actions {
		out = append(out, ActionSummary{
			ID:      a,
			Name:    a.Name(),
			Title:   a.Title(),
			Loading: h.runner.Loading(a),
		})
	}
	api.WriteData(w, http.StatusOK, out)
}

// ListSettings handles GET /settings
// The API token is masked.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	all, err := h.settings.All(r.Context())
	if err != nil {
		h.logger.Error("listing settings", "error", err)
		api.InternalError(w, "failed to list settings")
		return
	}
	if token, ok := all[settings.APIToken]; ok {
		all[settings.APIToken] = gr4vy.MaskToken(token)
	}
	api.WriteData(w, http.StatusOK, all)
}

// GetAdmin handles GET /settings/admin
func (h *Handler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.settings.Admin(r.Context())
	if err != nil {
		h.logger.Error("reading admin settings", "error", err)
		api.InternalError(w, "failed to read settings")
		return
	}
	api.WriteData(w, http.StatusOK, admin)
}

// SaveAdmin handles PUT /settings/admin
func (h *Handler) SaveAdmin(w http.ResponseWriter, r *http.Request) {
	var req settings.Admin
	if err := api.DecodeAndValidate(r, &req); err != nil {
		api.ValidationError(w, err)
		return
	}

	if err := h.settings.SaveAdmin(r.Context(), req); err != nil {
		h.logger.Error("saving admin settings", "error", err)
		api.InternalError(w, "failed to save settings")
		return
	}

	admin, err := h.settings.Admin(r.Context())
	if err != nil {
		api.InternalError(w, "failed to read settings")
		return
	}

	h.logger.Info("admin settings saved",
		"gr4vy_id", admin.Gr4vyID,
		"environment", admin.Environment,
		"correlation_id", middleware.GetCorrelationID(r.Context()),
	)
	h.publishSettingsSaved(r.Context(), admin)

	api.WriteData(w, http.StatusOK, admin)
}

// GetForm handles GET /forms/{screen}
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	action, ok := h.action(w, r)
	if !ok {
		return
	}

	form, err := checkout.LoadForm(r.Context(), h.settings, action)
	if err != nil {
		h.logger.Error("loading form", "action", action, "error", err)
		api.InternalError(w, "failed to load form")
		return
	}
	api.WriteData(w, http.StatusOK, form)
}

// SaveForm handles PUT /forms/{screen}
func (h *Handler) SaveForm(w http.ResponseWriter, r *http.Request) {
	action, ok := h.action(w, r)
	if !ok {
		return
	}

	form, _ := checkout.NewForm(action)
	if err := api.DecodeAndValidate(r, form); err != nil {
		api.ValidationError(w, err)
		return
	}

	if err := checkout.SaveForm(r.Context(), h.settings, form); err != nil {
		h.logger.Error("saving form", "action", action, "error", err)
		api.InternalError(w, "failed to save form")
		return
	}
	api.WriteData(w, http.StatusOK, form)
}

// RunAction handles POST /actions/{screen}
// An empty body runs the action with the last saved form.
func (h *Handler) RunAction(w http.ResponseWriter, r *http.Request) {
	action, ok := h.action(w, r)
	if !ok {
		return
	}

	form, _ := checkout.NewForm(action)
	present, err := api.DecodeOptional(r, form)
	if err != nil {
		api.ValidationError(w, err)
		return
	}
	if !present {
		form = nil
	}

	result, err := h.runner.Run(r.Context(), action, form)
	if err != nil {
		h.writeActionError(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, result)
}

func (h *Handler) writeActionError(w http.ResponseWriter, err error) {
	var formErr *checkout.FormError
	var actionErr *checkout.ActionError

	switch {
	case errors.Is(err, checkout.ErrInFlight):
		api.Conflict(w, "a request for this screen is already in progress")
	case errors.As(err, &formErr):
		code := ErrCodeMissingField
		if formErr.Kind == checkout.MissingConfiguration {
			code = ErrCodeMissingConfiguration
		}
		api.WriteErrorWithDetails(w, http.StatusUnprocessableEntity, code, formErr.Message,
			map[string]string{formErr.Field: formErr.Message})
	case errors.As(err, &actionErr):
		api.WriteError(w, http.StatusUnprocessableEntity, ErrCodeActionFailed, actionErr.Message)
	default:
		h.logger.Error("running action", "error", err)
		api.InternalError(w, "failed to run action")
	}
}

// ShowResponse handles GET /responses/{title}/{body}
// Segments are read from the escaped path so encoded slashes and percent signs survive.
func (h *Handler) ShowResponse(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.EscapedPath(), "/responses")
	rest = strings.TrimPrefix(rest, "/")

	titleSeg, bodySeg, _ := strings.Cut(rest, "/")
	title, body := presenter.DecodeRoute(titleSeg, bodySeg)

	api.WriteData(w, http.StatusOK, presenter.NewView(title, body))
}

func (h *Handler) action(w http.ResponseWriter, r *http.Request) (checkout.Action, bool) {
	action, ok := checkout.ParseAction(chi.URLParam(r, "screen"))
	if !ok {
		api.NotFound(w, "unknown screen")
		return "", false
	}
	return action, true
}

func (h *Handler) publishSettingsSaved(ctx context.Context, admin settings.Admin) {
	if h.publisher == nil {
		return
	}

	keys := make([]string, 0, len(settings.AdminKeys))
	for _, k := range settings.AdminKeys {
		keys = append(keys, string(k))
	}

	event, err := events.NewEvent(events.EventSettingsSaved, "settings", "admin", events.SettingsSavedData{
		Environment: admin.Environment,
		Keys:        keys,
	})
	if err != nil {
		h.logger.Warn("building settings event", "error", err)
		return
	}
	event.WithCorrelation(middleware.GetCorrelationID(ctx))

	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("publishing settings event", "error", err)
	}
}
