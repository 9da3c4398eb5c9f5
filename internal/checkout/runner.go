// Package checkout builds Gr4vy requests from screen forms, runs them and
// translates failures into user-facing messages.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gr4vydemo/internal/common/events"
	"gr4vydemo/internal/common/middleware"
	"gr4vydemo/internal/gr4vy"
	"gr4vydemo/internal/presenter"
	"gr4vydemo/internal/settings"
)

// emptyTokenizeResponse is shown when tokenize succeeds with no body.
const emptyTokenizeResponse = `{"result": "OK"}`

// Facade is the subset of the Gr4vy client the runner calls.
type Facade interface {
	GetCardDetails(ctx context.Context, req gr4vy.CardDetailsRequest) (*gr4vy.Response, error)
	ListPaymentOptions(ctx context.Context, req gr4vy.PaymentOptionsRequest) (*gr4vy.Response, error)
	ListPaymentMethods(ctx context.Context, req gr4vy.PaymentMethodsRequest) (*gr4vy.Response, error)
	Tokenize(ctx context.Context, req gr4vy.TokenizeRequest) (*gr4vy.Response, error)
}

var _ Facade = (*gr4vy.Client)(nil)

// FacadeFactory creates a facade for one action.
type FacadeFactory func(cfg gr4vy.Config, logger *slog.Logger) (Facade, error)

// NewGr4vyFacade is the FacadeFactory backed by gr4vy.New.
func NewGr4vyFacade(cfg gr4vy.Config, logger *slog.Logger) (Facade, error) {
	c, err := gr4vy.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Result is a successful action.
type Result struct {
	Action     Action         `json:"action"`
	StatusCode int            `json:"status_code"`
	View       presenter.View `json:"view"`
	Route      string         `json:"route"`
}

// Runner executes actions. Each action runs at most once at a time.
type Runner struct {
	settings  *settings.Service
	newFacade FacadeFactory
	publisher events.EventPublisher
	logger    *slog.Logger

	mu      sync.Mutex
	loading map[Action]bool
}

// NewRunner creates a runner. A nil publisher disables action events.
func NewRunner(svc *settings.Service, newFacade FacadeFactory, publisher events.EventPublisher, logger *slog.Logger) *Runner {
	if newFacade == nil {
		newFacade = NewGr4vyFacade
	}
	return &Runner{
		settings:  svc,
		newFacade: newFacade,
		publisher: publisher,
		logger:    logger,
		loading:   make(map[Action]bool),
	}
}

// Loading reports whether a is in flight.
func (r *Runner) Loading(a Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading[a]
}

func (r *Runner) begin(a Action) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loading[a] {
		return false
	}
	r.loading[a] = true
	return true
}

func (r *Runner) end(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loading, a)
}

// Run executes the form's action. A nil form runs a with the last persisted form.
// A submitted form is persisted in the background and used as is.
func (r *Runner) Run(ctx context.Context, a Action, form Form) (result *Result, err error) {
	if form != nil && form.Action() != a {
		return nil, fmt.Errorf("form for %s submitted to %s", form.Action(), a)
	}
	if !r.begin(a) {
		return nil, ErrInFlight
	}
	defer r.end(a)

	start := time.Now()
	var creds Credentials
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("action panicked", "action", a, "panic", rec)
			result, err = nil, &ActionError{Action: a, Message: fmt.Sprintf("Unexpected error: %v", rec)}
		}
		r.publish(ctx, a, creds, result, err, time.Since(start))
	}()

	if form == nil {
		if form, err = LoadForm(ctx, r.settings, a); err != nil {
			return nil, err
		}
	} else {
		SaveFormAsync(r.settings, form)
	}

	admin, err := r.settings.Admin(ctx)
	if err != nil {
		return nil, err
	}
	creds = CredentialsFrom(admin)
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	call, err := prepare(form, creds)
	if err != nil {
		return nil, err
	}

	facade, err := r.newFacade(creds.ClientConfig(), r.logger)
	if err != nil {
		return nil, r.fail(a, creds, err)
	}

	resp, err := call(ctx, facade)
	if err != nil {
		return nil, r.fail(a, creds, err)
	}
	if resp == nil {
		return nil, &ActionError{Action: a, Message: "Empty response received"}
	}

	raw := resp.RawResponse
	if a == ActionFields && strings.TrimSpace(raw) == "" {
		raw = emptyTokenizeResponse
	}

	r.logger.Info("action completed",
		"action", a,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Action:     a,
		StatusCode: resp.StatusCode,
		View:       presenter.NewView(a.Title(), raw),
		Route:      presenter.EncodeRoute(a.Title(), raw),
	}, nil
}

type facadeCall func(ctx context.Context, f Facade) (*gr4vy.Response, error)

// prepare builds the request for form and returns the call that sends it.
func prepare(form Form, creds Credentials) (facadeCall, error) {
	switch f := form.(type) {
	case *CardDetailsForm:
		req, err := BuildCardDetails(*f)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, c Facade) (*gr4vy.Response, error) {
			return c.GetCardDetails(ctx, req)
		}, nil
	case *PaymentOptionsForm:
		req := BuildPaymentOptions(*f, creds.MerchantID)
		return func(ctx context.Context, c Facade) (*gr4vy.Response, error) {
			return c.ListPaymentOptions(ctx, req)
		}, nil
	case *PaymentMethodsForm:
		req := BuildPaymentMethods(*f)
		return func(ctx context.Context, c Facade) (*gr4vy.Response, error) {
			return c.ListPaymentMethods(ctx, req)
		}, nil
	case *FieldsForm:
		req, err := BuildTokenize(*f)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, c Facade) (*gr4vy.Response, error) {
			return c.Tokenize(ctx, req)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported form %T", form)
	}
}

func (r *Runner) fail(a Action, creds Credentials, err error) error {
	msg := Classify(err, a, creds.Gr4vyID)
	r.logger.Warn("action failed",
		"action", a,
		"gr4vy_id", creds.Gr4vyID,
		"environment", creds.Server,
		"error", err,
		"message", msg,
	)
	return &ActionError{Action: a, Message: msg, Err: err}
}

func (r *Runner) publish(ctx context.Context, a Action, creds Credentials, result *Result, runErr error, elapsed time.Duration) {
	if r.publisher == nil {
		return
	}

	eventType := events.EventActionSucceeded
	data := events.ActionCompletedData{
		Action:      string(a),
		Environment: string(creds.Server),
		Outcome:     "succeeded",
		DurationMs:  elapsed.Milliseconds(),
	}
	if runErr != nil {
		eventType = events.EventActionFailed
		data.Outcome = "failed"
		data.Message = UserMessage(runErr)
	} else if result != nil {
		data.Bytes = len(result.View.Raw)
	}

	event, err := events.NewEvent(eventType, "action", string(a), data)
	if err != nil {
		r.logger.Warn("building action event", "action", a, "error", err)
		return
	}
	event.WithCorrelation(middleware.GetCorrelationID(ctx))

	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("publishing action event", "action", a, "error", err)
	}
}
