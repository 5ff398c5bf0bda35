// Package http serves the interviewer slot submission form. Links to
// it are embedded in the availability request emails; a submission is
// converted straight into an INTERVIEWER_SLOTS workflow signal.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/logging"
	"github.com/fyrsmithlabs/interviewd/internal/negotiation"
	"github.com/fyrsmithlabs/interviewd/internal/workflows"
)

// maxFormSlots bounds how many windows one submission can carry.
const maxFormSlots = 3

// SignalClient is the slice of the Temporal client the form server needs.
type SignalClient interface {
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg interface{}) error
}

// Server hosts the slot form endpoints.
type Server struct {
	echo        *echo.Echo
	client      SignalClient
	submissions *submissionLog
	logger      *logging.Logger
	cfg         config.FormConfig
	now         func() time.Time
}

// NewServer creates the form server. The Temporal client may not be
// nil; submissions without a reachable workflow are still persisted
// to the audit log but the interviewer is told delivery failed.
func NewServer(client SignalClient, cfg config.FormConfig, logger *logging.Logger) (*Server, error) {
	if client == nil {
		return nil, fmt.Errorf("signal client is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			ctx := logging.WithRequestID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
			c.SetRequest(req.WithContext(ctx))
			err := next(c)

			logger.Info(ctx, "http request",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
			)
			return err
		}
	})

	s := &Server{
		echo:        e,
		client:      client,
		submissions: newSubmissionLog(cfg.SubmissionsPath),
		logger:      logger.Named("form"),
		cfg:         cfg,
		now:         time.Now,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/slot-form", s.handleForm)
	s.echo.POST("/submit-slot", s.handleSubmit)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleForm renders the time-slot form. The token is the interview
// (and workflow) ID carried through from the request email.
func (s *Server) handleForm(c echo.Context) error {
	token := c.QueryParam("token")
	interviewer := c.QueryParam("interviewer")
	if token == "" || interviewer == "" {
		return c.HTML(http.StatusBadRequest, "<h2>Invalid or missing token/interviewer.</h2>")
	}

	date := c.QueryParam("date")
	if date == "" || date == "undefined" || date == "null" {
		date = "the proposed date"
	}

	return renderForm(c, formPage{Token: token, Interviewer: interviewer, Date: date})
}

// handleSubmit records the submission and signals the workflow.
func (s *Server) handleSubmit(c echo.Context) error {
	token := c.FormValue("token")
	interviewer := c.FormValue("interviewer")
	if token == "" || interviewer == "" {
		return c.HTML(http.StatusBadRequest, "<h2>Invalid submission.</h2>")
	}

	date := c.FormValue("proposed_date")
	if date == "" {
		date = s.now().Format("2006-01-02")
	}

	var slots []negotiation.Slot
	for i := 1; i <= maxFormSlots; i++ {
		start := c.FormValue(fmt.Sprintf("slot_start_%d", i))
		end := c.FormValue(fmt.Sprintf("slot_end_%d", i))
		if start != "" && end != "" {
			slots = append(slots, negotiation.Slot{Date: date, StartTime: start, EndTime: end})
		}
	}
	if len(slots) == 0 {
		return c.HTML(http.StatusBadRequest, "<h2>Error: Please provide at least one time slot.</h2>")
	}

	ctx := logging.WithInterviewID(c.Request().Context(), token)

	if err := s.submissions.append(submission{
		Token:       token,
		Interviewer: interviewer,
		Slots:       slots,
		SubmittedAt: s.now().UTC(),
	}); err != nil {
		s.logger.Warn(ctx, "failed to persist submission", zap.Error(err))
	}

	err := s.client.SignalWorkflow(ctx, token, "", workflows.SignalInterviewerSlots, slots)
	if err != nil {
		s.logger.Error(ctx, "failed to signal workflow", zap.Error(err))
		return renderSaved(c, resultPage{Interviewer: interviewer, Slots: slots, Delivered: false})
	}

	s.logger.Info(ctx, "interviewer slots submitted",
		zap.String("interviewer", interviewer),
		zap.Int("slots", len(slots)))
	return renderSaved(c, resultPage{Interviewer: interviewer, Slots: slots, Delivered: true})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
