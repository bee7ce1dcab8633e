package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/david/opportunity-finder/internal/ai"
	"github.com/david/opportunity-finder/internal/models"
	"github.com/david/opportunity-finder/internal/outreach"
	"github.com/david/opportunity-finder/internal/session"
)

type Server struct {
	Session *session.Session
	Echo    *echo.Echo

	logger *zap.Logger

	// Background generations outlive the request that started them and stop with the server.
	baseCtx    context.Context
	cancelBase context.CancelFunc
}

type generateRequest struct {
	Industry string `json:"industry"`
	Country  string `json:"country"`
}

type trackingRequest struct {
	Field string `json:"field"`
	Value *bool  `json:"value"`
}

func NewServer(sess *session.Session, logger *zap.Logger, corsOrigins []string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	allowedOrigins := []string{"http://localhost:4200"}
	for _, o := range corsOrigins {
		o = strings.TrimSpace(o)
		if o != "" {
			allowedOrigins = append(allowedOrigins, o)
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		Session:    sess,
		Echo:       e,
		logger:     logger,
		baseCtx:    ctx,
		cancelBase: cancel,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")
	api.GET("/session", s.handleGetSession)
	api.POST("/opportunities/generate", s.handleGenerate)
	api.PATCH("/opportunities/:index/tracking", s.handleSetTracking)
	api.GET("/opportunities/:index/mailto", s.handleMailto)
	api.GET("/opportunities/:index/proposal", s.handleProposal)
	api.GET("/opportunities/:index/prompt", s.handlePrompt)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleGetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Session.Snapshot())
}

func (s *Server) handleGenerate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	async := c.QueryParam("async") == "true"
	var err error
	if async {
		err = s.Session.Start(s.baseCtx, req.Industry, req.Country)
	} else {
		err = s.Session.Submit(c.Request().Context(), req.Industry, req.Country)
	}

	var verr *session.ValidationError
	var gerr *ai.GenerationFailure
	switch {
	case err == nil && async:
		return c.JSON(http.StatusAccepted, s.Session.Snapshot())
	case err == nil:
		return c.JSON(http.StatusOK, s.Session.Snapshot())
	case errors.Is(err, session.ErrBusy):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, s.Session.Snapshot())
	case errors.As(err, &gerr):
		return c.JSON(http.StatusBadGateway, s.Session.Snapshot())
	default:
		s.logger.Error("generate failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, s.Session.Snapshot())
	}
}

func (s *Server) handleSetTracking(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid index"})
	}

	var req trackingRequest
	if err := c.Bind(&req); err != nil || req.Value == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	field, err := session.ParseField(req.Field)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	updated, err := s.Session.Toggle(index, field, *req.Value)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, updated)
	case errors.Is(err, session.ErrIndexOutOfRange):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, session.ErrResponseBeforeEmail):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleMailto(c echo.Context) error {
	opp, err := s.opportunityParam(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"href": outreach.MailtoURL(opp.OpportunityRecord)})
}

func (s *Server) handleProposal(c echo.Context) error {
	opp, err := s.opportunityParam(c)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, outreach.ProposalText(opp.OpportunityRecord))
}

func (s *Server) handlePrompt(c echo.Context) error {
	opp, err := s.opportunityParam(c)
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, opp.AppCreationPrompt)
}

func (s *Server) opportunityParam(c echo.Context) (models.TrackedOpportunity, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return models.TrackedOpportunity{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid index")
	}
	opp, err := s.Session.Opportunity(index)
	if err != nil {
		return models.TrackedOpportunity{}, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return opp, nil
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

// Shutdown stops accepting requests, cancels background generations and waits for them.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	s.cancelBase()
	s.Session.Wait()
	return err
}
