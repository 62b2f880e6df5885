// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/xid"

	httplib "github.com/xataio/anonymiser/internal/http"
	synclib "github.com/xataio/anonymiser/internal/sync"
	"github.com/xataio/anonymiser/pkg/anonymiser"
	loglib "github.com/xataio/anonymiser/pkg/log"
	tlslib "github.com/xataio/anonymiser/pkg/tls"
)

type Server struct {
	server          httplib.Server
	httpServer      *http.Server
	logger          loglib.Logger
	masker          anonymiser.Masker
	inflightRecords synclib.RecordLimiter
	address         string
	bulkMaxRecords  int
	bulkWorkers     int
}

type Option func(*Server)

type bulkRequest struct {
	Records []*anonymiser.Request `json:"records"`
}

type bulkResponse struct {
	Records []*anonymiser.Request `json:"records"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

var (
	errTooManyRecords = errors.New("too many records in bulk request")
	errServerBusy     = errors.New("too many records being masked, retry later")
)

func New(cfg *Config, masker anonymiser.Masker, opts ...Option) (*Server, error) {
	tlsConfig, err := tlslib.NewServerConfig(&cfg.TLS)
	if err != nil {
		return nil, fmt.Errorf("building server tls config: %w", err)
	}

	s := &Server{
		address:         cfg.address(),
		masker:          masker,
		logger:          loglib.NewNoopLogger(),
		inflightRecords: synclib.NewRecordLimiter(cfg.maxInflightRecords()),
		bulkMaxRecords:  cfg.bulkMaxRecords(),
		bulkWorkers:     cfg.bulkWorkers(),
	}

	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Server.Addr = s.address
	e.Server.ReadTimeout = cfg.readTimeout()
	e.Server.WriteTimeout = cfg.writeTimeout()
	e.Server.TLSConfig = tlsConfig

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return xid.New().String() },
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:     true,
		LogURI:        true,
		LogStatus:     true,
		LogLatency:    true,
		LogRequestID:  true,
		LogValuesFunc: s.logRequest,
	}))
	e.Use(middleware.Recover())

	api := e.Group("/api/v1")
	api.POST("/anonymise", s.anonymise)
	api.POST("/anonymise/bulk", s.anonymiseBulk)
	api.GET("/health", s.health)

	s.server = e
	s.httpServer = e.Server

	return s, nil
}

func WithLogger(l loglib.Logger) Option {
	return func(s *Server) {
		s.logger = loglib.NewModuleLogger(l, "anonymiser_server")
	}
}

// Start will start the anonymiser server. This call is blocking.
func (s *Server) Start() error {
	s.logger.Info(fmt.Sprintf("anonymiser server listening on: %s...", s.address), loglib.Fields{
		"tls": s.httpServer.TLSConfig != nil,
	})
	if err := s.server.StartServer(s.httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) anonymise(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return c.JSON(http.StatusMethodNotAllowed, nil)
	}

	s.logger.Trace("request received on /anonymise endpoint")

	req := &anonymiser.Request{}
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: bindErrorMessage(err)})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, s.masker.MaskRequest(c.Request().Context(), req))
}

func (s *Server) anonymiseBulk(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return c.JSON(http.StatusMethodNotAllowed, nil)
	}

	s.logger.Trace("request received on /anonymise/bulk endpoint")

	bulk := &bulkRequest{}
	if err := c.Bind(bulk); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: bindErrorMessage(err)})
	}
	if len(bulk.Records) > s.bulkMaxRecords {
		err := fmt.Errorf("%w: %d records, maximum is %d", errTooManyRecords, len(bulk.Records), s.bulkMaxRecords)
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	for i, req := range bulk.Records {
		if err := req.Validate(); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("record %d: %v", i, err)})
		}
	}

	if !s.inflightRecords.TryAcquire(len(bulk.Records)) {
		return c.JSON(http.StatusTooManyRequests, errorResponse{Error: errServerBusy.Error()})
	}
	defer s.inflightRecords.Release(len(bulk.Records))

	masked, err := s.masker.MaskAll(c.Request().Context(), bulk.Records, s.bulkWorkers)
	if err != nil {
		s.logger.Error(err, "masking bulk request", loglib.Fields{loglib.RecordsField: len(bulk.Records)})
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, bulkResponse{Records: masked})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	s.logger.Debug("request served", loglib.Fields{
		"method":              v.Method,
		"uri":                 v.URI,
		"status":              v.Status,
		"latency":             v.Latency.String(),
		loglib.RequestIDField: v.RequestID,
	})
	return nil
}

func bindErrorMessage(err error) string {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprint(httpErr.Message)
	}
	return err.Error()
}
