package server

import (
	sterrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/oarkflow/json"
	"github.com/oarkflow/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oarkflow/lumen"
	"github.com/oarkflow/lumen/pkg/config"
	"github.com/oarkflow/lumen/pkg/diagnostics"
	"github.com/oarkflow/lumen/pkg/lexer"
	"github.com/oarkflow/lumen/pkg/value"
)

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithoutRequestLog drops the per-request access log middleware.
func WithoutRequestLog() Option {
	return func(s *Server) {
		s.requestLog = false
	}
}

// Server hosts interpreter sessions over HTTP. Each session keeps its own
// symbol table; requests against one session are serialised.
type Server struct {
	app        *fiber.App
	cfg        config.Config
	logger     *log.Logger
	cache      *lexer.Cache
	metrics    *metrics
	requestLog bool

	mu       sync.RWMutex
	sessions map[string]*hosted
}

type hosted struct {
	mu      sync.Mutex
	session *lumen.Session
}

type SourceRequest struct {
	Source string         `json:"source"`
	Data   map[string]any `json:"data,omitempty"`
}

type EvalResponse struct {
	Session       string   `json:"session,omitempty"`
	Result        any      `json:"result"`
	Values        []any    `json:"values"`
	ExecutionTime float64  `json:"executionTime"`
	Diagnostics   []string `json:"diagnostics,omitempty"`
}

type TokenResponse struct {
	Kind    string `json:"kind"`
	Literal string `json:"literal"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func New(cfg config.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:        cfg,
		logger:     &log.DefaultLogger,
		metrics:    newMetrics(),
		requestLog: true,
		sessions:   make(map[string]*hosted),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.TokenCacheSize > 0 {
		cache, err := lexer.NewCache(cfg.TokenCacheSize, cfg.LexerOptions()...)
		if err != nil {
			return nil, diagnostics.Wrap(diagnostics.ErrCodeConfig, err, "token cache")
		}
		s.cache = cache
	}
	s.app = fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})
	s.setupRoutes()
	return s, nil
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) setupRoutes() {
	s.app.Use(cors.New())
	if s.requestLog {
		s.app.Use(logger.New())
	}

	s.app.Get("/api/health", s.healthHandler)

	// One-shot evaluation
	s.app.Post("/api/eval", s.evalHandler)
	s.app.Post("/api/tokenize", s.tokenizeHandler)

	// Sessions
	s.app.Post("/api/sessions", s.createSessionHandler)
	s.app.Get("/api/sessions", s.listSessionsHandler)
	s.app.Delete("/api/sessions/:id", s.deleteSessionHandler)
	s.app.Post("/api/sessions/:id/eval", s.sessionEvalHandler)
	s.app.Get("/api/sessions/:id/symbols", s.symbolsHandler)

	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	s.mu.RLock()
	count := len(s.sessions)
	s.mu.RUnlock()
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"version":   s.cfg.Server.Version,
		"sessions":  count,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) parseSource(c *fiber.Ctx) (SourceRequest, error) {
	var req SourceRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Source) == "" {
		return req, fiber.NewError(fiber.StatusBadRequest, "Source cannot be empty")
	}
	return req, nil
}

func (s *Server) newSession() (*lumen.Session, error) {
	return lumen.NewSession(
		lumen.WithConfig(s.cfg),
		lumen.WithLogger(s.logger),
		lumen.WithTokenCache(s.cache),
	)
}

func (s *Server) evalHandler(c *fiber.Ctx) error {
	req, err := s.parseSource(c)
	if err != nil {
		return err
	}
	sess, err := s.newSession()
	if err != nil {
		return err
	}
	defer sess.Close()
	sess.Inject(req.Data)
	return s.run(c, "eval", sess, req.Source)
}

func (s *Server) sessionEvalHandler(c *fiber.Ctx) error {
	h, err := s.lookup(c.Params("id"))
	if err != nil {
		return err
	}
	req, err := s.parseSource(c)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session.Inject(req.Data)
	return s.run(c, "session", h.session, req.Source)
}

func (s *Server) run(c *fiber.Ctx, endpoint string, sess *lumen.Session, src string) error {
	start := time.Now()
	values, err := sess.Run(src)
	elapsed := time.Since(start)
	s.metrics.evaluationDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	if err != nil {
		s.metrics.evaluations.WithLabelValues(endpoint, string(diagnostics.CodeOf(err))).Inc()
		return s.fail(c, err)
	}
	s.metrics.evaluations.WithLabelValues(endpoint, "ok").Inc()

	resp := EvalResponse{
		Session:       sess.ID,
		Values:        make([]any, len(values)),
		ExecutionTime: elapsed.Seconds(),
	}
	for i, v := range values {
		resp.Values[i] = v.Interface()
	}
	if len(values) > 0 {
		resp.Result = values[len(values)-1].Interface()
	}
	return c.JSON(resp)
}

// fail maps the interpreter's error codes onto HTTP statuses.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	code := diagnostics.CodeOf(err)
	switch code {
	case diagnostics.ErrCodeDiagnostics:
		status = fiber.StatusUnprocessableEntity
	case diagnostics.ErrCodeInputTooLarge:
		status = fiber.StatusRequestEntityTooLarge
	case "":
		status = fiber.StatusInternalServerError
	}
	body := fiber.Map{
		"error": err.Error(),
		"code":  code,
	}
	var derr *diagnostics.Error
	if sterrors.As(err, &derr) && len(derr.Details) > 0 {
		body["details"] = derr.Details
	}
	return c.Status(status).JSON(body)
}

func (s *Server) tokenizeHandler(c *fiber.Ctx) error {
	req, err := s.parseSource(c)
	if err != nil {
		return err
	}
	if int64(len(req.Source)) > s.cfg.MaxFileBytes {
		return s.fail(c, diagnostics.Errorf(diagnostics.ErrCodeInputTooLarge,
			"input of %d bytes exceeds %d", len(req.Source), s.cfg.MaxFileBytes))
	}
	stream, err := lexer.Tokenize(req.Source, s.cfg.LexerOptions()...)
	if err != nil {
		return s.fail(c, err)
	}
	tokens := stream.Tokens()
	out := make([]TokenResponse, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, TokenResponse{
			Kind:    tok.Kind.String(),
			Literal: tok.Literal,
			Line:    tok.Line,
			Column:  tok.Column,
		})
	}
	return c.JSON(fiber.Map{"tokens": out, "count": len(out)})
}

func (s *Server) createSessionHandler(c *fiber.Ctx) error {
	sess, err := s.newSession()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[sess.ID] = &hosted{session: sess}
	s.mu.Unlock()
	s.metrics.activeSessions.Inc()
	s.logger.Info().Str("session", sess.ID).Msg("session created")
	return c.Status(fiber.StatusCreated).JSON(SessionResponse{ID: sess.ID, CreatedAt: sess.CreatedAt})
}

func (s *Server) listSessionsHandler(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SessionResponse, 0, len(s.sessions))
	for _, h := range s.sessions {
		out = append(out, SessionResponse{ID: h.session.ID, CreatedAt: h.session.CreatedAt})
	}
	return c.JSON(out)
}

func (s *Server) lookup(id string) (*hosted, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.sessions[id]
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	return h, nil
}

func (s *Server) deleteSessionHandler(c *fiber.Ctx) error {
	id := c.Params("id")
	s.mu.Lock()
	h, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	h.mu.Lock()
	_ = h.session.Close()
	h.mu.Unlock()
	s.metrics.activeSessions.Dec()
	s.logger.Info().Str("session", id).Msg("session closed")
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) symbolsHandler(c *fiber.Ctx) error {
	h, err := s.lookup(c.Params("id"))
	if err != nil {
		return err
	}
	h.mu.Lock()
	snapshot := h.session.Symbols().Snapshot()
	h.mu.Unlock()
	out := make(map[string]any, len(snapshot))
	for name, v := range snapshot {
		out[name] = symbolJSON(v)
	}
	return c.JSON(out)
}

func symbolJSON(v value.Value) fiber.Map {
	return fiber.Map{"kind": v.Kind.String(), "value": v.Interface()}
}

func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("Starting API server")
	return s.app.Listen(addr)
}

// Shutdown stops the listener and closes every hosted session.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("Shutting down API server gracefully")
	err := s.app.Shutdown()
	s.mu.Lock()
	for id, h := range s.sessions {
		_ = h.session.Close()
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if s.cache != nil {
		s.cache.Close()
	}
	return err
}
