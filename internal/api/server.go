// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tamzrod/luxtronik-replicator/internal/coordinator"
	"github.com/tamzrod/luxtronik-replicator/internal/derive"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/metrics"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
	"github.com/tamzrod/luxtronik-replicator/internal/status"
)

// Controller is the part of the coordinator the HTTP surface needs.
type Controller interface {
	Last() (luxtronik.Snapshot, bool)
	Health() status.Snapshot
	Write(ctx context.Context, ref string, raw int32) (luxtronik.Snapshot, error)
	Refresh(ctx context.Context) (luxtronik.Snapshot, error)
	Subscribe(fn func(luxtronik.Snapshot)) *coordinator.Subscription
}

type Options struct {
	Registry *registry.Registry
	Tracker  *derive.EVUTracker

	// Gatherer, when set, is served on /metrics.
	Gatherer prometheus.Gatherer

	// RequestTimeout bounds writes and refreshes. Zero means 30s.
	RequestTimeout time.Duration
}

type Server struct {
	ctl  Controller
	opts Options
	reg  *registry.Registry
	log  *zap.Logger
}

// NewRouter wires the /api routes.
//
//	GET  /api/health
//	GET  /api/snapshot
//	GET  /api/identity
//	GET  /api/state
//	GET  /api/fields/{ref}
//	POST /api/fields/{ref}   {"value": <raw>}
//	POST /api/refresh
//	GET  /api/stream         websocket, one snapshot document per message
//	GET  /metrics
func NewRouter(ctl Controller, opts Options, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	s := &Server{ctl: ctl, opts: opts, reg: opts.Registry, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(withLogging(log))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/snapshot", s.snapshot)
		r.Get("/identity", s.identity)
		r.Get("/state", s.state)
		r.Get("/fields/{ref}", s.getField)
		r.Post("/fields/{ref}", s.setField)
		r.Post("/refresh", s.refresh)
		r.Get("/stream", s.stream)
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(opts.Gatherer))
	}

	return r
}

// ----------------------------------------------------------------
// Views
// ----------------------------------------------------------------

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.ctl.Health())
}

func (s *Server) last(w http.ResponseWriter, r *http.Request) (luxtronik.Snapshot, bool) {
	snap, ok := s.ctl.Last()
	if !ok {
		render.Render(w, r, ErrUnavailable(errNoSnapshot))
		return luxtronik.Snapshot{}, false
	}
	return snap, true
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.last(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snap.Document())
}

func (s *Server) identity(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.last(w, r)
	if !ok {
		return
	}
	id, ok := luxtronik.DeriveIdentity(snap, s.reg)
	if !ok {
		render.Render(w, r, ErrUnavailable(errNoIdentity))
		return
	}
	render.JSON(w, r, id)
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.last(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, derive.ApplyWith(snap, s.opts.Tracker))
}

func (s *Server) getField(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.last(w, r)
	if !ok {
		return
	}
	f, err := snap.Lookup(s.reg, chi.URLParam(r, "ref"))
	if err != nil {
		render.Render(w, r, errFor(err))
		return
	}
	render.JSON(w, r, NewField(f))
}

// ----------------------------------------------------------------
// Commands
// ----------------------------------------------------------------

type SetRequest struct {
	Value *int32 `json:"value"`
}

func (req *SetRequest) Bind(r *http.Request) error {
	if req.Value == nil {
		return errors.New("value required")
	}
	return nil
}

func (s *Server) setField(w http.ResponseWriter, r *http.Request) {
	req := &SetRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	ref := chi.URLParam(r, "ref")
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	snap, err := s.ctl.Write(ctx, ref, *req.Value)
	if err != nil {
		s.log.Warn("api: write failed", zap.String("ref", ref), zap.Int32("value", *req.Value), zap.Error(err))
		render.Render(w, r, errFor(err))
		return
	}

	f, err := snap.Lookup(s.reg, ref)
	if err != nil {
		render.Render(w, r, errFor(err))
		return
	}
	render.JSON(w, r, NewField(f))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	snap, err := s.ctl.Refresh(ctx)
	if err != nil {
		render.Render(w, r, errFor(err))
		return
	}
	render.JSON(w, r, snap.Document())
}

// ----------------------------------------------------------------
// Payloads
// ----------------------------------------------------------------

// Field is the JSON view of one slot.
type Field struct {
	Section string  `json:"section"`
	Index   int     `json:"index"`
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Raw     int32   `json:"raw"`
	Value   float64 `json:"value"`
	Text    string  `json:"text"`
	Unit    string  `json:"unit,omitempty"`
}

func NewField(f luxtronik.FieldValue) Field {
	v := f.Value()
	out := Field{
		Section: f.Section.String(),
		Index:   f.Index,
		Name:    f.Name(),
		Kind:    v.Kind.String(),
		Raw:     f.Raw,
		Value:   v.Number,
		Text:    f.String(),
	}
	if f.Descriptor != nil {
		out.Unit = f.Descriptor.Unit
	}
	return out
}

// ----------------------------------------------------------------
// Middleware
// ----------------------------------------------------------------

func withLogging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("api",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
