package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/roadnet"
	"github.com/hupe1980/roadnet/codec"
	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/scores"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 4 << 20

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type startKey struct{}
type requestIDKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Server exposes a Router over HTTP.
type Server struct {
	router   *roadnet.Router
	logger   *roadnet.Logger
	codec    codec.Codec
	gatherer prometheus.Gatherer
	mux      *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *roadnet.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCodec sets the JSON codec for requests and responses.
func WithCodec(c codec.Codec) Option {
	return func(s *Server) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithMetricsHandler serves the metrics of g on /metrics.
func WithMetricsHandler(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New creates a Server for router.
func New(router *roadnet.Router, opts ...Option) *Server {
	s := &Server{
		router: router,
		logger: roadnet.NoopLogger(),
		codec:  codec.Default,
		mux:    mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.RegisterRoutes(s.mux)
	return s
}

// RegisterRoutes adds the API endpoints to m.
func (s *Server) RegisterRoutes(m *mux.Router) {
	m.Use(s.requestContext)
	m.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	m.HandleFunc("/api/network", s.network).Methods(http.MethodGet)
	m.HandleFunc("/api/resolve", s.resolve).Methods(http.MethodGet)
	m.HandleFunc("/api/routes", s.route).Methods(http.MethodPost)
	m.HandleFunc("/api/routes/batch", s.batch).Methods(http.MethodPost)
	m.HandleFunc("/api/routes/matrix", s.matrix).Methods(http.MethodPost)
	m.HandleFunc("/api/scores/samples", s.samples).Methods(http.MethodPost)
	m.HandleFunc("/api/scores/process", s.process).Methods(http.MethodPost)
	if s.gatherer != nil {
		m.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// requestContext tags the request with an id and start time and logs it.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = context.WithValue(ctx, startKey{}, start)
		next.ServeHTTP(w, r.WithContext(ctx))

		s.logger.WithRequestID(id).DebugContext(ctx, "request served",
			"method", r.Method,
			"path", r.URL.Path,
			"took", time.Since(start),
		)
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err == nil {
		err = s.codec.Unmarshal(body, v)
	}
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid_body", err)
		return false
	}
	return true
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.ok(w, r, map[string]string{"status": "ok"}, nil)
}

// NetworkInfo summarizes the routed network.
type NetworkInfo struct {
	Vertices uint32   `json:"vertices"`
	Edges    uint32   `json:"edges"`
	Profiles []string `json:"profiles"`
	Scores   int      `json:"scores"`
}

func (s *Server) network(w http.ResponseWriter, r *http.Request) {
	info := NetworkInfo{
		Vertices: s.router.Graph().VertexCount(),
		Edges:    s.router.Graph().EdgeCount(),
	}
	for _, p := range s.router.Profiles().Profiles() {
		info.Profiles = append(info.Profiles, p.Name)
	}
	if t := s.router.Scores(); t != nil {
		info.Scores = t.Len()
	}
	s.ok(w, r, info, nil)
}

func parseCoordinate(lat, lon string) (geo.Coordinate, error) {
	la, err := strconv.ParseFloat(lat, 32)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(lon, 32)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("longitude %q: %w", lon, err)
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return geo.Coordinate{}, fmt.Errorf("coordinate %v,%v out of range", la, lo)
	}
	return geo.Coordinate{Latitude: float32(la), Longitude: float32(lo)}, nil
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := parseCoordinate(q.Get("lat"), q.Get("lon"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "invalid_coordinate", err)
		return
	}
	p, err := s.router.Resolve(r.Context(), c)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.ok(w, r, p, nil)
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	var req roadnet.Request
	if !s.decode(w, r, &req) {
		return
	}
	path, err := s.router.Route(r.Context(), req.From, req.To)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.ok(w, r, path, nil)
}

// BatchRequest is the body of /api/routes/batch.
type BatchRequest struct {
	Requests []roadnet.Request `json:"requests"`
}

// BatchResult is one entry of a batch reply.
type BatchResult struct {
	Path  any    `json:"path,omitempty"`
	Error *Error `json:"error,omitempty"`
}

func (s *Server) batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	results, err := s.router.RouteMany(r.Context(), req.Requests)
	if err != nil {
		s.failErr(w, r, err)
		return
	}

	out := make([]BatchResult, len(results))
	for i, res := range results {
		if res.Err != nil {
			code := "no_route"
			if errors.Is(res.Err, roadnet.ErrUnresolved) {
				code = "unresolved"
			}
			out[i].Error = &Error{Code: code, Message: res.Err.Error()}
			continue
		}
		out[i].Path = res.Path
	}
	s.ok(w, r, out, ptr(len(out)))
}

// MatrixRequest is the body of /api/routes/matrix.
type MatrixRequest struct {
	From geo.Coordinate   `json:"from"`
	To   []geo.Coordinate `json:"to"`
}

func (s *Server) matrix(w http.ResponseWriter, r *http.Request) {
	var req MatrixRequest
	if !s.decode(w, r, &req) {
		return
	}
	paths, err := s.router.OneToMany(r.Context(), req.From, req.To)
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.ok(w, r, paths, ptr(len(paths)))
}

func (s *Server) samples(w http.ResponseWriter, r *http.Request) {
	t := s.router.Scores()
	if t == nil {
		s.failErr(w, r, roadnet.ErrNoScores)
		return
	}
	var samples []scores.Sample
	if !s.decode(w, r, &samples) {
		return
	}
	for _, sample := range samples {
		t.Log(sample.Latitude, sample.Longitude, sample.Score)
	}
	s.ok(w, r, map[string]int{"logged": len(samples)}, ptr(len(samples)))
}

func (s *Server) process(w http.ResponseWriter, r *http.Request) {
	res, err := s.router.ProcessScores(r.Context())
	if err != nil {
		s.failErr(w, r, err)
		return
	}
	s.ok(w, r, res, nil)
}
