package roadnet

import (
	"context"
	"io"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/graph"
	"github.com/hupe1980/roadnet/profile"
	"github.com/hupe1980/roadnet/scores"
	"github.com/hupe1980/roadnet/search"
	"github.com/hupe1980/roadnet/weight"
)

// Router answers route queries over a read-only network. It is safe for
// concurrent use; the graph must not be mutated while a Router uses it.
type Router struct {
	graph    *graph.Graph
	profiles *profile.Table
	handler  weight.Handler
	dijkstra *search.Dijkstra
	resolver *search.Resolver
	opts     options

	// set when the graph views a snapshot that must stay open
	closer   io.Closer
	reserved int64

	// calls hold mu for reading; Close takes it for writing so the
	// snapshot is never released under a running search
	mu     sync.RWMutex
	closed bool
}

// New creates a Router over g weighted by profiles.
func New(g *graph.Graph, profiles *profile.Table, optFns ...Option) (*Router, error) {
	return newRouter(g, profiles, applyOptions(optFns))
}

func newRouter(g *graph.Graph, profiles *profile.Table, o options) (*Router, error) {
	if g == nil || profiles == nil {
		return nil, ErrInvalidArgument
	}

	var h weight.Handler = profiles.Handler()
	if o.scores != nil {
		h = weight.NewOverride(h, o.scores)
	}

	d, err := search.New(g, h, o.searchOptions...)
	if err != nil {
		return nil, err
	}

	return &Router{
		graph:    g,
		profiles: profiles,
		handler:  h,
		dijkstra: d,
		resolver: search.NewResolver(g, h),
		opts:     o,
	}, nil
}

// Graph returns the routed graph.
func (r *Router) Graph() *graph.Graph { return r.graph }

// Profiles returns the profile table.
func (r *Router) Profiles() *profile.Table { return r.profiles }

// Handler returns the weight handler searches use.
func (r *Router) Handler() weight.Handler { return r.handler }

// Scores returns the score table, or nil.
func (r *Router) Scores() *scores.Table { return r.opts.scores }

// enter admits a call unless the router is closed. Admitted calls must
// call leave once they no longer touch the graph.
func (r *Router) enter() error {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return ErrClosed
	}
	return nil
}

func (r *Router) leave() { r.mu.RUnlock() }

// Resolve snaps c onto the closest routable edge within the snap radius.
func (r *Router) Resolve(ctx context.Context, c geo.Coordinate) (search.Point, error) {
	if err := r.enter(); err != nil {
		return search.Point{}, err
	}
	defer r.leave()
	start := time.Now()
	p, err := r.resolver.Resolve(ctx, c, r.opts.radius)
	r.opts.metricsCollector.RecordResolve(time.Since(start), err)
	return p, translateError(err)
}

// Route computes the cheapest route between two coordinates.
func (r *Router) Route(ctx context.Context, from, to geo.Coordinate) (*search.Path, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()
	start := time.Now()
	path, err := r.route(ctx, from, to)
	took := time.Since(start)

	r.opts.metricsCollector.RecordRoute(took, err)
	var distance float32
	if path != nil {
		distance = path.Distance
	}
	r.opts.logger.LogRoute(ctx, from, to, distance, took, err)
	return path, translateError(err)
}

func (r *Router) route(ctx context.Context, from, to geo.Coordinate) (*search.Path, error) {
	if err := r.opts.resources.AcquireSearch(ctx); err != nil {
		return nil, err
	}
	defer r.opts.resources.ReleaseSearch()

	src, err := r.resolver.Resolve(ctx, from, r.opts.radius)
	if err != nil {
		return nil, err
	}
	dst, err := r.resolver.Resolve(ctx, to, r.opts.radius)
	if err != nil {
		return nil, err
	}
	return r.dijkstra.Route(ctx, src, dst)
}

// RouteVertices computes the cheapest route between two vertices.
func (r *Router) RouteVertices(ctx context.Context, source, target uint32) (*search.Path, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()
	if err := r.opts.resources.AcquireSearch(ctx); err != nil {
		return nil, err
	}
	defer r.opts.resources.ReleaseSearch()

	start := time.Now()
	path, err := r.dijkstra.RouteVertices(ctx, source, target)
	r.opts.metricsCollector.RecordRoute(time.Since(start), err)
	return path, translateError(err)
}

// OneToMany routes from one coordinate to many in a single search.
// Targets that cannot be snapped or reached get a nil path.
func (r *Router) OneToMany(ctx context.Context, from geo.Coordinate, to []geo.Coordinate) ([]*search.Path, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()
	if err := r.opts.resources.AcquireSearch(ctx); err != nil {
		return nil, err
	}
	defer r.opts.resources.ReleaseSearch()

	src, err := r.resolver.Resolve(ctx, from, r.opts.radius)
	if err != nil {
		return nil, translateError(err)
	}

	paths := make([]*search.Path, len(to))
	targets := make([]search.Point, 0, len(to))
	index := make([]int, 0, len(to))
	for i, c := range to {
		p, err := r.resolver.Resolve(ctx, c, r.opts.radius)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		targets = append(targets, p)
		index = append(index, i)
	}
	if len(targets) == 0 {
		return paths, nil
	}

	found, err := r.dijkstra.OneToMany(ctx, src, targets)
	if err != nil {
		return nil, translateError(err)
	}
	for i, p := range found {
		paths[index[i]] = p
	}
	return paths, nil
}

// Request is one route query of a batch.
type Request struct {
	From geo.Coordinate `json:"from"`
	To   geo.Coordinate `json:"to"`
}

// Result is the answer to a Request. Err is set when no route was found.
type Result struct {
	Path *search.Path
	Err  error
}

// RouteMany answers independent route queries concurrently. Per-request
// failures are reported in the results; only cancellation of ctx fails the
// whole batch.
func (r *Router) RouteMany(ctx context.Context, reqs []Request) ([]Result, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()
	start := time.Now()
	results := make([]Result, len(reqs))

	limit := runtime.GOMAXPROCS(0)
	if n := r.opts.resources.Config().MaxConcurrentSearches; n > 0 {
		limit = int(n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			path, err := r.route(gctx, req.From, req.To)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = Result{Path: path, Err: translateError(err)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	took := time.Since(start)
	r.opts.metricsCollector.RecordBatchRoute(len(reqs), failed, took)
	r.opts.logger.LogBatchRoute(ctx, len(reqs), failed, took)
	return results, nil
}

// ProcessScores resolves the raw samples of the score table onto edges.
func (r *Router) ProcessScores(ctx context.Context) (scores.ProcessResult, error) {
	if err := r.enter(); err != nil {
		return scores.ProcessResult{}, err
	}
	defer r.leave()
	t := r.opts.scores
	if t == nil {
		return scores.ProcessResult{}, ErrNoScores
	}
	res, err := t.Process(ctx, r.resolver, r.opts.radius)
	r.opts.logger.LogScores(ctx, res.Samples, res.Assigned, res.Duplicates, res.Unresolved, err)
	return res, err
}

// Close releases the snapshot the graph was loaded from. It waits for
// running calls to return; routing after Close fails with ErrClosed.
func (r *Router) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	r.opts.resources.ReleaseMemory(r.reserved)
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
