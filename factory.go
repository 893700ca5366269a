package yang

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/cache"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/reactor"
	"github.com/jacoelho/yang/internal/resolver"
	"github.com/jacoelho/yang/internal/source"
)

// FeaturePredicate reports whether a feature is enabled. A nil predicate
// enables every feature.
type FeaturePredicate func(QName) bool

// Factory assembles schema contexts from a repository and caches them.
// It is safe for concurrent use by multiple goroutines.
//
// Cached contexts are held weakly: an entry lives only while some caller
// still references the context it holds.
type Factory struct {
	repo   Repository
	opts   resolvedFactoryOptions
	caches map[Mode]*cache.Cache[model.SchemaContext]
}

// NewFactory returns a factory reading sources from repo.
func NewFactory(repo Repository, opts FactoryOptions) (*Factory, error) {
	if repo == nil {
		return nil, errors.New("new factory: nil repository")
	}
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("new factory: %w", err)
	}
	return &Factory{
		repo: repo,
		opts: resolved,
		caches: map[Mode]*cache.Cache[model.SchemaContext]{
			ModePlain:  cache.New[model.SchemaContext](resolved.singleFlight),
			ModeSemVer: cache.New[model.SchemaContext](resolved.singleFlight),
		},
	}, nil
}

// CreateSchemaContext fetches ids, checks that their dependencies are
// satisfiable within the fetched set and builds the schema context.
//
// Duplicate ids are dropped, keeping the first occurrence. The result is
// cached under the remaining ids in order, separately per mode. features
// only filters if-feature statements while building; it is not part of
// the cache key, so a cached context is returned whatever features says.
//
// Failures are never cached. Resolution and build failures are returned as
// *errors.SchemaResolutionError; fetch failures are returned as the
// repository reported them, or as errors.ErrFetchTimeout when the fetch
// timeout expired.
func (f *Factory) CreateSchemaContext(ctx context.Context, ids []SourceIdentifier, mode Mode, features FeaturePredicate) (*SchemaContext, error) {
	c, ok := f.caches[mode]
	if !ok {
		return nil, fmt.Errorf("create schema context: unknown mode %s", mode)
	}
	log := f.opts.logger.With(zap.String("build", uuid.NewString()), zap.Stringer("mode", mode))

	requested, dups := dedupe(ids)
	if len(dups) > 0 {
		log.Warn("duplicate source identifiers requested", zap.Stringers("duplicates", dups))
	}
	if features == nil {
		features = f.opts.features
	}

	key := cacheKey(requested)
	sc, hit, err := c.Do(key, func() (*model.SchemaContext, error) {
		return f.assemble(ctx, log, requested, mode, features)
	})
	if err != nil {
		log.Debug("schema context assembly failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	if hit {
		log.Debug("schema context cache hit", zap.String("key", key))
	}
	return sc, nil
}

// CachedContexts returns the number of live cached contexts for mode.
func (f *Factory) CachedContexts(mode Mode) int {
	c, ok := f.caches[mode]
	if !ok {
		return 0
	}
	return c.Len()
}

func (f *Factory) assemble(ctx context.Context, log *zap.Logger, requested []SourceIdentifier, mode Mode, features FeaturePredicate) (*model.SchemaContext, error) {
	fetched, err := f.fetchAll(ctx, requested)
	if err != nil {
		return nil, err
	}
	sources := reconcile(log, requested, fetched, mode)

	entries := make([]resolver.Entry, len(sources))
	for i, src := range sources {
		entries[i] = resolver.Entry{ID: mode.identity(src.ID), Deps: src.Info.Dependencies}
	}
	var policy resolver.Policy = resolver.RevisionPolicy{}
	if mode == ModeSemVer {
		policy = resolver.SemVerPolicy{}
	}
	res := resolver.Resolve(entries, policy)
	log.Debug("dependencies resolved",
		zap.Int("resolved", len(res.Resolved)),
		zap.Int("unresolved", len(res.Unresolved)))
	if !res.OK() {
		return nil, resolutionError(res)
	}

	sc, err := reactor.Build(sources, reactor.Options{
		Registry: f.opts.registry,
		Linker:   res,
		Identity: mode.identity,
		Features: features,
		Logger:   log,
	})
	if err != nil {
		rerr := &yangerrors.SchemaResolutionError{
			Message:  "schema context build failed",
			Resolved: res.Resolved,
			Cause:    err,
		}
		if re, ok := yangerrors.AsReactor(err); ok && re.Source.Name != "" {
			failed := re.Source
			rerr.Source = &failed
		}
		return nil, rerr
	}
	return sc, nil
}

// fetchAll fetches every id concurrently. The first failure cancels the
// remaining fetches and is returned unchanged.
func (f *Factory) fetchAll(ctx context.Context, ids []SourceIdentifier) ([]*ParsedSource, error) {
	fetchCtx := ctx
	if f.opts.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, f.opts.fetchTimeout)
		defer cancel()
	}
	g, gctx := errgroup.WithContext(fetchCtx)
	if f.opts.maxFetches > 0 {
		g.SetLimit(f.opts.maxFetches)
	}
	out := make([]*ParsedSource, len(ids))
	for i, id := range ids {
		g.Go(func() error {
			src, err := f.repo.Fetch(gctx, id)
			if err != nil {
				return err
			}
			if src == nil {
				return fmt.Errorf("fetch %s: %w", id, source.ErrNotFound)
			}
			out[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, yangerrors.FetchTimeout(err)
		}
		return nil, err
	}
	return out, nil
}

// reconcile pairs each fetched source with its request, in request order.
// Sources are keyed by the identifier they report; when two requests yield
// the same source, the first position is kept and the later value wins.
func reconcile(log *zap.Logger, requested []SourceIdentifier, fetched []*ParsedSource, mode Mode) []*ParsedSource {
	var order []SourceIdentifier
	byID := make(map[SourceIdentifier]*ParsedSource, len(fetched))
	for i, src := range fetched {
		want := mode.identity(requested[i])
		actual := mode.identity(src.ID)
		if want != actual {
			log.Warn("source identifier differs from request",
				zap.Stringer("requested", want),
				zap.Stringer("actual", actual))
		}
		if _, dup := byID[actual]; dup {
			log.Warn("duplicate source", zap.Stringer("source", actual))
		} else {
			order = append(order, actual)
		}
		byID[actual] = src
	}
	out := make([]*ParsedSource, len(order))
	for i, id := range order {
		out[i] = byID[id]
	}
	return out
}

func resolutionError(res *resolver.Result) error {
	unsatisfied := make([]yangerrors.Unsatisfied, len(res.Unsatisfied))
	for i, u := range res.Unsatisfied {
		unsatisfied[i] = yangerrors.Unsatisfied{Source: u.Source, Missing: u.Missing}
	}
	return &yangerrors.SchemaResolutionError{
		Message:     "unresolved sources",
		Resolved:    res.Resolved,
		Unresolved:  res.Unresolved,
		Unsatisfied: unsatisfied,
	}
}

// dedupe drops repeated ids, keeping first occurrences in order, and
// returns the dropped ones.
func dedupe(ids []SourceIdentifier) (kept, dropped []SourceIdentifier) {
	seen := make(map[SourceIdentifier]bool, len(ids))
	kept = make([]SourceIdentifier, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			dropped = append(dropped, id)
			continue
		}
		seen[id] = true
		kept = append(kept, id)
	}
	return kept, dropped
}

func cacheKey(ids []SourceIdentifier) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, "\x00")
}

// EnabledFeatures returns a predicate enabling only the listed features.
// Each entry is a feature name, enabled in every module, or
// namespace:name, enabled in that namespace only.
func EnabledFeatures(features ...string) FeaturePredicate {
	global := make(map[string]bool)
	scoped := make(map[QName]bool)
	for _, f := range features {
		i := strings.LastIndexByte(f, ':')
		if i < 0 {
			global[f] = true
			continue
		}
		scoped[QName{Module: model.QNameModule{Namespace: f[:i]}, Name: f[i+1:]}] = true
	}
	return func(q QName) bool {
		if global[q.Name] {
			return true
		}
		return scoped[QName{Module: model.QNameModule{Namespace: q.Module.Namespace}, Name: q.Name}]
	}
}
