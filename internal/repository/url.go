package repository

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"go.uber.org/zap"

	"github.com/jacoelho/yang/internal/source"
)

const yangExt = ".yang"

// URL serves sources stored under a base URL (file://, mem://, or any
// scheme afs supports). Files are named name.yang or name@revision.yang;
// subdirectories are searched too. The listing and parsed files are cached
// until Invalidate.
type URL struct {
	fs   afs.Service
	base string

	mu     sync.Mutex
	index  []indexEntry
	parsed map[string]*source.ParsedSource
}

type indexEntry struct {
	id  source.Identifier
	url string
}

// NewURL returns a repository over base using the default afs service.
func NewURL(base string) *URL {
	return NewURLWithService(afs.New(), base)
}

// NewURLWithService returns a repository over base using fs.
func NewURLWithService(fs afs.Service, base string) *URL {
	return &URL{
		fs:     fs,
		base:   strings.TrimSuffix(base, "/"),
		parsed: make(map[string]*source.ParsedSource),
	}
}

// Base returns the base URL.
func (r *URL) Base() string { return r.base }

// Invalidate drops the cached listing and parsed files.
func (r *URL) Invalidate() {
	r.mu.Lock()
	r.index = nil
	r.parsed = make(map[string]*source.ParsedSource)
	r.mu.Unlock()
}

// Fetch returns the best source matching id. Candidates are selected by
// file name; a file named without a revision is checked against the
// revision it declares.
func (r *URL) Fetch(ctx context.Context, id source.Identifier) (*source.ParsedSource, error) {
	index, err := r.listing(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	var candidates []*source.ParsedSource
	for _, e := range index {
		if e.id.Name != id.Name {
			continue
		}
		if !id.Revision.IsZero() && !e.id.Revision.IsZero() && e.id.Revision != id.Revision {
			continue
		}
		src, err := r.parse(ctx, e.url)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", id, err)
		}
		if source.Matches(id, src.ID) {
			candidates = append(candidates, src)
		}
	}
	best := pickLatest(candidates)
	if best == nil {
		return nil, fmt.Errorf("fetch %s: %w", id, source.ErrNotFound)
	}
	return best, nil
}

// Load parses the file at location, relative to the base URL.
func (r *URL) Load(ctx context.Context, location string) (*source.ParsedSource, error) {
	rel, err := cleanLocation(location)
	if err != nil {
		return nil, err
	}
	return r.parse(ctx, url.Join(r.base, rel))
}

func (r *URL) listing(ctx context.Context) ([]indexEntry, error) {
	r.mu.Lock()
	index := r.index
	r.mu.Unlock()
	if index != nil {
		return index, nil
	}
	objects, err := r.fs.List(ctx, r.base, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.base, err)
	}
	index = make([]indexEntry, 0, len(objects))
	for _, obj := range objects {
		if obj.IsDir() || !strings.HasSuffix(obj.Name(), yangExt) {
			continue
		}
		id, err := source.ParseIdentifier(strings.TrimSuffix(obj.Name(), yangExt))
		if err != nil {
			continue
		}
		index = append(index, indexEntry{id: id, url: obj.URL()})
	}
	slices.SortFunc(index, func(a, b indexEntry) int { return strings.Compare(a.url, b.url) })
	r.mu.Lock()
	r.index = index
	r.mu.Unlock()
	return index, nil
}

func (r *URL) parse(ctx context.Context, u string) (*source.ParsedSource, error) {
	r.mu.Lock()
	src, ok := r.parsed[u]
	r.mu.Unlock()
	if ok {
		return src, nil
	}
	data, err := r.fs.DownloadWithURL(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", u, err)
	}
	src, err = source.Parse(data, u)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.parsed[u] = src
	r.mu.Unlock()
	return src, nil
}

// cleanLocation validates a location relative to the base URL.
func cleanLocation(location string) (string, error) {
	if location == "" {
		return "", errors.New("location is empty")
	}
	if strings.Contains(location, "\\") {
		return "", fmt.Errorf("location contains backslash: %q", location)
	}
	if strings.HasPrefix(location, "/") {
		return "", fmt.Errorf("location must be relative: %q", location)
	}
	if slices.Contains(strings.Split(location, "/"), "") {
		return "", fmt.Errorf("invalid location segment: %q", location)
	}
	canonical := path.Clean(location)
	if canonical == "." {
		return "", errors.New("location is empty")
	}
	if canonical == ".." || strings.HasPrefix(canonical, "../") {
		return "", fmt.Errorf("location escapes base: %q", location)
	}
	return canonical, nil
}

// ErrNotLocal reports a Watch on a base URL that is not a local directory.
var ErrNotLocal = errors.New("watch requires a file:// base")

// Watch invalidates the repository whenever a .yang file under a local base
// directory is created, written, removed or renamed. It blocks until ctx is
// done.
func (r *URL) Watch(ctx context.Context, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if url.Scheme(r.base, file.Scheme) != file.Scheme {
		return ErrNotLocal
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", r.base, err)
	}
	defer w.Close()

	dirs := []string{url.Path(r.base)}
	objects, err := r.fs.List(ctx, r.base, option.NewRecursive(true))
	if err != nil {
		return fmt.Errorf("watch %s: %w", r.base, err)
	}
	for _, obj := range objects {
		if obj.IsDir() {
			dirs = append(dirs, url.Path(obj.URL()))
		}
	}
	slices.Sort(dirs)
	for _, dir := range slices.Compact(dirs) {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	logger.Debug("watching sources", zap.String("base", r.base), zap.Int("directories", len(dirs)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, yangExt) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("source changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			r.Invalidate()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("source watch error", zap.Error(err))
		}
	}
}
