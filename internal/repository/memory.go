// Package repository provides source repositories: an in-memory set of
// parsed sources and a URL-addressed store backed by afs.
package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/jacoelho/yang/internal/source"
)

// Memory serves parsed sources held in memory. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	sources []*source.ParsedSource
}

// NewMemory returns a repository holding sources.
func NewMemory(sources ...*source.ParsedSource) *Memory {
	m := &Memory{}
	for _, src := range sources {
		m.Add(src)
	}
	return m
}

// Add stores src, replacing a source with the same identifier.
func (m *Memory) Add(src *source.ParsedSource) {
	if src == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, have := range m.sources {
		if have.ID == src.ID {
			m.sources[i] = src
			return
		}
	}
	m.sources = append(m.sources, src)
}

// AddText parses YANG text and stores the result.
func (m *Memory) AddText(location string, data []byte) (*source.ParsedSource, error) {
	src, err := source.Parse(data, location)
	if err != nil {
		return nil, err
	}
	m.Add(src)
	return src, nil
}

// Fetch returns the best source matching id: fields set in id must match,
// and among the rest the latest revision, then highest version, wins.
func (m *Memory) Fetch(ctx context.Context, id source.Identifier) (*source.ParsedSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var candidates []*source.ParsedSource
	for _, src := range m.sources {
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

// pickLatest returns the candidate with the latest revision, breaking ties
// by version and then by order.
func pickLatest(candidates []*source.ParsedSource) *source.ParsedSource {
	var best *source.ParsedSource
	for _, c := range candidates {
		if best == nil {
			best = c
			continue
		}
		switch cmp := c.ID.Revision.Compare(best.ID.Revision); {
		case cmp > 0:
			best = c
		case cmp == 0 && c.ID.SemVer.Compare(best.ID.SemVer) > 0:
			best = c
		}
	}
	return best
}
