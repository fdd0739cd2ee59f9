// Package cache stores results of read-only contract calls that never change
// for a given contract, such as a pool's token pair or a vault's asset.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Kind names the cached lookup.
type Kind string

const (
	KindTokenPair  Kind = "pair"
	KindVaultAsset Kind = "asset"
	KindUnderlying Kind = "underlying"
)

// Cache maps (chain, contract, kind) to a list of addresses.
type Cache interface {
	Get(ctx context.Context, chainID uint64, contract string, kind Kind) ([]string, bool)
	Set(ctx context.Context, chainID uint64, contract string, kind Kind, values []string)
}

func key(chainID uint64, contract string, kind Kind) string {
	return fmt.Sprintf("%d:%s:%s", chainID, strings.ToLower(contract), kind)
}

// Memory is an in-process Cache.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]string
}

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]string)}
}

// Get returns a copy of the cached values.
func (m *Memory) Get(_ context.Context, chainID uint64, contract string, kind Kind) ([]string, bool) {
	m.mu.RLock()
	values, ok := m.data[key(chainID, contract, kind)]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return append([]string(nil), values...), true
}

// Set stores a copy of values, replacing any previous entry.
func (m *Memory) Set(_ context.Context, chainID uint64, contract string, kind Kind, values []string) {
	m.mu.Lock()
	m.data[key(chainID, contract, kind)] = append([]string(nil), values...)
	m.mu.Unlock()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, uint64, string, Kind) ([]string, bool) { return nil, false }

func (Nop) Set(context.Context, uint64, string, Kind, []string) {}
