package chain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrUnsupportedChain is returned when no RPC endpoint is configured for a chain id.
var ErrUnsupportedChain = errors.New("unsupported chain")

// Registry maps chain ids to RPC endpoints and dials clients lazily.
type Registry struct {
	endpoints map[uint64]string
	logger    *zap.Logger

	mu      sync.Mutex
	clients map[uint64]*Client
}

// NewRegistry builds a Registry from a static chain id -> RPC URL mapping.
func NewRegistry(endpoints map[uint64]string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	copied := make(map[uint64]string, len(endpoints))
	for id, url := range endpoints {
		if url == "" {
			continue
		}
		copied[id] = url
	}
	return &Registry{
		endpoints: copied,
		logger:    logger,
		clients:   make(map[uint64]*Client),
	}
}

// Endpoint returns the configured RPC URL for a chain.
func (r *Registry) Endpoint(chainID uint64) (string, error) {
	url, ok := r.endpoints[chainID]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}
	return url, nil
}

// ChainIDs returns the configured chain ids in ascending order.
func (r *Registry) ChainIDs() []uint64 {
	ids := make([]uint64, 0, len(r.endpoints))
	for id := range r.endpoints {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Client returns a connected client for the chain, dialing on first use.
// The remote chain id must match the requested one.
func (r *Registry) Client(ctx context.Context, chainID uint64) (*Client, error) {
	url, err := r.Endpoint(chainID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[chainID]; ok {
		return client, nil
	}

	client, err := NewClient(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect rpc for chain %d: %w", chainID, err)
	}

	remote, err := client.GetChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	if !remote.IsUint64() || remote.Uint64() != chainID {
		client.Close()
		return nil, fmt.Errorf("rpc endpoint reports chain id %s, expected %d", remote, chainID)
	}

	r.logger.Info("rpc connected", zap.Uint64("chain_id", chainID))
	r.clients[chainID] = client
	return client, nil
}

// Close closes every dialed client.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, client := range r.clients {
		client.Close()
		delete(r.clients, id)
	}
}
