package chain

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestRegistryUnsupportedChain(t *testing.T) {
	reg := NewRegistry(map[uint64]string{1: "http://127.0.0.1:8545", 56: ""}, nil)

	if _, err := reg.Client(context.Background(), 10); !errors.Is(err, ErrUnsupportedChain) {
		t.Fatalf("expected ErrUnsupportedChain, got %v", err)
	}
	if _, err := reg.Endpoint(56); !errors.Is(err, ErrUnsupportedChain) {
		t.Fatalf("empty endpoint must count as unsupported, got %v", err)
	}

	url, err := reg.Endpoint(1)
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	if url != "http://127.0.0.1:8545" {
		t.Fatalf("endpoint mismatch: %s", url)
	}
}

func TestRegistryChainIDs(t *testing.T) {
	reg := NewRegistry(map[uint64]string{8453: "a", 1: "b", 42161: "c"}, nil)
	if got := reg.ChainIDs(); !reflect.DeepEqual(got, []uint64{1, 8453, 42161}) {
		t.Fatalf("chain ids mismatch: %v", got)
	}
}
