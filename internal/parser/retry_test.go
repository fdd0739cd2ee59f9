package parser

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		return fmt.Errorf("%w: 0x01", ErrTransactionNotFound)
	})
	if !errors.Is(err, ErrTransactionNotFound) || calls != 1 {
		t.Fatalf("unexpected result: err=%v calls=%d", err, calls)
	}
}

func TestWithRetryExhaustsBudget(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		calls++
		return errors.New("boom")
	})
	if err == nil || calls != 3 {
		t.Fatalf("unexpected result: err=%v calls=%d", err, calls)
	}
}

func TestWithRetryHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := withRetry(ctx, 3, time.Hour, func(context.Context) error {
		return errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestParseTxHashes(t *testing.T) {
	got, err := ParseTxHashes([]string{
		" 0x0101010101010101010101010101010101010101010101010101010101010101 ",
		"",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []common.Hash{common.HexToHash("0x0101010101010101010101010101010101010101010101010101010101010101")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("hashes mismatch: %v", got)
	}

	if _, err := ParseTxHashes([]string{"0x1234"}); err == nil {
		t.Fatalf("expected error for short hash")
	}
	if _, err := ParseTxHashes([]string{"zz"}); err == nil {
		t.Fatalf("expected error for non-hex hash")
	}
}
