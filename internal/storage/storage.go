package storage

import "rebalanceScope/internal/model"

// Storage defines a sink for parsed transactions and their decode failures.
type Storage interface {
	PutTransactions(txs []*model.ParsedTransaction) error
	PutDecodeErrors(errs []model.DecodeError) error
}
