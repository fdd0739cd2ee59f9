package model

// ParsedTransaction is the decoded view of one transaction receipt.
type ParsedTransaction struct {
	TxHash      string            `json:"tx_hash"`
	ChainID     uint64            `json:"chain_id"`
	BlockNumber uint64            `json:"block_number"`
	Timestamp   *uint64           `json:"timestamp,omitempty"`
	Actions     []RebalanceAction `json:"actions"`
	RawLogs     []RawLog          `json:"raw_logs,omitempty"`
	Failures    []DecodeError     `json:"failures,omitempty"`
}
