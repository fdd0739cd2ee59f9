package model

// DecodeError records a decode failure for a recognized log.
type DecodeError struct {
	ChainID  uint64 `json:"chain_id"`
	TxHash   string `json:"tx_hash"`
	LogIndex uint64 `json:"log_index"`
	Address  string `json:"address"`
	Topic0   string `json:"topic0"`
	Event    string `json:"event,omitempty"`
	Error    string `json:"error"`
}
