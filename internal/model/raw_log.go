package model

// RawLog is an undecoded receipt log.
type RawLog struct {
	TxHash      string   `json:"tx_hash,omitempty"`
	BlockNumber uint64   `json:"block_number,omitempty"`
	LogIndex    uint64   `json:"log_index"`
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
}

// Topic0 returns the event signature hash or an empty string.
func (l RawLog) Topic0() string {
	if len(l.Topics) == 0 {
		return ""
	}
	return l.Topics[0]
}
