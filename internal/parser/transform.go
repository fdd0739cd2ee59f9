package parser

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"rebalanceScope/internal/model"
)

// buildRawLog converts a receipt log. position is the log's index within the
// receipt, which is what actions report as their log index.
func buildRawLog(log *types.Log, position int) model.RawLog {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	return model.RawLog{
		TxHash:      log.TxHash.Hex(),
		BlockNumber: log.BlockNumber,
		LogIndex:    uint64(position),
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
	}
}
