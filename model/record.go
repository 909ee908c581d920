package model

import (
	"time"
)

// Record is a persisted UTXO reference. (TxID, OutputIndex) is unique.
type Record struct {
	TxID         string    `json:"txid" bson:"txid"`
	OutputIndex  uint32    `json:"outputIndex" bson:"outputIndex"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	SpendingTxID *string   `json:"spendingTxid,omitempty" bson:"spendingTxid,omitempty"`
}

// UTXORef is the projection of a Record handed to callers.
type UTXORef struct {
	TxID        string `json:"txid" bson:"txid"`
	OutputIndex uint32 `json:"outputIndex" bson:"outputIndex"`
}

func (r *Record) Ref() *UTXORef {
	return &UTXORef{TxID: r.TxID, OutputIndex: r.OutputIndex}
}

// Less orders records by creation time, then by (TxID, OutputIndex) so that
// records sharing a timestamp still have a total order.
func (r *Record) Less(other *Record) bool {
	if !r.CreatedAt.Equal(other.CreatedAt) {
		return r.CreatedAt.Before(other.CreatedAt)
	}

	if r.TxID != other.TxID {
		return r.TxID < other.TxID
	}

	return r.OutputIndex < other.OutputIndex
}
