package models

import "time"

// CreditedEntry is proof that a transaction's funds were applied to an
// investor's pool balance. Stored flat (one document per credit, indexed by
// tx_hash) rather than nested inside the investor record, so credits can be
// looked up by hash in constant time.
type CreditedEntry struct {
	TxHash     string    `json:"tx_hash" bson:"tx_hash"`
	InvestorID string    `json:"investor_id" bson:"investor_id"`
	PoolType   string    `json:"pool_type" bson:"pool_type"`
	Amount     float64   `json:"amount" bson:"amount"`
	Date       time.Time `json:"date" bson:"date"`
}
