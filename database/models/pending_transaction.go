package models

import (
	"time"

	"github.com/poolvest/deposit-recon-api/types"
)

// PendingTransaction is an on-chain transaction under active tracking toward
// settlement. FirstSeenAt is set only when the record was discovered by a
// scanner rather than submitted by the user.
type PendingTransaction struct {
	TxHash         string         `json:"tx_hash" bson:"tx_hash"`
	WalletAddress  string         `json:"wallet_address" bson:"wallet_address"`
	PoolType       string         `json:"pool_type" bson:"pool_type"`
	PoolAddress    string         `json:"pool_address" bson:"pool_address"`
	ExpectedAmount float64        `json:"expected_amount" bson:"expected_amount"`
	VerifiedAmount *float64       `json:"verified_amount,omitempty" bson:"verified_amount,omitempty"`
	Status         types.TxStatus `json:"status" bson:"status"`
	RetryCount     int            `json:"retry_count" bson:"retry_count"`
	ErrorMessage   string         `json:"error_message,omitempty" bson:"error_message,omitempty"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	FirstSeenAt    *time.Time     `json:"first_seen_at,omitempty" bson:"first_seen_at,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at" bson:"updated_at"`
}

// LastTouched is the reference point for stall detection: the last settlement
// update if one happened, otherwise creation.
func (tx *PendingTransaction) LastTouched() time.Time {
	if !tx.UpdatedAt.IsZero() {
		return tx.UpdatedAt
	}
	return tx.CreatedAt
}
