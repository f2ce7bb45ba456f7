package models

import (
	"time"

	"github.com/poolvest/deposit-recon-api/types"
)

// DepositIntent is a user- or scanner-declared expectation that a deposit will
// arrive. MatchedTxHash is non-empty iff Status is "matched".
type DepositIntent struct {
	WalletAddress  string             `json:"wallet_address" bson:"wallet_address"`
	PoolType       string             `json:"pool_type" bson:"pool_type"`
	PoolAddress    string             `json:"pool_address" bson:"pool_address"`
	ExpectedAmount float64            `json:"expected_amount" bson:"expected_amount"`
	Status         types.IntentStatus `json:"status" bson:"status"`
	MatchedTxHash  string             `json:"matched_tx_hash,omitempty" bson:"matched_tx_hash,omitempty"`
	ScanStartBlock uint64             `json:"scan_start_block,omitempty" bson:"scan_start_block,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}
