package recon

import (
	"time"

	"github.com/poolvest/deposit-recon-api/database/models"
	"github.com/poolvest/deposit-recon-api/types"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const (
	walletA = "0xA11ce00000000000000000000000000000000001"
	walletB = "0xB0b0000000000000000000000000000000000002"
	poolX   = "0xP00l0000000000000000000000000000000000aa"
	hashT1  = "0xT1"
	hashT2  = "0xT2"
)

func testIntent(status types.IntentStatus, matchedHash string) models.DepositIntent {
	return models.DepositIntent{
		WalletAddress:  walletA,
		PoolType:       "traditional",
		PoolAddress:    poolX,
		ExpectedAmount: 100,
		Status:         status,
		MatchedTxHash:  matchedHash,
		CreatedAt:      testNow.Add(-30 * time.Minute),
		UpdatedAt:      testNow.Add(-25 * time.Minute),
	}
}

func testTx(hash string, status types.TxStatus) models.PendingTransaction {
	return models.PendingTransaction{
		TxHash:         hash,
		WalletAddress:  walletA,
		PoolType:       "traditional",
		PoolAddress:    poolX,
		ExpectedAmount: 100,
		Status:         status,
		CreatedAt:      testNow.Add(-20 * time.Minute),
		UpdatedAt:      testNow.Add(-10 * time.Minute),
	}
}

func testCredit(hash string) models.CreditedEntry {
	return models.CreditedEntry{
		TxHash:     hash,
		InvestorID: "inv-1",
		PoolType:   "traditional",
		Amount:     100,
		Date:       testNow.Add(-5 * time.Minute),
	}
}

func ptr[T any](v T) *T { return &v }
