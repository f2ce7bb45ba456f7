package recon

import (
	"testing"
	"time"

	"github.com/poolvest/deposit-recon-api/database/models"
	"github.com/poolvest/deposit-recon-api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayments() map[string]*UnifiedPayment {
	completed := testTx(hashT1, types.TxCompleted)
	credit := testCredit(hashT1)

	stalled := testTx(hashT2, types.TxProcessing)
	stalled.UpdatedAt = testNow.Add(-40 * time.Minute)
	stalled.WalletAddress = walletB
	stalled.PoolType = "high_yield"
	stalled.CreatedAt = testNow.Add(-50 * time.Minute)

	initiated := testIntent(types.IntentInitiated, "")
	initiated.CreatedAt = testNow.Add(-2 * time.Minute)
	// Distinct amount keeps this intent from re-keying onto the unclaimed
	// completed transaction above.
	initiated.ExpectedAmount = 55

	return Correlate(
		[]models.DepositIntent{initiated},
		[]models.PendingTransaction{completed, stalled},
		[]models.CreditedEntry{credit},
	)
}

func TestListSortsNewestFirst(t *testing.T) {
	rows := List(testPayments(), Filter{}, testNow)
	require.Len(t, rows, 3)

	for i := 1; i < len(rows); i++ {
		require.NotNil(t, rows[i-1].FirstObservedAt)
		require.NotNil(t, rows[i].FirstObservedAt)
		assert.False(t, rows[i-1].FirstObservedAt.Before(*rows[i].FirstObservedAt))
	}
}

func TestListFreeTextIsCaseInsensitiveSubstring(t *testing.T) {
	payments := testPayments()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"wallet fragment uppercased", "B0B", 1},
		{"tx hash fragment", "0xt1", 1},
		{"pool address fragment", "p00l", 3},
		{"no match", "deadbeef", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := List(payments, Filter{Query: tt.query}, testNow)
			assert.Len(t, rows, tt.want)
		})
	}
}

func TestListFiltersCompose(t *testing.T) {
	payments := testPayments()

	rows := List(payments, Filter{
		Query:    "b0b",
		PoolType: "high_yield",
		Health:   types.Delayed,
	}, testNow)
	require.Len(t, rows, 1)
	assert.Equal(t, walletB, rows[0].WalletAddress)

	// Same query with a mismatched pool type must return nothing: AND semantics.
	rows = List(payments, Filter{Query: "b0b", PoolType: "traditional"}, testNow)
	assert.Empty(t, rows)
}

func TestListHealthFilter(t *testing.T) {
	rows := List(testPayments(), Filter{Health: types.Settled}, testNow)
	require.Len(t, rows, 1)
	assert.Equal(t, "Credited", rows[0].CurrentState)
	assert.NotEqual(t, Placeholder, rows[0].TotalTime)
}

func TestListRowFields(t *testing.T) {
	rows := List(testPayments(), Filter{Health: types.Delayed}, testNow)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, hashT2, row.TxHash)
	assert.Equal(t, types.PathFrontend, row.PathType)
	assert.Equal(t, "Processing settlement", row.CurrentState)
	assert.Equal(t, 1, row.FlagCount)
	assert.Equal(t, Placeholder, row.TotalTime)
}

func TestSummaryBucketCounts(t *testing.T) {
	counts := Summary(testPayments(), testNow)

	assert.Equal(t, 1, counts[types.Settled])
	assert.Equal(t, 1, counts[types.Delayed])
	assert.Equal(t, 1, counts[types.Processing])
	assert.Equal(t, 0, counts[types.Failed])
}
