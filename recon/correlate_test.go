package recon

import (
	"testing"
	"time"

	"github.com/poolvest/deposit-recon-api/database/models"
	"github.com/poolvest/deposit-recon-api/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelateSeedsOnePaymentPerTransaction(t *testing.T) {
	txs := []models.PendingTransaction{
		testTx(hashT1, types.TxPending),
		testTx(hashT2, types.TxProcessing),
	}

	payments := Correlate(nil, txs, nil)
	require.Len(t, payments, 2)
	assert.NotNil(t, payments[ConfirmedKey(hashT1).String()].PendingTx)
	assert.NotNil(t, payments[ConfirmedKey(hashT2).String()].PendingTx)
}

func TestCorrelateSkipsRecordsWithoutJoinKey(t *testing.T) {
	txs := []models.PendingTransaction{{Status: types.TxPending}} // no hash
	intents := []models.DepositIntent{{Status: types.IntentInitiated}}
	credits := []models.CreditedEntry{{Amount: 50}}

	payments := Correlate(intents, txs, credits)
	assert.Empty(t, payments)
}

func TestCorrelateMatchedIntentJoinsOnHash(t *testing.T) {
	intent := testIntent(types.IntentMatched, hashT1)
	tx := testTx(hashT1, types.TxVerifying)

	payments := Correlate([]models.DepositIntent{intent}, []models.PendingTransaction{tx}, nil)
	require.Len(t, payments, 1)

	p := payments[ConfirmedKey(hashT1).String()]
	require.NotNil(t, p)
	assert.NotNil(t, p.Intent)
	assert.NotNil(t, p.PendingTx)
}

func TestCorrelateMatchedIntentWithoutTxCreatesGapPayment(t *testing.T) {
	intent := testIntent(types.IntentMatched, hashT1)

	payments := Correlate([]models.DepositIntent{intent}, nil, nil)
	require.Len(t, payments, 1)

	p := payments[ConfirmedKey(hashT1).String()]
	require.NotNil(t, p)
	assert.Nil(t, p.PendingTx)
	assert.Equal(t, types.Delayed, p.Health(testNow))

	flags := p.Flags(testNow)
	require.Len(t, flags, 1)
	assert.Equal(t, types.SeverityCritical, flags[0].Severity)
	assert.Contains(t, flags[0].Message, hashT1)
}

func TestCorrelateInitiatedIntentGetsProvisionalKey(t *testing.T) {
	intent := testIntent(types.IntentInitiated, "")

	payments := Correlate([]models.DepositIntent{intent}, nil, nil)
	require.Len(t, payments, 1)

	for _, p := range payments {
		assert.Equal(t, KeyProvisional, p.Key.Kind)
		assert.Equal(t, types.Processing, p.Health(testNow))
		assert.Equal(t, types.PathFrontend, p.PathType)
		assert.Empty(t, p.Flags(testNow))
	}
}

func TestCorrelateCreditAttachesToExistingPayment(t *testing.T) {
	tx := testTx(hashT1, types.TxCompleted)
	credit := testCredit(hashT1)

	payments := Correlate(nil, []models.PendingTransaction{tx}, []models.CreditedEntry{credit})
	p := payments[ConfirmedKey(hashT1).String()]
	require.NotNil(t, p)
	require.NotNil(t, p.Credit)
	assert.Equal(t, types.Settled, p.Health(testNow))
}

func TestCorrelatePathTypeInference(t *testing.T) {
	userTx := testTx(hashT1, types.TxPending)

	scannedTx := testTx(hashT2, types.TxPending)
	scannedTx.FirstSeenAt = ptr(testNow.Add(-18 * time.Minute))

	payments := Correlate(nil, []models.PendingTransaction{userTx, scannedTx}, nil)
	assert.Equal(t, types.PathFrontend, payments[ConfirmedKey(hashT1).String()].PathType)
	assert.Equal(t, types.PathScanner, payments[ConfirmedKey(hashT2).String()].PathType)
}

func TestCorrelateIdempotence(t *testing.T) {
	intents := []models.DepositIntent{
		testIntent(types.IntentMatched, hashT1),
		testIntent(types.IntentInitiated, ""),
	}
	txs := []models.PendingTransaction{testTx(hashT1, types.TxProcessing)}
	credits := []models.CreditedEntry{testCredit(hashT1)}

	first := Correlate(intents, txs, credits)
	second := Correlate(intents, txs, credits)

	assert.Equal(t, List(first, Filter{}, testNow), List(second, Filter{}, testNow))
}

func TestCorrelateMonotonicMerge(t *testing.T) {
	intents := []models.DepositIntent{testIntent(types.IntentMatched, hashT1)}
	txs := []models.PendingTransaction{testTx(hashT1, types.TxProcessing)}

	before := Correlate(intents, txs, nil)
	beforeRow := List(before, Filter{Query: hashT1}, testNow)

	// An unrelated transaction must not disturb the existing payment.
	unrelated := testTx(hashT2, types.TxPending)
	unrelated.WalletAddress = walletB
	after := Correlate(intents, append(txs, unrelated), nil)
	afterRow := List(after, Filter{Query: hashT1}, testNow)

	assert.Equal(t, beforeRow, afterRow)
	assert.Len(t, after, len(before)+1)
}

func TestRekeyProvisionalMergesIntoConfirmed(t *testing.T) {
	// An initiated intent (no hash yet) and a tracked transaction for the same
	// wallet/pool/amount must collapse into one payment, keyed by the hash.
	intent := testIntent(types.IntentInitiated, "")
	tx := testTx(hashT1, types.TxVerifying)

	payments := Correlate([]models.DepositIntent{intent}, []models.PendingTransaction{tx}, nil)
	require.Len(t, payments, 1)

	p := payments[ConfirmedKey(hashT1).String()]
	require.NotNil(t, p)
	assert.Equal(t, KeyConfirmed, p.Key.Kind)
	assert.NotNil(t, p.Intent)
	assert.NotNil(t, p.PendingTx)
}

func TestRekeyPrefersEarliestTransaction(t *testing.T) {
	intent := testIntent(types.IntentInitiated, "")

	early := testTx(hashT2, types.TxPending)
	early.CreatedAt = testNow.Add(-40 * time.Minute)
	late := testTx(hashT1, types.TxPending)

	payments := Correlate([]models.DepositIntent{intent}, []models.PendingTransaction{early, late}, nil)
	require.Len(t, payments, 2)

	assert.NotNil(t, payments[ConfirmedKey(hashT2).String()].Intent)
	assert.Nil(t, payments[ConfirmedKey(hashT1).String()].Intent)
}

func TestRekeySkipsClaimedTransactions(t *testing.T) {
	// The transaction already carries its own matched intent, so the
	// provisional payment must stay separate.
	matched := testIntent(types.IntentMatched, hashT1)
	initiated := testIntent(types.IntentInitiated, "")
	initiated.WalletAddress = walletA

	tx := testTx(hashT1, types.TxProcessing)

	payments := Correlate(
		[]models.DepositIntent{matched, initiated},
		[]models.PendingTransaction{tx},
		nil,
	)
	require.Len(t, payments, 2)

	confirmed := payments[ConfirmedKey(hashT1).String()]
	require.NotNil(t, confirmed.Intent)
	assert.Equal(t, types.IntentMatched, confirmed.Intent.Status)
}

func TestRekeyRequiresExactAttributes(t *testing.T) {
	intent := testIntent(types.IntentInitiated, "")
	tx := testTx(hashT1, types.TxPending)
	tx.ExpectedAmount = 250 // different deposit

	payments := Correlate([]models.DepositIntent{intent}, []models.PendingTransaction{tx}, nil)
	assert.Len(t, payments, 2)
}

func TestCorrelateFirstAttachedConstituentWins(t *testing.T) {
	a := testIntent(types.IntentMatched, hashT1)
	b := testIntent(types.IntentMatched, hashT1)
	b.ExpectedAmount = 999 // duplicate input, later record differs

	payments := Correlate([]models.DepositIntent{a, b}, nil, nil)
	require.Len(t, payments, 1)

	p := payments[ConfirmedKey(hashT1).String()]
	assert.Equal(t, 100.0, p.Intent.ExpectedAmount)
}
