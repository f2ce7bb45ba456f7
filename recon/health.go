package recon

import (
	"time"

	"github.com/poolvest/deposit-recon-api/database/models"
	"github.com/poolvest/deposit-recon-api/types"
)

// StallThreshold is how long a transaction may sit in a non-terminal status
// before the payment counts as delayed. Ages strictly greater than the
// threshold are delayed; exactly at the boundary is not.
const StallThreshold = 15 * time.Minute

// Classify derives the health of one payment from its constituents and the
// current time. It is a pure function of the snapshot with no memory: elapsed
// time changes the answer even with no new writes, so callers must re-evaluate
// on every read rather than cache the result. First match wins.
func Classify(
	intent *models.DepositIntent,
	tx *models.PendingTransaction,
	credit *models.CreditedEntry,
	now time.Time,
) types.HealthStatus {
	if credit != nil {
		return types.Settled
	}
	if tx != nil && tx.Status == types.TxCompleted {
		return types.Settled
	}
	if tx != nil && tx.Status == types.TxFailed {
		return types.Failed
	}
	// A matched intent with no tracked transaction is stalled by definition,
	// independent of elapsed time.
	if intent != nil && intent.Status == types.IntentMatched && tx == nil {
		return types.Delayed
	}
	if tx != nil && !tx.Status.Terminal() {
		last := tx.LastTouched()
		if !last.IsZero() && now.Sub(last) > StallThreshold {
			return types.Delayed
		}
	}
	return types.Processing
}

// Health classifies the payment itself.
func (p *UnifiedPayment) Health(now time.Time) types.HealthStatus {
	return Classify(p.Intent, p.PendingTx, p.Credit, now)
}
