package recon

import (
	"fmt"
	"time"

	"github.com/poolvest/deposit-recon-api/types"
)

// Flag is an operator-facing anomaly signal. Flags are advisory: they never
// block viewing a payment.
type Flag struct {
	Severity        types.Severity `json:"severity"`
	Message         string         `json:"message"`
	SuggestedAction string         `json:"suggested_action"`
}

// Flags evaluates the diagnostic rules over one payment. Evaluation order is
// fixed and every applicable rule fires, so flag lists are reproducible for
// the same input and instant.
func (p *UnifiedPayment) Flags(now time.Time) []Flag {
	var flags []Flag

	if p.Intent != nil && p.Intent.Status == types.IntentMatched && p.PendingTx == nil {
		flags = append(flags, Flag{
			Severity: types.SeverityCritical,
			Message: fmt.Sprintf("intent matched to transaction %s but no pending transaction is tracked",
				p.Intent.MatchedTxHash),
			SuggestedAction: "run reconciliation to create the missing pending transaction record",
		})
	}

	if p.PendingTx != nil && !p.PendingTx.Status.Terminal() {
		last := p.PendingTx.LastTouched()
		if !last.IsZero() {
			if age := now.Sub(last); age > StallThreshold {
				flags = append(flags, Flag{
					Severity: types.SeverityWarning,
					Message: fmt.Sprintf("transaction stuck in status %q for %d minutes",
						p.PendingTx.Status, int(age.Minutes())),
					SuggestedAction: "settlement worker should advance or fail the transaction",
				})
			}
		}
	}

	if p.PendingTx != nil && p.PendingTx.Status == types.TxFailed && p.PendingTx.ErrorMessage != "" {
		flags = append(flags, Flag{
			Severity:        types.SeverityError,
			Message:         fmt.Sprintf("transaction failed: %s", p.PendingTx.ErrorMessage),
			SuggestedAction: "manual investigation required",
		})
	}

	return flags
}
