package recon

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/poolvest/deposit-recon-api/types"
)

// Placeholder is rendered wherever a value cannot be computed from the data on
// hand. Missing data is shown explicitly, never as zero or a guess.
const Placeholder = "—"

// Step is one entry in a payment's lifecycle timeline.
type Step struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Source      types.StepSource `json:"source"`
	Timestamp   *time.Time       `json:"timestamp,omitempty"`
	Details     []Detail         `json:"details,omitempty"`
	Warning     string           `json:"warning,omitempty"`
}

// Detail is a structured label/value row under a step.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Durations are the four independent latency metrics shown alongside the
// timeline. Each is a formatted string and falls back to the placeholder when
// its endpoints are incomplete.
type Durations struct {
	TotalElapsed       string `json:"total_elapsed"`
	IntentToPending    string `json:"intent_to_pending"`
	InCurrentStatus    string `json:"in_current_status"`
	ProcessingToCredit string `json:"processing_to_credit"`
}

// Timeline is the drill-down view for one payment.
type Timeline struct {
	Steps     []Step    `json:"steps"`
	Durations Durations `json:"durations"`
}

// BuildTimeline converts one payment into an ordered, human-readable sequence
// of lifecycle steps. Steps are conditional on data presence; a payment with
// all three constituents produces five.
func BuildTimeline(p *UnifiedPayment, now time.Time) Timeline {
	var steps []Step

	if p.Intent != nil {
		source := types.SourceFrontend
		desc := "User declared a deposit on the platform"
		if p.Intent.ScanStartBlock > 0 {
			source = types.SourceScanner
			desc = fmt.Sprintf("Scanner inferred a deposit, watching from block %d", p.Intent.ScanStartBlock)
		}
		steps = append(steps, Step{
			Title:       "Intent created",
			Description: desc,
			Source:      source,
			Timestamp:   timePtr(p.Intent.CreatedAt),
			Details: []Detail{
				{Label: "Wallet", Value: p.Intent.WalletAddress},
				{Label: "Pool", Value: fmt.Sprintf("%s (%s)", p.Intent.PoolType, p.Intent.PoolAddress)},
				{Label: "Expected amount", Value: fmt.Sprintf("%g", p.Intent.ExpectedAmount)},
			},
		})
	}

	if p.Intent != nil && p.Intent.Status == types.IntentMatched {
		step := Step{
			Title:       "Blockchain match found",
			Description: "Chain scanning correlated the intent to an observed transaction",
			Source:      types.SourceScanner,
			Timestamp:   timePtr(p.Intent.UpdatedAt),
			Details: []Detail{
				{Label: "Transaction", Value: TruncateHash(p.Intent.MatchedTxHash)},
			},
		}
		if p.PendingTx == nil {
			step.Warning = fmt.Sprintf("no pending transaction is tracked for %s; reconciliation should create one",
				p.Intent.MatchedTxHash)
		}
		steps = append(steps, step)
	}

	if tx := p.PendingTx; tx != nil {
		source := types.SourceFrontend
		desc := "User submitted the transaction for tracking"
		switch {
		case p.Intent != nil && p.Intent.Status == types.IntentMatched:
			source = types.SourceReconciliation
			desc = "Reconciliation recorded the transaction from the matched intent"
		case tx.FirstSeenAt != nil:
			source = types.SourceScanner
			desc = "Background scanning discovered the transaction on-chain"
		}
		details := []Detail{
			{Label: "Transaction", Value: TruncateHash(tx.TxHash)},
			{Label: "Status", Value: string(tx.Status)},
		}
		if tx.RetryCount > 0 {
			details = append(details, Detail{Label: "Retries", Value: fmt.Sprintf("%d", tx.RetryCount)})
		}
		steps = append(steps, Step{
			Title:       "Pending transaction recorded",
			Description: desc,
			Source:      source,
			Timestamp:   timePtr(tx.CreatedAt),
			Details:     details,
		})

		switch tx.Status {
		case types.TxFailed:
			step := Step{
				Title:       "Transaction failed",
				Description: "Settlement gave up on the transaction",
				Source:      types.SourceSettlementWorker,
				Timestamp:   timePtr(tx.UpdatedAt),
			}
			if tx.ErrorMessage != "" {
				step.Details = []Detail{{Label: "Error", Value: tx.ErrorMessage}}
			}
			steps = append(steps, step)
		case types.TxCompleted:
			steps = append(steps, Step{
				Title:       "Settlement completed",
				Description: "Confirmation depth and verification finished",
				Source:      types.SourceSettlementWorker,
				Timestamp:   timePtr(tx.UpdatedAt),
				Details:     verifiedAmountDetail(tx.VerifiedAmount),
			})
		default:
			step := Step{
				Title:       "Processing",
				Description: fmt.Sprintf("Transaction is %s, waiting on the settlement worker", tx.Status),
				Source:      types.SourceSettlementWorker,
				Timestamp:   timePtr(tx.LastTouched()),
			}
			if last := tx.LastTouched(); !last.IsZero() {
				if age := now.Sub(last); age > StallThreshold {
					step.Warning = fmt.Sprintf("no progress for %d minutes", int(age.Minutes()))
				}
			}
			steps = append(steps, step)
		}
	}

	if p.Credit != nil {
		steps = append(steps, Step{
			Title:       "Credited",
			Description: "Funds were applied to the investor's pool balance",
			Source:      types.SourceSettlementWorker,
			Timestamp:   timePtr(p.Credit.Date),
			Details: []Detail{
				{Label: "Amount", Value: fmt.Sprintf("%g", p.Credit.Amount)},
				{Label: "Investor", Value: p.Credit.InvestorID},
			},
		})
	}

	return Timeline{Steps: steps, Durations: buildDurations(p, now)}
}

func buildDurations(p *UnifiedPayment, now time.Time) Durations {
	d := Durations{
		TotalElapsed:       Placeholder,
		IntentToPending:    Placeholder,
		InCurrentStatus:    Placeholder,
		ProcessingToCredit: Placeholder,
	}

	start := p.FirstObservedAt()
	if !start.IsZero() {
		if p.Credit != nil && !p.Credit.Date.IsZero() {
			d.TotalElapsed = formatMinutes(p.Credit.Date.Sub(start))
		} else {
			d.TotalElapsed = formatMinutes(now.Sub(start)) + " (still in progress)"
		}
	}

	if p.Intent != nil && p.PendingTx != nil &&
		!p.Intent.CreatedAt.IsZero() && !p.PendingTx.CreatedAt.IsZero() {
		d.IntentToPending = formatMinutes(p.PendingTx.CreatedAt.Sub(p.Intent.CreatedAt))
	}

	if p.PendingTx != nil {
		if last := p.PendingTx.LastTouched(); !last.IsZero() {
			d.InCurrentStatus = formatMinutes(now.Sub(last))
		}
	}

	if p.PendingTx != nil && p.Credit != nil &&
		!p.PendingTx.CreatedAt.IsZero() && !p.Credit.Date.IsZero() {
		d.ProcessingToCredit = formatMinutes(p.Credit.Date.Sub(p.PendingTx.CreatedAt))
	}

	return d
}

// TruncateHash normalizes a transaction hash and shortens it for display.
// Inputs that are not a full 32-byte hash are returned untouched.
func TruncateHash(hash string) string {
	if !isTxHash(hash) {
		return hash
	}
	h := common.HexToHash(hash).Hex()
	return h[:10] + "…" + h[len(h)-8:]
}

func isTxHash(s string) bool {
	return len(s) == 2+2*common.HashLength && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func formatMinutes(d time.Duration) string {
	m := int(d.Minutes())
	if m < 0 {
		m = 0
	}
	if m >= 60 {
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	}
	return fmt.Sprintf("%dm", m)
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func verifiedAmountDetail(v *float64) []Detail {
	if v == nil {
		return nil
	}
	return []Detail{{Label: "Verified amount", Value: fmt.Sprintf("%g", *v)}}
}
