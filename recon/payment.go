package recon

import (
	"time"

	"github.com/poolvest/deposit-recon-api/database/models"
	"github.com/poolvest/deposit-recon-api/types"
)

// UnifiedPayment is the merged view of one real-world deposit across the three
// source records. It always carries at least one constituent and never loses
// one once attached. Health, flags and state labels are derived at read time,
// never stored on the struct.
type UnifiedPayment struct {
	Key       PaymentKey                 `json:"key"`
	Intent    *models.DepositIntent      `json:"intent,omitempty"`
	PendingTx *models.PendingTransaction `json:"pending_tx,omitempty"`
	Credit    *models.CreditedEntry      `json:"credit,omitempty"`
	PathType  types.PathType             `json:"path_type"`
}

// TxHash returns the on-chain hash if any constituent carries one.
func (p *UnifiedPayment) TxHash() string {
	switch {
	case p.PendingTx != nil:
		return p.PendingTx.TxHash
	case p.Credit != nil:
		return p.Credit.TxHash
	case p.Intent != nil:
		return p.Intent.MatchedTxHash
	}
	return ""
}

// WalletAddress from the most authoritative constituent that carries one.
func (p *UnifiedPayment) WalletAddress() string {
	if p.PendingTx != nil && p.PendingTx.WalletAddress != "" {
		return p.PendingTx.WalletAddress
	}
	if p.Intent != nil {
		return p.Intent.WalletAddress
	}
	return ""
}

func (p *UnifiedPayment) PoolType() string {
	if p.PendingTx != nil && p.PendingTx.PoolType != "" {
		return p.PendingTx.PoolType
	}
	if p.Intent != nil && p.Intent.PoolType != "" {
		return p.Intent.PoolType
	}
	if p.Credit != nil {
		return p.Credit.PoolType
	}
	return ""
}

func (p *UnifiedPayment) PoolAddress() string {
	if p.PendingTx != nil && p.PendingTx.PoolAddress != "" {
		return p.PendingTx.PoolAddress
	}
	if p.Intent != nil {
		return p.Intent.PoolAddress
	}
	return ""
}

func (p *UnifiedPayment) ExpectedAmount() float64 {
	if p.PendingTx != nil && p.PendingTx.ExpectedAmount != 0 {
		return p.PendingTx.ExpectedAmount
	}
	if p.Intent != nil && p.Intent.ExpectedAmount != 0 {
		return p.Intent.ExpectedAmount
	}
	if p.Credit != nil {
		return p.Credit.Amount
	}
	return 0
}

// FirstObservedAt is the earliest timestamp any constituent carries. Used for
// newest-first sorting and as the start point of total elapsed time. Zero when
// every constituent is missing its timestamp.
func (p *UnifiedPayment) FirstObservedAt() time.Time {
	var first time.Time
	consider := func(t time.Time) {
		if t.IsZero() {
			return
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
	}
	if p.Intent != nil {
		consider(p.Intent.CreatedAt)
	}
	if p.PendingTx != nil {
		consider(p.PendingTx.CreatedAt)
		if p.PendingTx.FirstSeenAt != nil {
			consider(*p.PendingTx.FirstSeenAt)
		}
	}
	if p.Credit != nil {
		consider(p.Credit.Date)
	}
	return first
}

// TotalTime is minutes from first observation to credit. The second return is
// false when either end is unknown; callers render a placeholder, never zero.
func (p *UnifiedPayment) TotalTime() (float64, bool) {
	if p.Credit == nil || p.Credit.Date.IsZero() {
		return 0, false
	}
	start := p.FirstObservedAt()
	if start.IsZero() {
		return 0, false
	}
	return p.Credit.Date.Sub(start).Minutes(), true
}

// CurrentState is the operator-facing label for where the payment sits right
// now, derived from whichever constituents are present.
func (p *UnifiedPayment) CurrentState() string {
	if p.Credit != nil {
		return "Credited"
	}
	if p.PendingTx != nil {
		switch p.PendingTx.Status {
		case types.TxPending:
			return "Awaiting confirmations"
		case types.TxVerifying:
			return "Verifying on-chain"
		case types.TxProcessing:
			return "Processing settlement"
		case types.TxCompleted:
			return "Completed"
		case types.TxFailed:
			return "Failed"
		default:
			return string(p.PendingTx.Status)
		}
	}
	if p.Intent != nil && p.Intent.Status == types.IntentMatched {
		return "Matched, not tracked"
	}
	return "Awaiting on-chain match"
}
