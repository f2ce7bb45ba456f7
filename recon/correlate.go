package recon

import (
	"sort"
	"strings"

	"github.com/poolvest/deposit-recon-api/database/models"
	"github.com/poolvest/deposit-recon-api/types"
)

// Correlate fuses the three source snapshots into one UnifiedPayment per join
// key. The merge is pure, idempotent and monotonic: re-running it over the same
// input yields the same map, a constituent already attached is never replaced,
// and unrelated records never disturb existing payments. Records with no usable
// join key are skipped; they cannot be correlated.
func Correlate(
	intents []models.DepositIntent,
	txs []models.PendingTransaction,
	credits []models.CreditedEntry,
) map[string]*UnifiedPayment {
	payments := make(map[string]*UnifiedPayment)

	// Seed one payment per tracked transaction. The on-chain hash is the
	// strongest identity signal, so these anchor the merge.
	for i := range txs {
		tx := &txs[i]
		key := ConfirmedKey(tx.TxHash)
		if key.IsZero() {
			continue
		}
		p := getOrCreate(payments, key)
		if p.PendingTx == nil {
			p.PendingTx = tx
		}
	}

	// Attach intents. A matched intent joins on its hash even when no tracked
	// transaction exists yet; the resulting transaction-less payment is the
	// correlation gap the rule engine flags. An initiated intent has no hash
	// and joins under the fallback composite key.
	for i := range intents {
		intent := &intents[i]
		var key PaymentKey
		if intent.MatchedTxHash != "" {
			key = ConfirmedKey(intent.MatchedTxHash)
		} else {
			key = ProvisionalKey(intent.WalletAddress, intent.ExpectedAmount, intent.PoolAddress, intent.CreatedAt)
		}
		if key.IsZero() {
			continue
		}
		p := getOrCreate(payments, key)
		if p.Intent == nil {
			p.Intent = intent
		}
	}

	// Attach credits to the payment sharing their hash. The investor ledger is
	// authoritative for "funds landed", so an unmatched credit is left alone
	// rather than flagged.
	for i := range credits {
		credit := &credits[i]
		key := ConfirmedKey(credit.TxHash)
		if key.IsZero() {
			continue
		}
		if p, ok := payments[key.String()]; ok && p.Credit == nil {
			p.Credit = credit
		}
	}

	rekeyProvisional(payments)

	for _, p := range payments {
		if p.PathType == "" {
			if p.PendingTx != nil && p.PendingTx.FirstSeenAt != nil {
				p.PathType = types.PathScanner
			} else {
				p.PathType = types.PathFrontend
			}
		}
	}

	return payments
}

func getOrCreate(payments map[string]*UnifiedPayment, key PaymentKey) *UnifiedPayment {
	if p, ok := payments[key.String()]; ok {
		return p
	}
	p := &UnifiedPayment{Key: key}
	payments[key.String()] = p
	return p
}

// rekeyProvisional reconciles fallback-keyed payments against hash-keyed ones.
// Once a transaction is observed for a deposit the user declared, the two
// records would otherwise coexist as separate payments; here the provisional
// entry is merged into the confirmed one and its key retired. A candidate
// transaction must match wallet, pool address and expected amount and must not
// already carry an intent. Earliest-created transaction wins, keys ordered, so
// the merge is deterministic under re-runs.
func rekeyProvisional(payments map[string]*UnifiedPayment) {
	provisionalKeys := make([]string, 0)
	for k, p := range payments {
		if p.Key.Kind == KeyProvisional && p.Intent != nil {
			provisionalKeys = append(provisionalKeys, k)
		}
	}
	sort.Strings(provisionalKeys)

	for _, pk := range provisionalKeys {
		prov := payments[pk]
		target := findUnclaimedTx(payments, prov.Intent)
		if target == nil {
			continue
		}
		target.Intent = prov.Intent
		delete(payments, pk)
	}
}

func findUnclaimedTx(payments map[string]*UnifiedPayment, intent *models.DepositIntent) *UnifiedPayment {
	var best *UnifiedPayment
	for _, p := range payments {
		if p.Key.Kind != KeyConfirmed || p.PendingTx == nil || p.Intent != nil {
			continue
		}
		tx := p.PendingTx
		if !strings.EqualFold(tx.WalletAddress, intent.WalletAddress) {
			continue
		}
		if !strings.EqualFold(tx.PoolAddress, intent.PoolAddress) {
			continue
		}
		if tx.ExpectedAmount != intent.ExpectedAmount {
			continue
		}
		if best == nil || tx.CreatedAt.Before(best.PendingTx.CreatedAt) ||
			(tx.CreatedAt.Equal(best.PendingTx.CreatedAt) && tx.TxHash < best.PendingTx.TxHash) {
			best = p
		}
	}
	return best
}
