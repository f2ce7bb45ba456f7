package recon

import (
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/poolvest/deposit-recon-api/types"
)

// Filter narrows the unified payment set. All set fields must match (logical
// AND); zero values are ignored.
type Filter struct {
	// Query is matched case-insensitively as a substring against wallet
	// address, transaction hash and pool address.
	Query string

	// PoolType is an exact match.
	PoolType string

	// Health is an exact match against the derived status.
	Health types.HealthStatus
}

// Row is one listing entry for the operator table.
type Row struct {
	Key             string             `json:"key"`
	WalletAddress   string             `json:"wallet_address"`
	PoolType        string             `json:"pool_type"`
	PoolAddress     string             `json:"pool_address"`
	ExpectedAmount  float64            `json:"expected_amount"`
	TxHash          string             `json:"tx_hash,omitempty"`
	PathType        types.PathType     `json:"path_type"`
	CurrentState    string             `json:"current_state"`
	Health          types.HealthStatus `json:"health_status"`
	TotalTime       string             `json:"total_time"`
	FlagCount       int                `json:"flag_count"`
	FirstObservedAt *time.Time         `json:"first_observed_at,omitempty"`
}

// List filters the payment map and renders sorted rows, newest first. Health
// and flags are computed here, at read time, so elapsed-time judgments are
// always current.
func List(payments map[string]*UnifiedPayment, f Filter, now time.Time) []Row {
	needle := normalizeQuery(f.Query)

	rows := make([]Row, 0, len(payments))
	for _, p := range payments {
		if f.PoolType != "" && p.PoolType() != f.PoolType {
			continue
		}
		health := p.Health(now)
		if f.Health != "" && health != f.Health {
			continue
		}
		if needle != "" && !matchesQuery(p, needle) {
			continue
		}

		row := Row{
			Key:            p.Key.String(),
			WalletAddress:  p.WalletAddress(),
			PoolType:       p.PoolType(),
			PoolAddress:    p.PoolAddress(),
			ExpectedAmount: p.ExpectedAmount(),
			TxHash:         p.TxHash(),
			PathType:       p.PathType,
			CurrentState:   p.CurrentState(),
			Health:         health,
			TotalTime:      Placeholder,
			FlagCount:      len(p.Flags(now)),
		}
		if minutes, ok := p.TotalTime(); ok {
			row.TotalTime = formatMinutes(time.Duration(minutes * float64(time.Minute)))
		}
		if first := p.FirstObservedAt(); !first.IsZero() {
			row.FirstObservedAt = timePtr(first)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].FirstObservedAt, rows[j].FirstObservedAt
		switch {
		case a == nil && b == nil:
			return rows[i].Key < rows[j].Key
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return rows[i].Key < rows[j].Key
		}
		return a.After(*b)
	})

	return rows
}

// Summary counts payments per derived health status for the dashboard tiles.
func Summary(payments map[string]*UnifiedPayment, now time.Time) map[types.HealthStatus]int {
	counts := map[types.HealthStatus]int{
		types.Settled:    0,
		types.Processing: 0,
		types.Delayed:    0,
		types.Failed:     0,
	}
	for _, p := range payments {
		counts[p.Health(now)]++
	}
	return counts
}

// normalizeQuery canonicalizes full addresses and hashes so operators can
// paste checksummed or oddly-cased values and still match stored records.
func normalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	if common.IsHexAddress(q) {
		q = common.HexToAddress(q).Hex()
	} else if isTxHash(q) {
		q = common.HexToHash(q).Hex()
	}
	return strings.ToLower(q)
}

func matchesQuery(p *UnifiedPayment, needle string) bool {
	for _, hay := range []string{p.WalletAddress(), p.TxHash(), p.PoolAddress()} {
		if hay != "" && strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}
