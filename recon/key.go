package recon

import (
	"fmt"
	"strings"
	"time"
)

// KeyKind distinguishes hash-backed identity from the best-effort composite
// used before a transaction hash is known.
type KeyKind string

const (
	KeyConfirmed   KeyKind = "confirmed"
	KeyProvisional KeyKind = "provisional"
)

// PaymentKey is the join key under which the three source records for one
// real-world deposit are fused.
type PaymentKey struct {
	Kind  KeyKind `json:"kind"`
	Value string  `json:"value"`
}

// ConfirmedKey builds a key from an on-chain transaction hash, the strongest
// identity signal available. Returns a zero key for an empty hash.
func ConfirmedKey(txHash string) PaymentKey {
	if txHash == "" {
		return PaymentKey{}
	}
	return PaymentKey{Kind: KeyConfirmed, Value: strings.ToLower(txHash)}
}

// ProvisionalKey builds the fallback composite key for an intent that has no
// matched transaction yet. It can misattribute a payment if two deposits share
// wallet, amount, pool and creation time; the correlator reconciles
// provisional entries against confirmed ones once a hash is known.
func ProvisionalKey(wallet string, amount float64, poolAddress string, createdAt time.Time) PaymentKey {
	if wallet == "" || poolAddress == "" || createdAt.IsZero() {
		return PaymentKey{}
	}
	value := fmt.Sprintf("%s|%.8f|%s|%d",
		strings.ToLower(wallet), amount, strings.ToLower(poolAddress), createdAt.Unix())
	return PaymentKey{Kind: KeyProvisional, Value: value}
}

// IsZero reports whether the key is unusable for correlation.
func (k PaymentKey) IsZero() bool {
	return k.Value == ""
}

func (k PaymentKey) String() string {
	if k.IsZero() {
		return ""
	}
	return string(k.Kind) + ":" + k.Value
}

// ParseKey reverses String. Used by the drill-down endpoint, which receives
// keys previously handed out in list rows.
func ParseKey(s string) (PaymentKey, error) {
	kind, value, found := strings.Cut(s, ":")
	if !found || value == "" {
		return PaymentKey{}, fmt.Errorf("malformed payment key: %q", s)
	}
	switch KeyKind(kind) {
	case KeyConfirmed, KeyProvisional:
		return PaymentKey{Kind: KeyKind(kind), Value: value}, nil
	default:
		return PaymentKey{}, fmt.Errorf("unknown payment key kind: %q", kind)
	}
}
