package types

// HealthStatus is the derived, time-sensitive judgment of a payment's wellbeing.
// It is never stored; it is recomputed from the current snapshot on every read.
type HealthStatus string

const (
	// Settled - Funds were credited, or the tracked transaction completed
	Settled HealthStatus = "SETTLED"

	// Processing - Payment is moving through the pipeline within normal time bounds
	Processing HealthStatus = "PROCESSING"

	// Delayed - Payment is stalled: either matched with no tracked transaction,
	// or sitting in a non-terminal status past the stall threshold
	Delayed HealthStatus = "DELAYED"

	// Failed - The tracked transaction reached the failed terminal status
	Failed HealthStatus = "FAILED"
)

// IntentStatus represents the states a deposit intent can be in
type IntentStatus string

const (
	IntentInitiated IntentStatus = "initiated"
	IntentMatched   IntentStatus = "matched"
)

// TxStatus represents the states a pending transaction can be in.
// Completed and failed are terminal and never revisited.
type TxStatus string

const (
	TxPending    TxStatus = "pending"
	TxVerifying  TxStatus = "verifying"
	TxProcessing TxStatus = "processing"
	TxCompleted  TxStatus = "completed"
	TxFailed     TxStatus = "failed"
)

// Terminal reports whether the status is one a transaction never leaves.
func (s TxStatus) Terminal() bool {
	return s == TxCompleted || s == TxFailed
}

// PathType records how a payment was first observed
type PathType string

const (
	// PathFrontend - Payment entered through direct user submission
	PathFrontend PathType = "Frontend/Happy"

	// PathScanner - Payment was discovered by background chain scanning
	PathScanner PathType = "Scanner/Recovery"
)

// Severity of a diagnostic flag
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
)

// StepSource attributes a timeline step to the system that produced the record
type StepSource string

const (
	SourceFrontend         StepSource = "Frontend"
	SourceScanner          StepSource = "Scanner"
	SourceReconciliation   StepSource = "Reconciliation"
	SourceSettlementWorker StepSource = "Settlement Worker"
)
