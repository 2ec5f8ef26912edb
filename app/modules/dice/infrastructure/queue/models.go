package dicequeue

// QueueName is the River queue reconciliation jobs run on.
const QueueName = "reconcile"

// ReconcileJob reconciles the ledger of every participant.
type ReconcileJob struct {
	// Notify sends the local participant a notice when some participants
	// could not be cleaned.
	Notify bool `json:"notify"`
}

// Kind returns the job type identifier for River
func (ReconcileJob) Kind() string { return "shareddice_reconcile" }
