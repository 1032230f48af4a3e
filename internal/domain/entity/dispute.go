package entity

import "time"

const (
	DisputeStatusOpen     = "open"
	DisputeStatusResolved = "resolved"
)

// Dispute is the arbitration record behind a disputed escrow. The escrow
// carries only the dispute id; the reason, parties and outcome live here.
type Dispute struct {
	ID         string     `json:"id" firestore:"id"`
	EscrowID   string     `json:"escrow_id" firestore:"escrowId"`
	RaisedBy   string     `json:"raised_by" firestore:"raisedBy"`
	RaisedRole string     `json:"raised_role" firestore:"raisedRole"` // buyer or supplier
	Reason     string     `json:"reason" firestore:"reason"`
	Status     string     `json:"status" firestore:"status"`
	Resolution string     `json:"resolution,omitempty" firestore:"resolution,omitempty"` // release or refund
	ResolvedBy string     `json:"resolved_by,omitempty" firestore:"resolvedBy,omitempty"`
	CreatedAt  time.Time  `json:"created_at" firestore:"createdAt"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" firestore:"resolvedAt,omitempty"`
}
