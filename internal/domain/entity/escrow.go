package entity

import "time"

const (
	EscrowStatusCreated  = "created"
	EscrowStatusFunded   = "funded"
	EscrowStatusHeld     = "held"
	EscrowStatusReleased = "released"
	EscrowStatusDisputed = "disputed"
	EscrowStatusRefunded = "refunded"
	EscrowStatusExpired  = "expired"
)

// EscrowTransaction tracks a held payment from creation through
// release/dispute/refund/expiry. ReleaseConditions is fixed at creation and
// never mutated in place; satisfaction is tracked by status transition. Once a
// terminal status is reached the record is immutable history.
type EscrowTransaction struct {
	ID                string     `json:"id" firestore:"id"`
	AuctionID         string     `json:"auction_id" firestore:"auctionId"`
	BuyerID           string     `json:"buyer_id" firestore:"buyerId"`
	SupplierID        string     `json:"supplier_id" firestore:"supplierId"`
	Amount            int64      `json:"amount" firestore:"amount"`
	Currency          string     `json:"currency" firestore:"currency"`
	Status            string     `json:"status" firestore:"status"`
	HoldExpiresAt     *time.Time `json:"hold_expires_at,omitempty" firestore:"holdExpiresAt,omitempty"` // set only while held
	ReleaseConditions []string   `json:"release_conditions" firestore:"releaseConditions"`
	SatisfiedCount    int        `json:"satisfied_count" firestore:"satisfiedCount"`
	DisputeID         string     `json:"dispute_id,omitempty" firestore:"disputeId,omitempty"`
	CreatedAt         time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt         time.Time  `json:"updated_at" firestore:"updatedAt"`
}

var escrowTransitions = map[string][]string{
	EscrowStatusCreated:  {EscrowStatusFunded},
	EscrowStatusFunded:   {EscrowStatusHeld},
	EscrowStatusHeld:     {EscrowStatusReleased, EscrowStatusDisputed, EscrowStatusExpired, EscrowStatusRefunded},
	EscrowStatusDisputed: {EscrowStatusReleased, EscrowStatusRefunded},
}

// EscrowTransitionAllowed reports whether moving from one escrow status to
// another is legal. Released, refunded and expired are terminal.
func EscrowTransitionAllowed(from, to string) bool {
	for _, next := range escrowTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the escrow record has reached immutable history.
func (e *EscrowTransaction) IsTerminal() bool {
	switch e.Status {
	case EscrowStatusReleased, EscrowStatusRefunded, EscrowStatusExpired:
		return true
	}
	return false
}

// AllConditionsSatisfied reports whether every release condition has been
// confirmed.
func (e *EscrowTransaction) AllConditionsSatisfied() bool {
	return e.SatisfiedCount >= len(e.ReleaseConditions)
}
