package domain

// Inventory is the derived sold/available view of an event
type Inventory struct {
	Sold int
	// Available is nil when the event has no attendee limit
	Available *int
}

// NewInventory derives availability from the limit and the sold count.
// Cancelled tickets count as sold.
func NewInventory(maxAttendees *int, sold int) Inventory {
	inv := Inventory{Sold: sold}
	if maxAttendees != nil {
		available := *maxAttendees - sold
		if available < 0 {
			available = 0
		}
		inv.Available = &available
	}
	return inv
}

// CanIssue reports whether quantity more tickets fit under the limit
func (i Inventory) CanIssue(quantity int) bool {
	return i.Available == nil || quantity <= *i.Available
}
