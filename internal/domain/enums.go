package domain

// ListingStatus represents the lifecycle state of a creator listing
type ListingStatus string

const (
	ListingStatusDraft           ListingStatus = "draft"
	ListingStatusPendingApproval ListingStatus = "pending_approval"
	ListingStatusLive            ListingStatus = "live"
	ListingStatusReserved        ListingStatus = "reserved"
	ListingStatusSold            ListingStatus = "sold"
	ListingStatusShipped         ListingStatus = "shipped"
	ListingStatusCompleted       ListingStatus = "completed"
	ListingStatusRejected        ListingStatus = "rejected"
)

// IsValid checks if the listing status is valid
func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusDraft,
		ListingStatusPendingApproval,
		ListingStatusLive,
		ListingStatusReserved,
		ListingStatusSold,
		ListingStatusShipped,
		ListingStatusCompleted,
		ListingStatusRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid.
// The live->sold transition is normally applied as a conditional database
// update by the order pipeline; this check guards the manual flows.
func (s ListingStatus) CanTransitionTo(newStatus ListingStatus) bool {
	switch s {
	case ListingStatusDraft:
		return newStatus == ListingStatusPendingApproval
	case ListingStatusPendingApproval:
		return newStatus == ListingStatusLive ||
			newStatus == ListingStatusRejected
	case ListingStatusLive:
		return newStatus == ListingStatusSold ||
			newStatus == ListingStatusReserved
	case ListingStatusReserved:
		return newStatus == ListingStatusLive ||
			newStatus == ListingStatusSold
	case ListingStatusSold:
		return newStatus == ListingStatusShipped
	case ListingStatusShipped:
		return newStatus == ListingStatusCompleted
	case ListingStatusCompleted, ListingStatusRejected:
		return false // Terminal states
	default:
		return false
	}
}
