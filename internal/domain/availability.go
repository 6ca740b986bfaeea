package domain

// FindConflicts filters the given bookings down to the ones whose stay
// range overlaps the requested range and whose status still occupies the
// calendar. Inputs are typically pre-filtered by the store query; this is
// the in-process pass that makes the rule explicit and testable.
func FindConflicts(requested StayRange, existing []Booking) []DateConflict {
	var conflicts []DateConflict
	for _, b := range existing {
		if !b.Status.IsActive() {
			continue
		}
		if requested.Overlaps(b.Stay()) {
			conflicts = append(conflicts, DateConflict{
				BookingID: b.ID,
				CheckIn:   b.CheckIn,
				CheckOut:  b.CheckOut,
				Status:    b.Status,
			})
		}
	}
	return conflicts
}
