// Package availability decides whether a candidate interval can be admitted
// against the intervals already held on a workspace.
//
// All intervals are half-open, [start, end). A booking that ends at 11:00 and
// one that starts at 11:00 do not collide.
package availability

import "coworking-reservation-server/internal/domain"

// IsAvailable reports whether candidate intersects none of existing.
// Callers pass only active intervals and reject candidates whose start is not
// before their end; an empty existing set is always available.
func IsAvailable(existing []domain.Interval, candidate domain.Interval) bool {
	_, conflict := FirstConflict(existing, candidate)
	return !conflict
}

// FirstConflict returns the index of the first interval in existing that
// overlaps candidate.
func FirstConflict(existing []domain.Interval, candidate domain.Interval) (int, bool) {
	for i, iv := range existing {
		if iv.Overlaps(candidate) {
			return i, true
		}
	}
	return -1, false
}

// ActiveIntervals extracts the intervals of the active reservations in rs.
func ActiveIntervals(rs []*domain.Reservation) []domain.Interval {
	out := make([]domain.Interval, 0, len(rs))
	for _, r := range rs {
		if r != nil && r.Active {
			out = append(out, r.Interval())
		}
	}
	return out
}

// CanReserve is IsAvailable over a workspace's loaded reservations.
func CanReserve(reservations []*domain.Reservation, candidate domain.Interval) bool {
	return IsAvailable(ActiveIntervals(reservations), candidate)
}
