package availability

import (
	"testing"
	"time"

	"coworking-reservation-server/internal/domain"

	"github.com/stretchr/testify/assert"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 4, 10, hour, minute, 0, 0, time.UTC)
}

func iv(sh, sm, eh, em int) domain.Interval {
	return domain.Interval{Start: at(sh, sm), End: at(eh, em)}
}

func TestIsAvailable_EmptyExisting(t *testing.T) {
	assert.True(t, IsAvailable(nil, iv(10, 0, 11, 0)))
	assert.True(t, IsAvailable([]domain.Interval{}, iv(10, 0, 11, 0)))
}

func TestIsAvailable_Boundaries(t *testing.T) {
	existing := []domain.Interval{iv(10, 0, 11, 0)}

	tests := []struct {
		name      string
		candidate domain.Interval
		want      bool
	}{
		{"back to back after", iv(11, 0, 12, 0), true},
		{"back to back before", iv(9, 0, 10, 0), true},
		{"partial overlap", iv(10, 30, 11, 30), false},
		{"partial overlap before", iv(9, 30, 10, 30), false},
		{"contained", iv(10, 15, 10, 45), false},
		{"containing", iv(9, 0, 12, 0), false},
		{"identical", iv(10, 0, 11, 0), false},
		{"one minute overlap", iv(10, 59, 11, 30), false},
		{"far away", iv(14, 0, 15, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAvailable(existing, tt.candidate))
		})
	}
}

func TestIsAvailable_BackToBackBothSides(t *testing.T) {
	// [10,11) fits exactly between [09,10) and [11,12).
	existing := []domain.Interval{iv(9, 0, 10, 0), iv(11, 0, 12, 0)}
	assert.True(t, IsAvailable(existing, iv(10, 0, 11, 0)))
	assert.False(t, IsAvailable(existing, iv(10, 0, 11, 1)))
	assert.False(t, IsAvailable(existing, iv(9, 59, 11, 0)))
}

// Exhaustively compares the checker against a brute-force minute sweep for
// every pair of intervals on a small grid.
func TestIsAvailable_MatchesMinuteSweep(t *testing.T) {
	const grid = 8
	slot := func(i int) time.Time { return at(8, 0).Add(time.Duration(i) * 15 * time.Minute) }

	sharesMinute := func(a, b domain.Interval) bool {
		for m := a.Start; m.Before(a.End); m = m.Add(time.Minute) {
			if !m.Before(b.Start) && m.Before(b.End) {
				return true
			}
		}
		return false
	}

	for s1 := 0; s1 < grid; s1++ {
		for e1 := s1 + 1; e1 <= grid; e1++ {
			for s2 := 0; s2 < grid; s2++ {
				for e2 := s2 + 1; e2 <= grid; e2++ {
					existing := domain.Interval{Start: slot(s1), End: slot(e1)}
					candidate := domain.Interval{Start: slot(s2), End: slot(e2)}

					want := !sharesMinute(existing, candidate)
					got := IsAvailable([]domain.Interval{existing}, candidate)
					if got != want {
						t.Fatalf("existing [%d,%d) candidate [%d,%d): got %v want %v", s1, e1, s2, e2, got, want)
					}
				}
			}
		}
	}
}

func TestFirstConflict(t *testing.T) {
	existing := []domain.Interval{iv(8, 0, 9, 0), iv(10, 0, 11, 0), iv(10, 30, 12, 0)}

	idx, conflict := FirstConflict(existing, iv(10, 45, 11, 15))
	assert.True(t, conflict)
	assert.Equal(t, 1, idx)

	idx, conflict = FirstConflict(existing, iv(12, 0, 13, 0))
	assert.False(t, conflict)
	assert.Equal(t, -1, idx)
}

func TestCanReserve_IgnoresCancelled(t *testing.T) {
	reservations := []*domain.Reservation{
		{ID: "r1", StartDateTime: at(10, 0), EndDateTime: at(11, 0), Active: false},
		{ID: "r2", StartDateTime: at(12, 0), EndDateTime: at(13, 0), Active: true},
		nil,
	}

	assert.True(t, CanReserve(reservations, iv(10, 0, 11, 0)))
	assert.False(t, CanReserve(reservations, iv(12, 30, 13, 30)))
	assert.Len(t, ActiveIntervals(reservations), 1)
}
