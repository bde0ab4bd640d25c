// Package schedule scores how well availability windows cover a match slot.
package schedule

import (
	"github.com/padelhq/matchrank/internal/domain/model"
)

// neutralOverlap is returned when a player has no availability on file.
// Unknown schedules are neither rewarded nor penalized.
const neutralOverlap = 0.5

// OverlapScore rates how well the player's availability windows cover the
// match interval [startMinutes, startMinutes+requiredMinutes).
//
// A slot that fully contains the match short-circuits to 1.0. Otherwise the
// result is the best per-slot overlap ratio, capped at 1.0. Slots are never
// merged, so overlapping windows cannot push the score past the best single
// slot. No windows at all yields the neutral 0.5.
func OverlapScore(slots []model.TimeSlot, startMinutes, requiredMinutes int) float64 {
	if len(slots) == 0 {
		return neutralOverlap
	}
	if requiredMinutes <= 0 {
		return 0
	}

	matchStart := startMinutes
	matchEnd := startMinutes + requiredMinutes

	best := 0.0
	for _, slot := range slots {
		slotStart, err := model.ParseClock(slot.Start)
		if err != nil {
			continue
		}
		slotEnd, err := model.ParseClock(slot.End)
		if err != nil {
			continue
		}
		if slotStart <= matchStart && matchEnd <= slotEnd {
			return 1.0
		}
		overlap := overlapMinutes(matchStart, matchEnd, slotStart, slotEnd)
		if overlap <= 0 {
			continue
		}
		ratio := float64(overlap) / float64(requiredMinutes)
		if ratio > 1.0 {
			ratio = 1.0
		}
		if ratio > best {
			best = ratio
		}
	}
	return best
}

// overlapMinutes returns the length of the intersection of two half-open
// minute intervals, or 0 when they do not intersect.
func overlapMinutes(aStart, aEnd, bStart, bEnd int) int {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	if end <= start {
		return 0
	}
	return end - start
}
