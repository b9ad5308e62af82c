// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"math"
	"sort"
	"time"

	"github.com/danielhkuo/pollbooth/models"
)

// IsOpen reports whether a poll accepts votes at now.
// A poll is closed once now is strictly after its end date.
func IsOpen(active bool, endDate *time.Time, now time.Time) bool {
	if !active {
		return false
	}
	if endDate != nil && now.After(*endDate) {
		return false
	}
	return true
}

// PollIsOpen is IsOpen for a stored poll
func PollIsOpen(p models.Poll, now time.Time) bool {
	return IsOpen(p.IsActive, p.EndDate, now)
}

// Partition splits polls into open and closed ones, keeping input order
func Partition(polls []models.Poll, now time.Time) (active, past []models.Poll) {
	active = []models.Poll{}
	past = []models.Poll{}
	for _, p := range polls {
		if PollIsOpen(p, now) {
			active = append(active, p)
		} else {
			past = append(past, p)
		}
	}
	return active, past
}

// Total sums the vote counters of a poll's choices
func Total(choices []models.Choice) int {
	total := 0
	for _, c := range choices {
		total += c.Votes
	}
	return total
}

// Percentage returns votes as a share of total, rounded to one decimal.
// A zero total yields 0.
func Percentage(votes, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(votes)/float64(total)*1000) / 10
}

// Rank orders choices by votes descending and attaches percentages.
// Ties keep their input order.
func Rank(choices []models.Choice) []models.ChoiceResult {
	total := Total(choices)

	results := make([]models.ChoiceResult, len(choices))
	for i, c := range choices {
		results[i] = models.ChoiceResult{
			Choice:     c,
			Percentage: Percentage(c.Votes, total),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Votes > results[j].Votes
	})

	return results
}
