// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally decides whether polls are open and turns vote counters into results.

# Poll Activity

A poll is open when its is_active flag is set and its optional end date
has not passed:

	open := tally.IsOpen(poll.IsActive, poll.EndDate, time.Now())

Partition splits an ordered poll list into open and closed polls without
reordering either side.

# Results

	total := tally.Total(choices)
	pct := tally.Percentage(choice.Votes, total)  // 0 when total is 0
	ranked := tally.Rank(choices)                 // votes desc, stable

Percentages are rounded to one decimal place independently, so a poll's
percentages may not add up to exactly 100.
*/
package tally
