package compliance

import "time"

// Day truncates t to its calendar date. The wall-clock date of t is kept as is;
// no timezone conversion happens before truncation.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueDate returns referenceEvent plus validityDays calendar days.
func DueDate(referenceEvent time.Time, validityDays int) (time.Time, error) {
	if validityDays <= 0 {
		return time.Time{}, ErrInvalidPeriod
	}
	return Day(referenceEvent).AddDate(0, 0, validityDays), nil
}

// StatusFor classifies a due date against now. Both ends of the due-soon window are inclusive.
func StatusFor(dueDate, now time.Time, thresholdDays int) Status {
	due := Day(dueDate)
	today := Day(now)
	switch {
	case due.Before(today):
		return StatusOverdue
	case !due.After(today.AddDate(0, 0, thresholdDays)):
		return StatusDueSoon
	default:
		return StatusCurrent
	}
}

// Resolve computes the due date and status of one compliance period.
func Resolve(referenceEvent time.Time, validityDays int, now time.Time, thresholdDays int) (Resolution, error) {
	due, err := DueDate(referenceEvent, validityDays)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{DueDate: due, Status: StatusFor(due, now, thresholdDays)}, nil
}

// Summarize aggregates items with two resolver passes. Due30 and Due60 overlap;
// overdue items are in neither. Items without a resolvable period only count toward Total.
func Summarize(items []Item, now time.Time) Summary {
	var out Summary
	for _, item := range items {
		out.Total++
		ref, days, ok := item.period()
		if !ok {
			continue
		}
		narrow, err := Resolve(ref, days, now, DefaultThresholdDays)
		if err != nil {
			continue
		}
		if narrow.Status == StatusOverdue {
			out.Overdue++
			continue
		}
		if narrow.Status == StatusDueSoon {
			out.Due30++
		}
		if StatusFor(narrow.DueDate, now, WideThresholdDays) == StatusDueSoon {
			out.Due60++
		}
	}
	return out
}

// resolveItems fills due date and status on every item with a resolvable period.
func resolveItems(sources []Source, now time.Time) []Item {
	items := make([]Item, 0, len(sources))
	for _, src := range sources {
		item := Item{Source: src}
		if ref, days, ok := item.period(); ok {
			if res, err := Resolve(ref, days, now, DefaultThresholdDays); err == nil {
				due := NewDate(res.DueDate)
				item.DueDate = &due
				item.Status = res.Status
			}
		}
		items = append(items, item)
	}
	return items
}
