package itinerary

import (
	"sort"
	"time"

	"github.com/mmynk/triplan/internal/models"
)

// DayGroup is every item that falls on one calendar date.
type DayGroup struct {
	// Date is the calendar date at UTC midnight.
	Date time.Time

	// Day is the 1-based position of the group ("Day 1", "Day 2", ...).
	Day int

	Items []models.ItineraryItem
}

// Grouping is the result of GroupByDate.
type Grouping struct {
	Days []DayGroup

	// Skipped counts items left out because they had no usable date.
	Skipped int
}

// Count returns the number of grouped items.
func (g Grouping) Count() int {
	n := 0
	for _, d := range g.Days {
		n += len(d.Items)
	}
	return n
}

// CalendarDate truncates t to its calendar date in UTC.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SortByDate returns a copy of items in ascending date order.
// Items with equal dates keep their relative order. Items without a date
// sort last.
func SortByDate(items []models.ItineraryItem) []models.ItineraryItem {
	sorted := make([]models.ItineraryItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Date, sorted[j].Date
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.Before(b)
	})
	return sorted
}

// GroupByDate sorts items by date and splits them into one group per
// calendar date, in ascending order. Items without a date are excluded and
// counted in Skipped. The input slice is not modified.
func GroupByDate(items []models.ItineraryItem) Grouping {
	var g Grouping
	for _, item := range SortByDate(items) {
		if item.Date.IsZero() {
			g.Skipped++
			continue
		}
		key := CalendarDate(item.Date)
		if n := len(g.Days); n > 0 && g.Days[n-1].Date.Equal(key) {
			g.Days[n-1].Items = append(g.Days[n-1].Items, item)
			continue
		}
		g.Days = append(g.Days, DayGroup{
			Date:  key,
			Day:   len(g.Days) + 1,
			Items: []models.ItineraryItem{item},
		})
	}
	return g
}

// FilterByStatus returns the items whose status equals status, preserving order.
func FilterByStatus(items []models.ItineraryItem, status models.ItineraryStatus) []models.ItineraryItem {
	var out []models.ItineraryItem
	for _, item := range items {
		if item.Status == status {
			out = append(out, item)
		}
	}
	return out
}

// FinalPlan groups only the confirmed items. It backs the read-only final plan view.
func FinalPlan(items []models.ItineraryItem) Grouping {
	return GroupByDate(FilterByStatus(items, models.StatusConfirmed))
}
