package service

import (
	"strings"
	"time"

	"github.com/mmynk/triplan/internal/calculator"
	"github.com/mmynk/triplan/internal/itinerary"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/pkg/api"
)

const dateLayout = "2006-01-02"

// Layouts accepted for itinerary dates, most specific first. The last two
// are what HTML date and datetime-local inputs send.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	dateLayout,
}

// parseDate parses an optional YYYY-MM-DD value. Empty means zero time.
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: field, Message: "expected a date like 2024-03-01"}
	}
	return t, nil
}

// parseInstant parses an itinerary date in any accepted layout. Values
// without a zone are taken as UTC.
func parseInstant(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &models.ValidationError{Field: field, Message: "expected a date or an RFC 3339 timestamp"}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toAPIRef(r models.UserRef) api.UserRef {
	return api.UserRef{ID: r.ID, Email: r.Email}
}

func toAPIRefs(refs []models.UserRef) []api.UserRef {
	out := make([]api.UserRef, len(refs))
	for i, r := range refs {
		out[i] = toAPIRef(r)
	}
	return out
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

func toAPIProject(p *models.Project) *api.Project {
	return &api.Project{
		ID:            p.ID,
		Title:         p.Title,
		Destination:   p.Destination,
		Description:   p.Description,
		StartDate:     formatDate(p.StartDate),
		EndDate:       formatDate(p.EndDate),
		Status:        string(p.Status),
		Private:       p.Private,
		Collaborators: toAPIRefs(p.Collaborators),
		ImageLink:     p.ImageLink,
		OwnerID:       p.OwnerID,
		CreatedAt:     p.CreatedAt,
	}
}

func toAPIItem(item models.ItineraryItem) *api.ItineraryItem {
	media := item.MediaURLs
	if media == nil {
		media = []string{}
	}
	return &api.ItineraryItem{
		ID:             item.ID,
		ProjectID:      item.ProjectID,
		Title:          item.Title,
		Date:           formatInstant(item.Date),
		Location:       item.Location,
		TypeOfActivity: item.TypeOfActivity,
		Notes:          item.Notes,
		MediaURLs:      media,
		AddedBy:        toAPIRef(item.AddedBy),
		Status:         string(item.Status),
		Votes:          toAPIRefs(item.Votes),
		VoteCount:      len(item.Votes),
		CreatedAt:      item.CreatedAt,
	}
}

func toAPIItems(items []models.ItineraryItem) []*api.ItineraryItem {
	out := make([]*api.ItineraryItem, len(items))
	for i, item := range items {
		out[i] = toAPIItem(item)
	}
	return out
}

func toAPIDays(g itinerary.Grouping) []*api.DayGroup {
	days := make([]*api.DayGroup, len(g.Days))
	for i, d := range g.Days {
		days[i] = &api.DayGroup{
			Day:   d.Day,
			Date:  formatDate(d.Date),
			Items: make([]api.ItineraryItem, len(d.Items)),
		}
		for j, item := range d.Items {
			days[i].Items[j] = *toAPIItem(item)
		}
	}
	return days
}

func toAPIBillItems(items []models.BillItem) []api.BillItem {
	out := make([]api.BillItem, len(items))
	for i, item := range items {
		out[i] = api.BillItem{Name: item.Name, Count: item.Count}
	}
	return out
}

func toAPIBill(b *models.Bill) *api.Bill {
	return &api.Bill{
		ID:          b.ID,
		ProjectID:   b.ProjectID,
		Date:        b.Date,
		Time:        b.Time,
		Description: b.Description,
		Price:       b.Price,
		Items:       toAPIBillItems(b.Items),
		AddedUser:   toAPIRef(b.AddedUser),
		ReceiptURL:  b.ReceiptURL,
		CreatedAt:   b.CreatedAt,
	}
}

func toAPIChat(m *models.ChatMessage) *api.ChatMessage {
	return &api.ChatMessage{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		User:      m.User,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

func toAPIBalances(balances []calculator.MemberBalance, emails map[string]string) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.MemberBalance{
			MemberID:   b.MemberID,
			Email:      emails[b.MemberID],
			NetBalance: b.NetBalance.StringFixed(2),
			TotalPaid:  b.TotalPaid.StringFixed(2),
			TotalOwed:  b.TotalOwed.StringFixed(2),
		}
	}
	return out
}

func toAPISettlements(debts []calculator.DebtEdge) []*api.Settlement {
	out := make([]*api.Settlement, len(debts))
	for i, d := range debts {
		out[i] = &api.Settlement{
			FromMemberID: d.From,
			ToMemberID:   d.To,
			Amount:       d.Amount.StringFixed(2),
		}
	}
	return out
}
