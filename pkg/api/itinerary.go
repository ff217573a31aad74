package api

type CreateItemRequest struct {
	ProjectID      string   `json:"project_id"`
	Title          string   `json:"title"`
	Date           string   `json:"date"`
	Location       string   `json:"location"`
	TypeOfActivity string   `json:"type_of_activity"`
	Notes          string   `json:"notes"`
	MediaURLs      []string `json:"media_urls"`
}

type CreateItemResponse struct {
	Item *ItineraryItem `json:"item"`
}

// ListItemsRequest lists a project's items sorted by date. Status is optional.
type ListItemsRequest struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status,omitempty"`
}

type ListItemsResponse struct {
	Items []*ItineraryItem `json:"items"`
}

type GroupedItemsRequest struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status,omitempty"`
}

// GroupedItemsResponse holds one group per calendar date. Skipped counts
// items left out for lack of a usable date.
type GroupedItemsResponse struct {
	Days    []*DayGroup `json:"days"`
	Skipped int         `json:"skipped"`
}

type FinalPlanRequest struct {
	ProjectID string `json:"project_id"`
}

type FinalPlanResponse struct {
	Days    []*DayGroup `json:"days"`
	Skipped int         `json:"skipped"`
}

type ToggleVoteRequest struct {
	ItemID string `json:"item_id"`
}

type ToggleVoteResponse struct {
	Item *ItineraryItem `json:"item"`
}

type ChangeStatusRequest struct {
	ItemID string `json:"item_id"`
	Status string `json:"status"`
}

type ChangeStatusResponse struct {
	Item *ItineraryItem `json:"item"`
}

type DeleteItemRequest struct {
	ItemID string `json:"item_id"`
}

type DeleteItemResponse struct{}
