package calculator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mmynk/triplan/internal/models"
)

// NormalizeBillItems converts the receipt item shapes seen in the wild into
// the canonical ordered []BillItem:
//
//	["Pizza", "Beer"]                 -> each with count 1
//	{"Pizza": 2, "Beer": 1}           -> sorted by name
//	[{"name": "Pizza", "count": 2}]   -> as is (count < 1 becomes 1)
//
// Empty input and JSON null yield an empty slice.
func NormalizeBillItems(raw json.RawMessage) ([]models.BillItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []models.BillItem{}, nil
	}

	switch raw[0] {
	case '{':
		var counts map[string]json.Number
		if err := json.Unmarshal(raw, &counts); err != nil {
			return nil, fmt.Errorf("failed to decode item counts: %w", err)
		}
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		items := make([]models.BillItem, 0, len(names))
		for _, name := range names {
			count, err := counts[name].Int64()
			if err != nil {
				f, ferr := counts[name].Float64()
				if ferr != nil {
					return nil, fmt.Errorf("invalid count for %q: %w", name, err)
				}
				count = int64(f)
			}
			items = append(items, newBillItem(name, int(count)))
		}
		return items, nil

	case '[':
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode item list: %w", err)
		}
		items := make([]models.BillItem, 0, len(entries))
		for _, entry := range entries {
			var name string
			if err := json.Unmarshal(entry, &name); err == nil {
				items = append(items, newBillItem(name, 1))
				continue
			}
			var item models.BillItem
			if err := json.Unmarshal(entry, &item); err != nil {
				return nil, fmt.Errorf("failed to decode item %s: %w", entry, err)
			}
			items = append(items, newBillItem(item.Name, item.Count))
		}
		return items, nil
	}

	return nil, fmt.Errorf("unsupported item format: %s", raw)
}

func newBillItem(name string, count int) models.BillItem {
	if count < 1 {
		count = 1
	}
	return models.BillItem{Name: name, Count: count}
}

// ItemNames returns the display names of items in order.
func ItemNames(items []models.BillItem) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}
