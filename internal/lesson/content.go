package lesson

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ContentItem one entry of a lesson's content. Fields other than id, orderBy
// and isEstimated are kept as is in Payload. A numeric id is read as its decimal text.
type ContentItem struct {
	ID          string
	OrderBy     int
	IsEstimated bool
	Payload     map[string]json.RawMessage
}

var knownContentFields = []string{"id", "orderBy", "isEstimated"}

// MarshalJSON flattens Payload next to the known fields
func (ci ContentItem) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(ci.Payload)+len(knownContentFields))
	for k, v := range ci.Payload {
		fields[k] = v
	}
	fields["id"] = ci.ID
	fields["orderBy"] = ci.OrderBy
	fields["isEstimated"] = ci.IsEstimated
	return json.Marshal(fields)
}

// UnmarshalJSON reads the known fields, everything else goes to Payload
func (ci *ContentItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	item := ContentItem{}
	var id contentID
	targets := []interface{}{&id, &item.OrderBy, &item.IsEstimated}
	for i, name := range knownContentFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		delete(fields, name)
		if string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, targets[i]); err != nil {
			return fmt.Errorf("content item %s: %w", name, err)
		}
	}
	item.ID = string(id)
	if len(fields) > 0 {
		item.Payload = fields
	}
	*ci = item
	return nil
}

// contentID accepts a JSON string or number
type contentID string

func (id *contentID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = contentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %s", data)
	}
	*id = contentID(n.String())
	return nil
}

// SortContent returns a copy of items stable sorted by orderBy
func SortContent(items []ContentItem) []ContentItem {
	sorted := make([]ContentItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderBy < sorted[j].OrderBy
	})
	return sorted
}

// CountContent number of items and how many of them are estimated
func CountContent(items []ContentItem) (total, estimated int) {
	for _, item := range items {
		if item.IsEstimated {
			estimated++
		}
	}
	return len(items), estimated
}

func encodeContent(items []ContentItem) (string, error) {
	if items == nil {
		items = []ContentItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode lesson content: %w", err)
	}
	return string(b), nil
}

func decodeContent(raw []byte) ([]ContentItem, error) {
	items := []ContentItem{}
	if len(raw) == 0 || string(raw) == "null" {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode lesson content: %w", err)
	}
	return items, nil
}
