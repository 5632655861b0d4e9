package lesson

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentItem_PreservesPayload(t *testing.T) {
	raw := `{"id":"q1","orderBy":2,"isEstimated":true,"type":"quiz","answers":["a","b"],"meta":{"level":3}}`

	var item ContentItem
	assert.NoError(t, json.Unmarshal([]byte(raw), &item))
	assert.Equal(t, "q1", item.ID)
	assert.Equal(t, 2, item.OrderBy)
	assert.True(t, item.IsEstimated)
	assert.Len(t, item.Payload, 3)

	out, err := json.Marshal(item)
	assert.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestContentItem_MissingKnownFields(t *testing.T) {
	var item ContentItem
	assert.NoError(t, json.Unmarshal([]byte(`{"text":"hello","isEstimated":null}`), &item))
	assert.Equal(t, "", item.ID)
	assert.Equal(t, 0, item.OrderBy)
	assert.False(t, item.IsEstimated)

	out, err := json.Marshal(item)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"id":"","orderBy":0,"isEstimated":false,"text":"hello"}`, string(out))
}

func TestContentItem_RejectsWrongTypes(t *testing.T) {
	var item ContentItem
	assert.Error(t, json.Unmarshal([]byte(`{"orderBy":"first"}`), &item))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &item))
	assert.Error(t, json.Unmarshal([]byte(`{"id":true}`), &item))
	assert.Error(t, json.Unmarshal([]byte(`{"id":{"n":1}}`), &item))
}

func TestContentItem_NumericID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"id":7,"orderBy":1}`, "7"},
		{`{"id":12345678901234567890}`, "12345678901234567890"},
		{`{"id":1.5}`, "1.5"},
		{`{"id":"7"}`, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var item ContentItem
			assert.NoError(t, json.Unmarshal([]byte(tt.raw), &item))
			assert.Equal(t, tt.want, item.ID)
		})
	}

	items, err := decodeContent([]byte(`[{"id":2,"isEstimated":true},{"id":1}]`))
	assert.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, contentIDs(items))
}

func TestSortContent(t *testing.T) {
	items := []ContentItem{
		{ID: "b", OrderBy: 2, IsEstimated: true},
		{ID: "a", OrderBy: 1},
		{ID: "c1", OrderBy: 5},
		{ID: "c2", OrderBy: 5},
	}
	sorted := SortContent(items)

	var ids []string
	for _, item := range sorted {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"a", "b", "c1", "c2"}, ids)
	assert.Equal(t, "b", items[0].ID, "input must stay untouched")
}

func TestCountContent(t *testing.T) {
	total, estimated := CountContent([]ContentItem{{IsEstimated: true}, {}, {IsEstimated: true}})
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, estimated)

	total, estimated = CountContent(nil)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, estimated)
}

func TestDecodeContent(t *testing.T) {
	items, err := decodeContent(nil)
	assert.NoError(t, err)
	assert.Equal(t, []ContentItem{}, items)

	items, err = decodeContent([]byte("null"))
	assert.NoError(t, err)
	assert.Equal(t, []ContentItem{}, items)

	_, err = decodeContent([]byte("{"))
	assert.Error(t, err)

	encoded, err := encodeContent(nil)
	assert.NoError(t, err)
	assert.Equal(t, "[]", encoded)
}
