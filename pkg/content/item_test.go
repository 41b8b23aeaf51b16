package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidCollection(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "images", in: CollectionImages, want: true},
		{name: "carousel", in: CollectionCarousel, want: true},
		{name: "music", in: CollectionMusic, want: true},
		{name: "events", in: CollectionEvents, want: true},
		{name: "videos", in: CollectionVideos, want: true},
		{name: "ads", in: CollectionAds, want: true},
		{name: "empty rejected", in: "", want: false},
		{name: "unknown rejected", in: "podcasts", want: false},
		{name: "case sensitive", in: "Images", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCollection(tt.in))
		})
	}
}

func TestCollectionsCoversAll(t *testing.T) {
	names := Collections()
	assert.Len(t, names, 6)
	for _, name := range names {
		assert.True(t, ValidCollection(name), "collection %q should be valid", name)
	}
}

func TestItemCreatedTime(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantZero bool
	}{
		{name: "valid RFC3339", in: "2026-01-15T10:30:00Z"},
		{name: "valid with offset", in: "2026-01-15T10:30:00-06:00"},
		{name: "missing sorts as oldest", in: "", wantZero: true},
		{name: "garbage sorts as oldest", in: "not-a-date", wantZero: true},
		{name: "date only rejected", in: "2026-01-15", wantZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Item{CreatedAt: tt.in}.CreatedTime()
			assert.Equal(t, tt.wantZero, got.IsZero())
		})
	}
}

func TestSortByCreatedAt(t *testing.T) {
	items := []Item{
		{ID: "oldest", CreatedAt: "2026-01-01T00:00:00Z"},
		{ID: "broken", CreatedAt: "yesterday-ish"},
		{ID: "newest", CreatedAt: "2026-03-01T00:00:00Z"},
		{ID: "middle", CreatedAt: "2026-02-01T00:00:00Z"},
		{ID: "missing"},
	}

	SortByCreatedAt(items)

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	// Newest first; unparseable and missing timestamps sort last, keeping
	// their relative order.
	assert.Equal(t, []string{"newest", "middle", "oldest", "broken", "missing"}, ids)
}

func TestSortByCreatedAtStable(t *testing.T) {
	ts := "2026-01-01T00:00:00Z"
	items := []Item{
		{ID: "a", CreatedAt: ts},
		{ID: "b", CreatedAt: ts},
		{ID: "c", CreatedAt: ts},
	}

	SortByCreatedAt(items)

	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "c", items[2].ID)
}

func TestItemValidate(t *testing.T) {
	assert.NoError(t, Item{URL: "https://example.com/a.jpg"}.Validate())
	assert.ErrorIs(t, Item{Name: "a.jpg"}.Validate(), ErrInvalidItem)
}

func TestNewTimestampRoundTrips(t *testing.T) {
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.FixedZone("CST", -6*3600))
	ts := NewTimestamp(now)

	parsed, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
	assert.True(t, parsed.Equal(now))
	assert.Equal(t, time.UTC, parsed.Location())
}
