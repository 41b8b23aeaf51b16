package content

import (
	"sort"
	"time"
)

// Collection names. These are fixed by contract with the public landing
// page, which reads the same buckets the admin panel writes.
const (
	CollectionImages   = "images"   // gallery photos
	CollectionCarousel = "carousel" // hero rotation
	CollectionMusic    = "music"    // audio tracks
	CollectionEvents   = "events"   // event flyers
	CollectionVideos   = "videos"   // external video links
	CollectionAds      = "ads"      // promotional banners
)

// validCollections is the set of recognized collection names.
var validCollections = map[string]bool{
	CollectionImages:   true,
	CollectionCarousel: true,
	CollectionMusic:    true,
	CollectionEvents:   true,
	CollectionVideos:   true,
	CollectionAds:      true,
}

// Collections returns the collection names in a stable order.
func Collections() []string {
	return []string{
		CollectionImages,
		CollectionCarousel,
		CollectionMusic,
		CollectionEvents,
		CollectionVideos,
		CollectionAds,
	}
}

// ValidCollection reports whether name is one of the fixed collections.
func ValidCollection(name string) bool {
	return validCollections[name]
}

// Item is the metadata record for one uploaded asset or external link.
// The ID is assigned by the document store; everything else is set by the
// client at creation time. Link-type items (videos) have no Name.
type Item struct {
	ID        string `json:"id" firestore:"-"`
	URL       string `json:"url" firestore:"url"`
	Name      string `json:"name,omitempty" firestore:"name,omitempty"`
	CreatedAt string `json:"createdAt" firestore:"createdAt"`
}

// CreatedTime parses the item's CreatedAt timestamp. Items with a missing
// or unparseable timestamp report the zero time, which makes them sort as
// the oldest entries.
func (it Item) CreatedTime() time.Time {
	if it.CreatedAt == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, it.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Validate checks that the item carries the fields required for creation.
func (it Item) Validate() error {
	if it.URL == "" {
		return ErrInvalidItem
	}
	return nil
}

// NewTimestamp returns a client-assigned creation timestamp in the ISO-8601
// form the store contract requires.
func NewTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// SortByCreatedAt orders items newest first. Store-level ordering is never
// trusted; every list read re-sorts through this function before display.
// The sort is stable so equal timestamps keep their relative order.
func SortByCreatedAt(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedTime().After(items[j].CreatedTime())
	})
}
