package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSettingKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "eventsInfo", in: KeyEventsInfo, want: true},
		{name: "bioInfo", in: KeyBioInfo, want: true},
		{name: "empty rejected", in: "", want: false},
		{name: "namespace is not a key", in: SettingsNamespace, want: false},
		{name: "unknown rejected", in: "themeInfo", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidSettingKey(tt.in))
		})
	}
}

func TestHighlightValidate(t *testing.T) {
	tests := []struct {
		name    string
		icon    string
		wantErr error
	}{
		{name: "star", icon: IconStar},
		{name: "disc", icon: IconDisc},
		{name: "megaphone", icon: IconMegaphone},
		{name: "empty rejected", icon: "", wantErr: ErrInvalidIconType},
		{name: "unknown rejected", icon: "trophy", wantErr: ErrInvalidIconType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Highlight{Title: "t", IconType: tt.icon}.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultsAreNonEmpty(t *testing.T) {
	events := DefaultEventsInfo()
	assert.NotEmpty(t, events.Title)
	assert.NotEmpty(t, events.BookingEmail)

	bio := DefaultBioInfo()
	assert.NotEmpty(t, bio.Heading)
	assert.NotEmpty(t, bio.Paragraphs)
	for _, h := range bio.Highlights {
		assert.NoError(t, h.Validate())
	}

	carousel := DefaultCarousel()
	assert.Len(t, carousel, 5)
	for _, it := range carousel {
		assert.NotEmpty(t, it.URL)
	}
}
