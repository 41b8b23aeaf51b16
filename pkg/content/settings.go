package content

import "errors"

// Settings documents live in their own namespace, one document per key,
// always fully overwritten on update.
const (
	SettingsNamespace = "settings"

	KeyEventsInfo = "eventsInfo"
	KeyBioInfo    = "bioInfo"
)

// ValidSettingKey reports whether key names one of the settings documents.
func ValidSettingKey(key string) bool {
	return key == KeyEventsInfo || key == KeyBioInfo
}

// Highlight icon types.
const (
	IconStar      = "star"
	IconDisc      = "disc"
	IconMegaphone = "megaphone"
)

// ErrInvalidIconType is returned when a highlight carries an unknown icon.
var ErrInvalidIconType = errors.New("unknown highlight icon type")

// Highlight is one entry in the bio highlights list. Highlights are
// free-form and user-ordered; there is no uniqueness constraint.
type Highlight struct {
	Title    string `json:"title" firestore:"title"`
	Content  string `json:"content" firestore:"content"`
	IconType string `json:"iconType" firestore:"iconType"`
}

// Validate checks the highlight's icon type.
func (h Highlight) Validate() error {
	switch h.IconType {
	case IconStar, IconDisc, IconMegaphone:
		return nil
	}
	return ErrInvalidIconType
}

// EventsInfo is the singleton settings document behind the events section.
type EventsInfo struct {
	Title        string `json:"title" firestore:"title"`
	Description  string `json:"description" firestore:"description"`
	BookingEmail string `json:"bookingEmail" firestore:"bookingEmail"`
	TicketsURL   string `json:"ticketsUrl,omitempty" firestore:"ticketsUrl,omitempty"`
}

// BioInfo is the singleton settings document behind the bio section.
type BioInfo struct {
	Heading    string      `json:"heading" firestore:"heading"`
	Tagline    string      `json:"tagline" firestore:"tagline"`
	Paragraphs []string    `json:"paragraphs" firestore:"paragraphs"`
	Highlights []Highlight `json:"highlights" firestore:"highlights"`
}

// DefaultEventsInfo is the fallback rendered when the store has no
// eventsInfo document. The admin editor seeds its form from the same value
// so the two surfaces never disagree on what an empty store looks like.
func DefaultEventsInfo() EventsInfo {
	return EventsInfo{
		Title:        "Próximos Eventos",
		Description:  "Fechas y presentaciones se anuncian aquí y en redes sociales.",
		BookingEmail: "booking@sweetjay.mx",
	}
}

// DefaultBioInfo is the fallback bio content, mirroring the static copy
// bundled with the landing page.
func DefaultBioInfo() BioInfo {
	return BioInfo{
		Heading: "Sweetjay",
		Tagline: "Desde Colima Para El Mundo",
		Paragraphs: []string{
			"Directo desde la misteriosa belleza de Colima, envuelta entre playas y volcanes. " +
				"Sweetjay trae una propuesta fresca al género urbano, fusionando ritmos latinos con " +
				"letras que narran la realidad y los sueños de una generación.",
			"\"Repartimos mucho flow con música\". Con lanzamientos recientes como \"HOODIE\" y \"El Don\", " +
				"está marcando su territorio en la escena musical emergente.",
		},
		Highlights: []Highlight{
			{Title: "HOODIE", Content: "Lanzamiento reciente", IconType: IconDisc},
			{Title: "El Don", Content: "Lanzamiento reciente", IconType: IconDisc},
		},
	}
}

// DefaultCarousel is the static image set the public hero rotation falls
// back to when the carousel collection is empty or unreachable.
func DefaultCarousel() []Item {
	return []Item{
		{URL: "/images/carousel/photo1.jpg"},
		{URL: "/images/carousel/photo2.jpg"},
		{URL: "/images/carousel/photo3.jpg"},
		{URL: "/images/carousel/photo4.jpg"},
		{URL: "/images/carousel/photo5.jpg"},
	}
}
