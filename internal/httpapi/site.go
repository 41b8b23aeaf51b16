package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stageworks/backstage/pkg/content"
)

// handleSiteCollection serves a content collection to the public page.
// An empty or unreachable store falls back to the bundled defaults; the
// landing page never renders an error for missing content.
func (s *Server) handleSiteCollection(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	if !content.ValidCollection(collection) {
		writeError(w, http.StatusNotFound, "unknown collection")
		return
	}

	items, err := s.docs.ListAll(r.Context(), collection)
	if err != nil {
		s.logger.Warn().Err(err).Str("collection", collection).Msg("public read failed, serving fallback")
		writeJSON(w, http.StatusOK, s.fallbackItems(collection))
		return
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusOK, s.fallbackItems(collection))
		return
	}

	content.SortByCreatedAt(items)
	writeJSON(w, http.StatusOK, items)
}

// fallbackItems returns the static default set for a collection. Only the
// carousel ships bundled images; everything else is an empty list, which
// the page renders as a hidden section.
func (s *Server) fallbackItems(collection string) []content.Item {
	if collection == content.CollectionCarousel {
		return content.DefaultCarousel()
	}
	return []content.Item{}
}

// handleSiteSettings serves a settings document, falling back to the same
// defaults the admin editor seeds its forms from.
func (s *Server) handleSiteSettings(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if !content.ValidSettingKey(key) {
		writeError(w, http.StatusNotFound, "unknown settings key")
		return
	}

	blob, err := s.docs.GetSingleton(r.Context(), content.SettingsNamespace, key)
	if err == nil && json.Valid(blob) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(blob)
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("public settings read failed, serving fallback")
	}

	switch key {
	case content.KeyEventsInfo:
		writeJSON(w, http.StatusOK, content.DefaultEventsInfo())
	case content.KeyBioInfo:
		writeJSON(w, http.StatusOK, content.DefaultBioInfo())
	}
}
