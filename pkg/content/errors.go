package content

import "errors"

// Standard errors shared by the document and blob store drivers.
var (
	ErrNotFound          = errors.New("item not found")
	ErrInvalidCollection = errors.New("unknown collection")
	ErrInvalidID         = errors.New("id must not be empty")
	ErrInvalidItem       = errors.New("item must have a url")
	ErrSingletonNotFound = errors.New("settings document not found")
	ErrInvalidSettingKey = errors.New("unknown settings key")
)
