// Package config defines the runtime configuration for the backstage
// server and its validation rules.
package config

import "errors"

// Supported storage modes.
const (
	ModeLocal    = "local"
	ModeFirebase = "firebase"
)

// Config validation errors.
var (
	ErrModeEmpty        = errors.New("mode must not be empty")
	ErrModeUnknown      = errors.New("unknown mode")
	ErrAllowListEmpty   = errors.New("allowed_emails must list at least one address")
	ErrReturnURLEmpty   = errors.New("auth return_url must not be empty")
	ErrHTTPAddrEmpty    = errors.New("http listen address must not be empty")
	ErrBaseURLEmpty     = errors.New("base_url is required in local mode")
	ErrProjectIDEmpty   = errors.New("firebase project_id is required in firebase mode")
	ErrBucketEmpty      = errors.New("firebase bucket is required in firebase mode")
	ErrAPIKeyEmpty      = errors.New("firebase api_key is required in firebase mode")
	ErrSMTPHostEmpty    = errors.New("smtp host is required in firebase mode")
	ErrSMTPFromEmpty    = errors.New("smtp from address is required in firebase mode")
)

// knownModes lists the modes that Validate accepts.
var knownModes = map[string]bool{
	ModeLocal:    true,
	ModeFirebase: true,
}

// Firebase holds the project settings used in firebase mode.
type Firebase struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Bucket          string `json:"bucket" yaml:"bucket"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	APIKey          string `json:"api_key" yaml:"api_key"`
}

// SMTP holds the mail relay used to deliver sign-in links.
type SMTP struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	From     string `json:"from" yaml:"from"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Config holds mode selection and parameters for the backstage server.
type Config struct {
	Mode           string   `json:"mode" yaml:"mode"`
	HTTPAddr       string   `json:"http_addr" yaml:"http_addr"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	// AllowedEmails is the admin allow list. Sign-in links are only ever
	// issued to addresses on it.
	AllowedEmails []string `json:"allowed_emails" yaml:"allowed_emails"`

	// ReturnURL is the admin page the emailed sign-in link points back to.
	ReturnURL string `json:"return_url" yaml:"return_url"`

	// Local mode: where documents and blobs live, and the public URL
	// blobs are served under.
	DataDir    string `json:"data_dir" yaml:"data_dir"`
	UploadsDir string `json:"uploads_dir" yaml:"uploads_dir"`
	BaseURL    string `json:"base_url" yaml:"base_url"`

	Firebase Firebase `json:"firebase" yaml:"firebase"`
	SMTP     SMTP     `json:"smtp" yaml:"smtp"`
}

// Validate checks that the Config is well-formed for its mode. It returns a
// sentinel error from this package on failure.
func (c Config) Validate() error {
	if c.Mode == "" {
		return ErrModeEmpty
	}
	if !knownModes[c.Mode] {
		return ErrModeUnknown
	}
	if len(c.AllowedEmails) == 0 {
		return ErrAllowListEmpty
	}
	if c.ReturnURL == "" {
		return ErrReturnURLEmpty
	}
	if c.HTTPAddr == "" {
		return ErrHTTPAddrEmpty
	}

	switch c.Mode {
	case ModeLocal:
		if c.BaseURL == "" {
			return ErrBaseURLEmpty
		}
	case ModeFirebase:
		if c.Firebase.ProjectID == "" {
			return ErrProjectIDEmpty
		}
		if c.Firebase.Bucket == "" {
			return ErrBucketEmpty
		}
		if c.Firebase.APIKey == "" {
			return ErrAPIKeyEmpty
		}
		if c.SMTP.Host == "" {
			return ErrSMTPHostEmpty
		}
		if c.SMTP.From == "" {
			return ErrSMTPFromEmpty
		}
	}
	return nil
}
