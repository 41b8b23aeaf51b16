// Package backstage exposes module-level metadata.
package backstage

// Version is the current backstage release.
const Version = "0.1.0"
