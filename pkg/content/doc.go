// Package content defines the content item and settings types shared by the
// admin panel backend and the public site endpoints, the fixed collection
// names, the display ordering rules, and the standard error values.
package content
