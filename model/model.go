package model

import "time"

// MediaVariant is an alternate value a CSS variable takes inside a media query.
type MediaVariant struct {
	Query string `json:"query"`
	Value string `json:"value"`
}

// CSSVariable is one extracted custom property. Within a scan the first
// declaration of a name wins; later base declarations are ignored and
// media-query redeclarations are collected as variants.
type CSSVariable struct {
	Name       string         `json:"name"`
	Value      string         `json:"value"`
	SourceFile string         `json:"source_file"`
	Media      []MediaVariant `json:"media,omitempty"`
}

// ScanSnapshot is the persisted result of one full theme scan.
type ScanSnapshot struct {
	Timestamp time.Time     `json:"timestamp"`
	Count     int           `json:"count"`
	Variables []CSSVariable `json:"variables"`
}
