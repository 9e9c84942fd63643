package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ColorScheme is one named preset of settings values. Declaration order in
// settings_data.json matters: only the first scheme is ever consulted.
type ColorScheme struct {
	ID       string
	Settings map[string]any
}

// Store holds the two layered settings sources for one scan: the theme's
// current values (nested) and the schema defaults (flat). A Store is
// immutable once built and is rebuilt wholesale on every rescan, so its
// lookup and color caches are scan-scoped by construction.
type Store struct {
	current   map[string]any
	defaults  map[string]any
	schemes   []ColorScheme
	memo      map[string]cachedLookup
	colorMemo map[string]cachedColor
}

type cachedLookup struct {
	value any
	found bool
}

// Empty returns a store with no settings; every lookup resolves to absent.
func Empty() *Store {
	return &Store{
		current:   map[string]any{},
		defaults:  map[string]any{},
		memo:      map[string]cachedLookup{},
		colorMemo: map[string]cachedColor{},
	}
}

// Parse builds a store from the raw bytes of settings_data.json and
// settings_schema.json. Either input may be nil. Malformed documents degrade
// to their empty layer rather than failing the whole store.
func Parse(dataJSON, schemaJSON []byte) *Store {
	s := Empty()
	if len(dataJSON) > 0 {
		cleaned := stripBlockComments(dataJSON)
		var doc struct {
			Current map[string]any `json:"current"`
		}
		if err := json.Unmarshal(cleaned, &doc); err == nil && doc.Current != nil {
			s.current = doc.Current
		}
		s.schemes = parseColorSchemes(cleaned)
	}
	if len(schemaJSON) > 0 {
		s.defaults = flattenSchema(schemaJSON)
	}
	return s
}

// LoadTheme reads config/settings_data.json and config/settings_schema.json
// under themeDir. A missing or unreadable document degrades to an empty
// layer; the error reports the first read failure for logging.
func LoadTheme(themeDir string) (*Store, error) {
	var firstErr error
	data, err := os.ReadFile(filepath.Join(themeDir, "config", "settings_data.json"))
	if err != nil {
		firstErr = fmt.Errorf("read settings data: %w", err)
		data = nil
	}
	schema, err := os.ReadFile(filepath.Join(themeDir, "config", "settings_schema.json"))
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("read settings schema: %w", err)
		}
		schema = nil
	}
	return Parse(data, schema), firstErr
}

// Schemes returns the color schemes in declaration order.
func (s *Store) Schemes() []ColorScheme {
	return s.schemes
}

// FirstScheme returns the first-declared color scheme, if any.
func (s *Store) FirstScheme() (ColorScheme, bool) {
	if len(s.schemes) == 0 {
		return ColorScheme{}, false
	}
	return s.schemes[0], true
}

var blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)

// stripBlockComments removes /* ... */ blocks. Shopify prepends a license
// comment to settings_data.json, which the JSON parser would reject.
func stripBlockComments(b []byte) []byte {
	if !strings.Contains(string(b), "/*") {
		return b
	}
	return blockCommentRe.ReplaceAll(b, nil)
}

// flattenSchema folds the schema's sections into one id -> default mapping.
func flattenSchema(schemaJSON []byte) map[string]any {
	defaults := map[string]any{}
	var sections []struct {
		Settings []struct {
			ID      string `json:"id"`
			Default any    `json:"default"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(schemaJSON, &sections); err != nil {
		return defaults
	}
	for _, section := range sections {
		for _, setting := range section.Settings {
			if setting.ID == "" || setting.Default == nil {
				continue
			}
			if _, exists := defaults[setting.ID]; !exists {
				defaults[setting.ID] = setting.Default
			}
		}
	}
	return defaults
}

// parseColorSchemes walks the JSON token stream to recover the schemes in
// declaration order; unmarshalling into a Go map would lose it.
func parseColorSchemes(dataJSON []byte) []ColorScheme {
	var doc struct {
		Current map[string]json.RawMessage `json:"current"`
	}
	if err := json.Unmarshal(dataJSON, &doc); err != nil {
		return nil
	}
	raw, ok := doc.Current["color_schemes"]
	if !ok {
		return nil
	}

	dec := json.NewDecoder(strings.NewReader(string(raw)))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	var schemes []ColorScheme
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return schemes
		}
		id, _ := keyTok.(string)

		var body struct {
			Settings map[string]any `json:"settings"`
		}
		if err := dec.Decode(&body); err != nil {
			return schemes
		}
		if id == "" {
			continue
		}
		if body.Settings == nil {
			body.Settings = map[string]any{}
		}
		schemes = append(schemes, ColorScheme{ID: id, Settings: body.Settings})
	}
	return schemes
}
