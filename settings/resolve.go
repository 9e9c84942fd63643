package settings

import (
	"strconv"
	"strings"
)

// Resolve descends through nested mappings in the current layer following a
// dotted path. It stops and reports absent the moment a non-mapping value is
// reached before the path is exhausted.
func (s *Store) Resolve(dottedPath string) (any, bool) {
	return resolvePath(s.current, dottedPath)
}

func resolvePath(root map[string]any, dottedPath string) (any, bool) {
	if dottedPath == "" {
		return nil, false
	}
	var current any = root
	for _, part := range strings.Split(dottedPath, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Get looks up a setting by key: current values first (with dotted-path
// descent), then schema defaults (flat key only). A trailing .rgb or .rgba
// on the key decodes a hex color value into its channel form. Results are
// memoized for the lifetime of the store, which is one scan.
func (s *Store) Get(key string) (any, bool) {
	if hit, ok := s.memo[key]; ok {
		return hit.value, hit.found
	}
	v, found := s.lookup(key)
	s.memo[key] = cachedLookup{value: v, found: found}
	return v, found
}

func (s *Store) lookup(key string) (any, bool) {
	base, colorForm := splitColorSuffix(key)

	v, ok := resolvePath(s.current, base)
	if !ok {
		v, ok = s.defaults[base]
	}
	if !ok {
		return nil, false
	}
	if colorForm == "" {
		return v, true
	}

	hex, isStr := v.(string)
	if !isStr {
		return nil, false
	}
	c, ok := s.hexToRGBA(hex, 1)
	if !ok {
		return nil, false
	}
	if colorForm == "rgba" {
		return c.RGBAString(), true
	}
	return c.RGB(), true
}

// SchemeValue looks up a key within one color scheme's settings, honoring
// the same .rgb/.rgba color suffixes as Get.
func (s *Store) SchemeValue(scheme ColorScheme, key string) (any, bool) {
	base, colorForm := splitColorSuffix(key)
	v, ok := scheme.Settings[base]
	if !ok {
		return nil, false
	}
	if colorForm == "" {
		return v, true
	}
	hex, isStr := v.(string)
	if !isStr {
		return nil, false
	}
	c, ok := s.hexToRGBA(hex, 1)
	if !ok {
		return nil, false
	}
	if colorForm == "rgba" {
		return c.RGBAString(), true
	}
	return c.RGB(), true
}

func splitColorSuffix(key string) (base, colorForm string) {
	switch {
	case strings.HasSuffix(key, ".rgba"):
		return strings.TrimSuffix(key, ".rgba"), "rgba"
	case strings.HasSuffix(key, ".rgb"):
		return strings.TrimSuffix(key, ".rgb"), "rgb"
	default:
		return key, ""
	}
}

// FormatValue renders a resolved setting for textual substitution. Numbers
// and booleans use their canonical string form, strings pass through, and
// anything still structured becomes an opaque placeholder. Never panics.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return "[object]"
	}
}
