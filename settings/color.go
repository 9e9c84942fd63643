package settings

import (
	"math"
	"strconv"
	"strings"
)

// RGBA is a decoded color. Channels are sRGB bytes, alpha is 0..1.
type RGBA struct {
	R int
	G int
	B int
	A float64
}

// RGB renders the color as "r, g, b", the form Liquid's color.rgb emits.
func (c RGBA) RGB() string {
	return strconv.Itoa(c.R) + ", " + strconv.Itoa(c.G) + ", " + strconv.Itoa(c.B)
}

// RGBAString renders the color as "r, g, b, a".
func (c RGBA) RGBAString() string {
	return c.RGB() + ", " + formatAlpha(c.A)
}

// ParseHex decodes a 3-, 6- or 8-digit hex color. The 8-digit form carries a
// trailing alpha byte; otherwise alpha is the provided default.
func ParseHex(hex string, alpha float64) (RGBA, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	switch len(h) {
	case 3:
		r, ok1 := hexByte(string(h[0]) + string(h[0]))
		g, ok2 := hexByte(string(h[1]) + string(h[1]))
		b, ok3 := hexByte(string(h[2]) + string(h[2]))
		if !ok1 || !ok2 || !ok3 {
			return RGBA{}, false
		}
		return RGBA{R: r, G: g, B: b, A: alpha}, true
	case 6, 8:
		r, ok1 := hexByte(h[0:2])
		g, ok2 := hexByte(h[2:4])
		b, ok3 := hexByte(h[4:6])
		if !ok1 || !ok2 || !ok3 {
			return RGBA{}, false
		}
		a := alpha
		if len(h) == 8 {
			ab, ok := hexByte(h[6:8])
			if !ok {
				return RGBA{}, false
			}
			a = math.Round(float64(ab)/255*100) / 100
		}
		return RGBA{R: r, G: g, B: b, A: a}, true
	default:
		return RGBA{}, false
	}
}

func hexByte(s string) (int, bool) {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func formatAlpha(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}

// hexToRGBA is the memoizing decoder used during setting resolution. The
// cache lives on the Store so it dies with the scan.
func (s *Store) hexToRGBA(hex string, alpha float64) (RGBA, bool) {
	key := hex + "|" + formatAlpha(alpha)
	if c, ok := s.colorMemo[key]; ok {
		return c.RGBA, c.valid
	}
	c, ok := ParseHex(hex, alpha)
	s.colorMemo[key] = cachedColor{RGBA: c, valid: ok}
	return c, ok
}

type cachedColor struct {
	RGBA
	valid bool
}
