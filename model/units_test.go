package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRemToPx(t *testing.T) {
	cases := []struct {
		value string
		base  float64
		want  string
	}{
		{"1", 16, "16"},
		{"1.5", 16, "24"},
		{"1.5rem", 16, "24"},
		{"0.625", 16, "10"},
		{"1", 10, "10"},
		{"0.333", 16, "5.32"}, // truncated, not rounded: 5.328 -> 5.32
	}
	for _, tc := range cases {
		got, ok := RemToPx(tc.value, tc.base)
		require.True(t, ok, "RemToPx(%q)", tc.value)
		require.Equal(t, tc.want, got, "RemToPx(%q, %v)", tc.value, tc.base)
	}
}

func TestPxToRem(t *testing.T) {
	got, ok := PxToRem("24", 16)
	require.True(t, ok)
	require.Equal(t, "1.5", got)

	got, ok = PxToRem("10px", 16)
	require.True(t, ok)
	require.Equal(t, "0.625", got)

	// 1/3 rem truncated to 4 decimals
	got, ok = PxToRem("16", 48)
	require.True(t, ok)
	require.Equal(t, "0.3333", got)
}

func TestConversionRejectsNonNumeric(t *testing.T) {
	for _, v := range []string{"", "auto", "calc(1rem + 2px)", "px"} {
		_, ok := RemToPx(v, 16)
		require.False(t, ok, "RemToPx(%q)", v)
		_, ok = PxToRem(v, 16)
		require.False(t, ok, "PxToRem(%q)", v)
	}
}

func TestConversionRoundTrip(t *testing.T) {
	for _, x := range []string{"4", "10", "16", "24", "100"} {
		rem, ok := PxToRem(x, 16)
		require.True(t, ok)
		px, ok := RemToPx(rem, 16)
		require.True(t, ok)
		require.Equal(t, x, px, "round trip of %spx", x)
	}
}

func TestConversionDefaultsBaseFontSize(t *testing.T) {
	got, ok := RemToPx("1", 0)
	require.True(t, ok)
	require.Equal(t, "16", got)
}
