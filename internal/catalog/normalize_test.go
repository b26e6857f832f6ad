package catalog_test

import (
	"testing"

	"catalog-service/internal/catalog"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Đỏ", "DO"},
		{"Xanh Dương", "XANHDUONG"},
		{"", ""},
		{"xl", "XL"},
		{"Light-Blue", "LIGHT-BLUE"},
		{"--Navy--Blue--", "NAVY-BLUE"},
		{"Crème Brûlée", "CREMEBRULEE"},
		{"Straße", "STRASSE"},
		{"  Ørsted ", "ORSTED"},
		{"Trắng/Đen", "TRANGDEN"},
		{"36.5", "365"},
		{"!!!", ""},
		{"---", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := catalog.Normalize(tc.in)
			require.Equal(t, tc.want, got)
			require.Equal(t, got, catalog.Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestNormalize_OutputAlphabet(t *testing.T) {
	for _, in := range []string{"Vàng chanh", "Xám tro 2", "Ñandú", "a__b  c", "Ünïcödé_dash"} {
		out := catalog.Normalize(in)
		for _, r := range out {
			ok := (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-'
			require.Truef(t, ok, "unexpected rune %q in %q", r, out)
		}
		require.NotContains(t, out, "--")
	}
}
