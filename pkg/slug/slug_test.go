package slug_test

import (
	"testing"

	"goldlegacy/pkg/slug"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Anillo Ónix", "anillo-onix"},
		{"  Cadena   Barbada  ", "cadena-barbada"},
		{"Dije Corazón 18K", "dije-corazon-18k"},
		{"Aretes & Dijes (Promoción)", "aretes--dijes-promocion"},
		{"ÑANDÚ", "nandu"},
		{"", ""},
		{"---", "---"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slug.Make(tc.in), "input %q", tc.in)
	}
}
