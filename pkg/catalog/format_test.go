package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/younsl/jj/internal/models"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.096, "0.096"},
		{0.0104, "0.0104"},
		{2, "2.0"},
		{10, "10.0"},
		{13.338, "13.338"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1.5e-7, "1.5e-07"},
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{0, "0.0"},
		{math.Inf(1), "inf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name string
		in   models.Number
		want string
	}{
		{name: "integer", in: models.Number{Literal: "16", Valid: true}, want: "16"},
		{name: "fraction", in: models.Number{Literal: "0.5", Valid: true}, want: "0.5"},
		{name: "trailing zero", in: models.Number{Literal: "1.50", Valid: true}, want: "1.5"},
		{name: "integral float", in: models.Number{Literal: "2.0", Valid: true}, want: "2.0"},
		{name: "integral clock speed", in: models.Number{Literal: "3.0", Valid: true}, want: "3.0"},
		{name: "string", in: models.Number{Literal: "2.5 GHz", Quoted: true, Valid: true}, want: "2.5 GHz"},
		{name: "null", in: models.Number{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.in))
		})
	}
}
