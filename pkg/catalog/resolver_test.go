package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prowheel/wheellab/pkg/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "DT Swiss 240s", want: "dt swiss 240s"},
		{in: " dt Swiss  240s ", want: "dt swiss 240s"},
		{in: "Sapim Race (290mm J-Bend)", want: "sapim race"},
		{in: "Sapim Race (black) (290mm)", want: "sapim race"},
		{in: "Sapim Race(290mm)", want: "sapim race"},
		{in: "(only annotation)", want: ""},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestResolve(t *testing.T) {
	hubs := []model.HubSpec{
		{Brand: "DT Swiss", Model: "350", Mass: 275},
		{Brand: "DT Swiss", Model: "240s", Mass: 210},
		{Brand: "dt swiss", Model: "240S", Mass: 999}, // ambiguous duplicate
	}
	tests := []struct {
		name     string
		ref      string
		wantOk   bool
		wantMass float64
	}{
		{name: "exact", ref: "DT Swiss 240s", wantOk: true, wantMass: 210},
		{name: "case and whitespace", ref: " dt Swiss  240s ", wantOk: true, wantMass: 210},
		{name: "annotation", ref: "DT Swiss 350 (boost)", wantOk: true, wantMass: 275},
		{name: "unknown", ref: "Chris King R45", wantOk: false},
		{name: "empty", ref: "  ", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(hubs, tt.ref)
			assert.Equal(t, tt.wantOk, ok)
			assert.InDelta(t, tt.wantMass, got.Mass, 0)
		})
	}
}

func TestResolveSpokeAnnotation(t *testing.T) {
	spokes := []model.SpokeSpec{{Brand: "Sapim", Model: "Race", Mass: 5.2}}
	got, ok := Resolve(spokes, "Sapim Race (290mm J-Bend)")
	assert.True(t, ok)
	assert.Equal(t, "Sapim Race", got.Label())
}
