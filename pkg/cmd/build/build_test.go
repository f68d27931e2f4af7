package build

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prowheel/wheellab/pkg/bom"
	"github.com/prowheel/wheellab/pkg/model"
)

func TestCreateRequest(t *testing.T) {
	opts := createOptions{
		customer: "Jane", frontRim: "DT Swiss RR 411", frontHub: "DT Swiss 240s",
		crosses: 3, lacing: "conventional", rounding: "odd",
	}
	req, lacing, err := opts.request()
	require.NoError(t, err)
	assert.Nil(t, req.Rear)
	assert.Equal(t, model.RoundOdd, lacing.Rounding)
	assert.Equal(t, lacing, req.Front.Lacing)

	opts.rearRim = "DT Swiss RR 411"
	req, _, err = opts.request()
	require.NoError(t, err)
	require.NotNil(t, req.Rear)
	assert.Equal(t, "DT Swiss RR 411", req.Rear.RimLabel)

	opts.rounding = "up"
	_, _, err = opts.request()
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestWheelColumn(t *testing.T) {
	tests := []struct {
		name string
		ref  model.WheelRef
		want string
	}{
		{"absent", model.WheelRef{}, "-"},
		{"incomplete", model.WheelRef{Rim: "A", Hub: "B"}, "A/B (incomplete)"},
		{
			"complete",
			model.WheelRef{
				Rim: "A", Hub: "B",
				Lengths: model.SpokeLengths{Left: 297.9, Right: 299.7, Complete: true},
			},
			"A/B 297.9/299.7",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wheelColumn(tt.ref))
		})
	}
}

func TestPrintWeight(t *testing.T) {
	var buf bytes.Buffer
	err := printWeight(&buf, &bom.Breakdown{
		Front: &bom.Wheel{
			RimMass: 380, HubMass: 210, SpokeCount: 28,
			SpokeUnitMass: 5.2, NippleUnitMass: 0.8, Total: 758,
		},
		Total: 758,
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "front"))
	assert.Contains(t, lines[1], "145.6")
	assert.Contains(t, lines[2], "758.0")
}
