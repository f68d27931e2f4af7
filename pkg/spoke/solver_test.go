//nolint:funlen // table tests
package spoke

import (
	"math"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/prowheel/wheellab/pkg/model"
)

func TestSolve(t *testing.T) {
	tests := []struct {
		name string
		args Params
		want float64
	}{
		{
			name: "jbend 3x left",
			args: Params{ERD: 601, FlangeDiameter: 40.8, Offset: 28, Holes: 28, Crosses: 3},
			want: 297.9,
		},
		{
			name: "jbend 3x right",
			args: Params{ERD: 601, FlangeDiameter: 36, Offset: 40.2, Holes: 28, Crosses: 3},
			want: 299.7,
		},
		{
			name: "jbend with hole correction",
			args: Params{
				ERD: 601, FlangeDiameter: 40.8, Offset: 28, Holes: 28, Crosses: 3,
				HoleCorrection: 2.4,
			},
			want: 296.7,
		},
		{
			name: "jbend radial",
			args: Params{ERD: 601, FlangeDiameter: 40.8, Offset: 28, Holes: 28, Crosses: 0},
			want: 281.5,
		},
		{
			name: "jbend 32h",
			args: Params{ERD: 542, FlangeDiameter: 58, Offset: 35, Holes: 32, Crosses: 3},
			want: 263.6,
		},
		{
			name: "degenerate triangle",
			args: Params{ERD: 600, FlangeDiameter: 600, Offset: 0, Holes: 32, Crosses: 0},
			want: 0,
		},
		{
			name: "correction larger than length",
			args: Params{
				ERD: 600, FlangeDiameter: 600, Offset: 0, Holes: 32, Crosses: 0,
				HoleCorrection: 5,
			},
			want: 0,
		},
		{
			name: "straight pull left",
			args: Params{
				ERD: 601, FlangeDiameter: 40.8, Offset: 28, Holes: 28, Crosses: 3,
				Type: model.LacingStraightPull, SPOffset: 1.7,
			},
			want: 302.8,
		},
		{
			name: "straight pull right",
			args: Params{
				ERD: 601, FlangeDiameter: 36, Offset: 40.2, Holes: 28, Crosses: 3,
				Type: model.LacingStraightPull, SPOffset: 1.8,
			},
			want: 304.4,
		},
		{
			name: "straight pull radius override",
			args: Params{
				ERD: 601, FlangeDiameter: 40.8, Offset: 28, Holes: 28, Crosses: 3,
				Type: model.LacingStraightPull, SPRadius: 30,
			},
			want: 300.3,
		},
		{
			name: "straight pull flange exceeds rim",
			args: Params{
				ERD: 30, FlangeDiameter: 40.8, Offset: 5, Holes: 28, Crosses: 3,
				Type: model.LacingStraightPull,
			},
			want: 5.0,
		},
		{
			name: "straight pull ignores hole correction",
			args: Params{
				ERD: 601, FlangeDiameter: 40.8, Offset: 28, Holes: 28, Crosses: 3,
				Type: model.LacingStraightPull, SPOffset: 1.7, HoleCorrection: 10,
			},
			want: 302.8,
		},
		{
			name: "missing erd",
			args: Params{FlangeDiameter: 40.8, Offset: 28, Holes: 28, Crosses: 3},
			want: 0,
		},
		{
			name: "missing flange",
			args: Params{ERD: 601, Offset: 28, Holes: 28, Crosses: 3},
			want: 0,
		},
		{
			name: "missing holes",
			args: Params{ERD: 601, FlangeDiameter: 40.8, Offset: 28, Crosses: 3},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Solve(tt.args)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSolveNonNegative(t *testing.T) {
	for _, lacing := range []model.LacingType{
		model.LacingConventional, model.LacingStraightPull,
	} {
		for erd := 10.0; erd <= 700; erd += 45 {
			for fd := 10.0; fd <= 800; fd += 55 {
				for crosses := 0; crosses <= 4; crosses++ {
					got := Solve(Params{
						ERD: erd, FlangeDiameter: fd, Offset: 20, Holes: 32,
						Crosses: crosses, Type: lacing, HoleCorrection: 3, SPOffset: -4,
					})
					if got < 0 || math.IsNaN(got) {
						t.Fatalf("Solve(erd=%v, fd=%v, x=%d, %v) = %v",
							erd, fd, crosses, lacing, got)
					}
				}
			}
		}
	}
}

func TestSolveWheelSymmetry(t *testing.T) {
	rim := model.RimSpec{Brand: "DT Swiss", Model: "RR 411", ERD: 601, Holes: 28}
	hub := model.HubSpec{
		Brand: "DT Swiss", Model: "240s",
		Left:  model.HubSide{FlangeDiameter: 40.8, Offset: 28, SPOffset: lo.ToPtr(1.7)},
		Right: model.HubSide{FlangeDiameter: 36, Offset: 40.2, SPOffset: lo.ToPtr(1.8)},
	}
	swapped := hub
	swapped.Left, swapped.Right = hub.Right, hub.Left

	for _, lacing := range []model.LacingType{
		model.LacingConventional, model.LacingStraightPull,
	} {
		req := model.LacingRequest{Crosses: 3, Type: lacing}
		got := SolveWheel(rim, hub, req)
		check := SolveWheel(rim, swapped, req)
		assert.Equal(t, got.Left, check.Right, lacing.String())
		assert.Equal(t, got.Right, check.Left, lacing.String())
	}
}

func TestSolveWheel(t *testing.T) {
	rim := model.RimSpec{ERD: 601, Holes: 28}
	hub := model.HubSpec{
		Left:  model.HubSide{FlangeDiameter: 40.8, Offset: 28, SPOffset: lo.ToPtr(1.7)},
		Right: model.HubSide{FlangeDiameter: 36, Offset: 40.2, SPOffset: lo.ToPtr(1.8)},
	}
	uncalibrated := model.HubSpec{
		Left:  model.HubSide{FlangeDiameter: 40.8, Offset: 28},
		Right: model.HubSide{FlangeDiameter: 36, Offset: 40.2},
	}
	zeroCalibrated := model.HubSpec{
		Left:  model.HubSide{FlangeDiameter: 40.8, Offset: 28, SPOffset: lo.ToPtr(0.0)},
		Right: model.HubSide{FlangeDiameter: 36, Offset: 40.2, SPOffset: lo.ToPtr(0.0)},
	}
	tests := []struct {
		name string
		hub  model.HubSpec
		req  model.LacingRequest
		want model.SpokeLengths
	}{
		{
			name: "jbend holes from rim",
			hub:  hub,
			req:  model.LacingRequest{Crosses: 3},
			want: model.SpokeLengths{Left: 297.9, Right: 299.7, Complete: true},
		},
		{
			name: "jbend rounded even",
			hub:  hub,
			req:  model.LacingRequest{Crosses: 3, Rounding: model.RoundEven},
			want: model.SpokeLengths{Left: 298, Right: 300, Complete: true},
		},
		{
			name: "straight pull rounded odd",
			hub:  hub,
			req: model.LacingRequest{
				Holes: 28, Crosses: 3, Type: model.LacingStraightPull,
				Rounding: model.RoundOdd,
			},
			want: model.SpokeLengths{Left: 303, Right: 305, Complete: true},
		},
		{
			name: "straight pull uncalibrated",
			hub:  uncalibrated,
			req:  model.LacingRequest{Crosses: 3, Type: model.LacingStraightPull},
			want: model.SpokeLengths{Left: 301.1, Right: 302.6, Complete: true},
		},
		{
			name: "straight pull calibrated with zero",
			hub:  zeroCalibrated,
			req:  model.LacingRequest{Crosses: 3, Type: model.LacingStraightPull},
			want: model.SpokeLengths{Left: 301.1, Right: 302.6, Complete: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SolveWheel(rim, tt.hub, tt.req)
			assert.InDelta(t, tt.want.Left, got.Left, 1e-9)
			assert.InDelta(t, tt.want.Right, got.Right, 1e-9)
			assert.Equal(t, tt.want.Complete, got.Complete)
		})
	}
}

func TestSolveWheelDegenerate(t *testing.T) {
	rim := model.RimSpec{ERD: 600, Holes: 32}
	hub := model.HubSpec{
		Left:  model.HubSide{FlangeDiameter: 600},
		Right: model.HubSide{FlangeDiameter: 600},
	}
	got := SolveWheel(rim, hub, model.LacingRequest{Crosses: 0})
	assert.Equal(t, model.SpokeLengths{Complete: true}, got)
	assert.False(t, got.IsIncomplete())
}

func TestParamsComplete(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want bool
	}{
		{"complete", Params{ERD: 601, FlangeDiameter: 40.8, Holes: 28}, true},
		{"no erd", Params{FlangeDiameter: 40.8, Holes: 28}, false},
		{"no flange", Params{ERD: 601, Holes: 28}, false},
		{"no holes", Params{ERD: 601, FlangeDiameter: 40.8}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Complete())
		})
	}
}

func TestSolveWheelIncomplete(t *testing.T) {
	got := SolveWheel(model.RimSpec{}, model.HubSpec{}, model.LacingRequest{
		Crosses: 3, Rounding: model.RoundOdd,
	})
	assert.True(t, got.IsIncomplete())
	assert.Zero(t, got.Left)
	assert.Zero(t, got.Right)
}
