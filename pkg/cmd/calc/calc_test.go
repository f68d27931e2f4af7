package calc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/service"
)

func defaultOptions() calcOptions {
	return calcOptions{
		erd: 601, holes: 28, crosses: 3,
		leftPCD: 40.8, leftOffset: 28.0, rightPCD: 36.0, rightOffset: 40.2,
		lacing: "conventional", rounding: "none",
	}
}

func TestRequest(t *testing.T) {
	t.Run("dimensions", func(t *testing.T) {
		opts := defaultOptions()
		req, err := opts.request()
		require.NoError(t, err)
		require.NotNil(t, req.Rim)
		require.NotNil(t, req.Hub)
		assert.Equal(t, 601.0, req.Rim.ERD)
		assert.Equal(t, 28, req.Rim.Holes)
		assert.Equal(t, model.HubSide{FlangeDiameter: 40.8, Offset: 28.0}, req.Hub.Left)
		assert.Equal(t, 0, req.Lacing.Holes)
	})
	t.Run("catalog labels", func(t *testing.T) {
		opts := defaultOptions()
		opts.rimLabel = "DT Swiss RR 411"
		opts.hubLabel = "DT Swiss 240s"
		opts.lacing = "sp"
		opts.rounding = "even"
		req, err := opts.request()
		require.NoError(t, err)
		assert.Nil(t, req.Rim)
		assert.Nil(t, req.Hub)
		assert.Equal(t, model.LacingStraightPull, req.Lacing.Type)
		assert.Equal(t, model.RoundEven, req.Lacing.Rounding)
		assert.Equal(t, 0, req.Lacing.Holes)
	})
	t.Run("holes override", func(t *testing.T) {
		opts := defaultOptions()
		opts.rimLabel = "DT Swiss RR 411"
		opts.holes = 32
		opts.holesSet = true
		req, err := opts.request()
		require.NoError(t, err)
		assert.Equal(t, 32, req.Lacing.Holes)
	})
	t.Run("sp offset only when set", func(t *testing.T) {
		opts := defaultOptions()
		opts.lacing = "sp"
		opts.rightSPOffset = 0
		opts.rightSPSet = true
		req, err := opts.request()
		require.NoError(t, err)
		assert.Nil(t, req.Hub.Left.SPOffset, "left falls back to --sp-offset-left")
		require.NotNil(t, req.Hub.Right.SPOffset)
		assert.Equal(t, 0.0, *req.Hub.Right.SPOffset)
	})
	t.Run("invalid lacing", func(t *testing.T) {
		opts := defaultOptions()
		opts.lacing = "radial-twisted"
		_, err := opts.request()
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	err := printResult(&buf, &service.CalcResult{
		Rim:     model.RimSpec{Brand: "DT Swiss", Model: "RR 411"},
		Hub:     model.HubSpec{Brand: "DT Swiss", Model: "240s"},
		Lengths: model.SpokeLengths{Left: 297.9, Right: 299.7, Complete: true},
		Recipe:  &model.UpsertResult{Outcome: model.UpsertUpdated, HitCount: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "rim:   DT Swiss RR 411\nhub:   DT Swiss 240s\n"+
		"left:  297.9 mm\nright: 299.7 mm\nrecipe updated (hits: 2)\n", buf.String())

	buf.Reset()
	err = printResult(&buf, &service.CalcResult{Missing: []model.PartKind{model.PartHub}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "incomplete: unresolved")

	buf.Reset()
	err = printResult(&buf, &service.CalcResult{
		Rim: model.RimSpec{Brand: "custom", Model: "ERD 0"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "flange diameter")

	buf.Reset()
	err = printResult(&buf, &service.CalcResult{
		Rim:     model.RimSpec{Brand: "custom", Model: "ERD 600"},
		Hub:     model.HubSpec{Brand: "custom", Model: "600/600"},
		Lengths: model.SpokeLengths{Complete: true},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "left:  0.0 mm")
}
