package recipe

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prowheel/wheellab/pkg/model"
)

func TestPrintRecipes(t *testing.T) {
	var buf bytes.Buffer
	err := printRecipes(&buf, []*model.RecipeEntry{
		{
			Fingerprint: model.Fingerprint{
				RimLabel: "DT Swiss RR 411", HubLabel: "DT Swiss 240 SP",
				Holes: 28, Crosses: 3, StraightPull: true,
			},
			Left: 302.8, Right: 304.4, HitCount: 4,
		},
	})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "straight-pull")
	assert.Contains(t, lines[1], "302.8")
	assert.True(t, strings.HasSuffix(lines[1], "4"))
}
