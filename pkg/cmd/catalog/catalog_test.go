package catalog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	partsCatalog "github.com/prowheel/wheellab/pkg/catalog"
	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/testsupport/basedata"
)

func TestPrintCatalog(t *testing.T) {
	c := &partsCatalog.Catalog{
		Rims:    []model.RimSpec{basedata.SampleRim()},
		Hubs:    []model.HubSpec{basedata.SampleHub()},
		Spokes:  []model.SpokeSpec{basedata.SampleSpoke()},
		Nipples: []model.NippleSpec{basedata.SampleNipple()},
	}
	tests := []struct {
		name     string
		kinds    []model.PartKind
		contains []string
		missing  []string
	}{
		{
			name:     "all kinds",
			kinds:    model.PartKinds,
			contains: []string{"DT Swiss RR 411", "40.8/28.0", "Sapim Race", "Sapim Polyax Alu"},
		},
		{
			name:     "rims only",
			kinds:    []model.PartKind{model.PartRim},
			contains: []string{"DT Swiss RR 411", "601.0"},
			missing:  []string{"HUB", "Sapim"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printCatalog(&buf, c, tt.kinds))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.missing {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
