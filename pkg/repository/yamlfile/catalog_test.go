package yamlfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prowheel/wheellab/pkg/model"
)

const sampleFile = `version: 1.0.0
rims:
  - brand: DT Swiss
    model: RR 411
    erd: 601
    holes: 28
    mass: 380
hubs:
  - brand: DT Swiss
    model: 240 SP
    mass: 235
    left: {pcd: 40.8, offset: 28.0, spOffset: 1.7}
    right: {pcd: 36.0, offset: 40.2, spOffset: 1.8, spRadius: 17.5}
spokes:
  - {brand: Sapim, model: Race, mass: 5.2}
nipples:
  - {brand: Sapim, model: Polyax Alu, mass: 0.8}
`

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"v1.0.0", false},
		{"1.0.0", false},
		{"v1.1", false},
		{"v1.9.3", false},
		{"v0.9.0", true},
		{"v2.0.0", true},
		{"", true},
		{"latest", true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := CheckVersion(tt.version)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedVersion)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleFile))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Size())
	hub, ok := c.Hub("dt swiss 240 sp")
	require.True(t, ok)
	assert.Equal(t, model.HubSide{
		FlangeDiameter: 36.0, Offset: 40.2, SPOffset: lo.ToPtr(1.8), SPRadius: 17.5,
	}, hub.Right)

	_, err = Parse([]byte("version: 2.0.0\n"))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = Parse([]byte("version: 1.0.0\nframes: []\n"))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestMissingFileAndSave(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.yml")
	s, err := NewCatalogRepository(path)
	require.NoError(t, err)

	rims, err := s.ListRims(ctx)
	require.NoError(t, err)
	assert.Empty(t, rims)

	rim := model.RimSpec{Brand: "DT Swiss", Model: "RR 411", ERD: 601, Holes: 28, Mass: 380}
	require.NoError(t, s.SaveRim(ctx, &rim))
	rim.Mass = 385
	require.NoError(t, s.SaveRim(ctx, &rim))
	require.NoError(t, s.SaveSpoke(ctx, &model.SpokeSpec{Brand: "Sapim", Model: "Race", Mass: 5.2}))

	reopened, err := NewCatalogRepository(path)
	require.NoError(t, err)
	rims, err = reopened.ListRims(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.RimSpec{rim}, rims)
	spokes, err := reopened.ListSpokes(ctx)
	require.NoError(t, err)
	assert.Len(t, spokes, 1)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "version: "+FormatVersion)
}

func TestReloadKeepsDataOnError(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFile), 0o600))
	s, err := NewCatalogRepository(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("version: [broken"), 0o600))
	assert.Error(t, s.Reload())
	rims, err := s.ListRims(ctx)
	require.NoError(t, err)
	assert.Len(t, rims, 1)
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1.0.0\n"), 0o600))
	s, err := NewCatalogRepository(path)
	require.NoError(t, err)

	changed := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func() { changed <- struct{}{} })
	}()

	// the watcher may not be registered yet, keep writing until it reacts
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-changed:
			break loop
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, []byte(sampleFile), 0o600))
		case <-deadline:
			t.Fatal("no reload within 5s")
		}
	}
	rims, err := s.ListRims(ctx)
	require.NoError(t, err)
	assert.Len(t, rims, 1)

	cancel()
	assert.NoError(t, <-done)
}
