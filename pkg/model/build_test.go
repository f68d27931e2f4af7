package model

import (
	"testing"

	"github.com/aarondl/opt/omit"
	"github.com/stretchr/testify/assert"
)

func TestWheelSpokeCount(t *testing.T) {
	front := WheelRef{Rim: "DT Swiss RR 411"}
	tests := []struct {
		name  string
		build BuildRecord
		holes int
		want  int
	}{
		{"default from rim", BuildRecord{Front: front}, 28, 28},
		{"stored single wheel", BuildRecord{Front: front, SpokeCount: 32}, 28, 32},
		{"stored wheelset", BuildRecord{Front: front, Rear: front, SpokeCount: 56}, 28, 28},
		{"wheelset default", BuildRecord{Front: front, Rear: front}, 24, 24},
		{"blank rear is absent", BuildRecord{Front: front, Rear: WheelRef{Rim: "  "}, SpokeCount: 32}, 28, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.build.WheelSpokeCount(tt.holes))
		})
	}
}

func TestDefaultSpokeCount(t *testing.T) {
	assert.Equal(t, 28, DefaultSpokeCount(28, false))
	assert.Equal(t, 56, DefaultSpokeCount(28, true))
}

func TestBuildPatch(t *testing.T) {
	b := BuildRecord{Customer: "Jane", Status: BuildStatusRegistered, SpokeCount: 28}

	empty := BuildPatch{}
	assert.True(t, empty.IsEmpty())
	empty.Apply(&b)
	assert.Equal(t, "Jane", b.Customer)

	p := BuildPatch{Status: omit.From("laced"), SpokeCount: omit.From(0)}
	assert.False(t, p.IsEmpty())
	p.Apply(&b)
	assert.Equal(t, "laced", b.Status)
	assert.Equal(t, 0, b.SpokeCount)
	assert.Equal(t, "Jane", b.Customer)
}
