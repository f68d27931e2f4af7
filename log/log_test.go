package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel).Named("catalog")
	l.Debug("hidden")
	l.Info("resolved", String("label", "DT Swiss 240s"), Int("holes", 28))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "resolved", entry["msg"])
	assert.Equal(t, "catalog", entry["logger"])
	assert.Equal(t, "DT Swiss 240s", entry["label"])
	assert.InDelta(t, 28, entry["holes"], 0)
}

func TestWithFilter(t *testing.T) {
	opt, err := WithFilter("error+:* debug+:recipe*")
	require.NoError(t, err)
	var buf bytes.Buffer
	l := New(&buf, DebugLevel, opt)

	l.Named("catalog").Info("dropped")
	assert.Empty(t, buf.String())

	l.Named("recipe").Debug("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	ctx := AddToContext(context.Background(), l)
	assert.Same(t, l, GetFromContext(ctx))
	assert.Same(t, Default(), GetFromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: DebugLevel},
		{in: "WARN", want: WarnLevel},
		{in: "nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
