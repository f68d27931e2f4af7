package migrate

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestToPgxURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgresql://u:p@localhost:5432/db", "pgx5://u:p@localhost:5432/db"},
		{"postgres://u:p@localhost/db", "pgx5://u:p@localhost/db"},
		{"pgx5://u:p@localhost/db", "pgx5://u:p@localhost/db"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, toPgxURL(tt.in), tt.want)
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	assert.NilError(t, err)
	// one up and one down file per version
	assert.Equal(t, len(entries)%2, 0)
	assert.Assert(t, len(entries) >= 6)
}
