package bob

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"
	"gotest.tools/v3/assert"

	"github.com/prowheel/wheellab/pkg/model"
	"github.com/prowheel/wheellab/pkg/repository/api"
	"github.com/prowheel/wheellab/testsupport/testdb"
)

func TestRunInTx(t *testing.T) {
	pool := testdb.InitTestDB()
	db := bob.NewDB(stdlib.OpenDBFromPool(pool))
	repos := NewRepositories(db)
	tm := NewTransactionManager(db)
	ctx := context.Background()
	fp := model.Fingerprint{RimLabel: "R", HubLabel: "H", Holes: 28, Crosses: 3}
	errAbort := errors.New("abort")

	tests := []struct {
		name      string
		fnErr     error
		wantBuild bool
	}{
		{"rollback", errAbort, false},
		{"commit", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			build := &model.BuildRecord{
				Customer: tt.name,
				Front:    model.WheelRef{Rim: "R", Hub: "H"},
			}
			err := tm.RunInTx(ctx, func(ctx context.Context) error {
				if err := repos.Build().Create(ctx, build); err != nil {
					return err
				}
				if _, err := repos.Recipe().Upsert(ctx, fp, 290, 292); err != nil {
					return err
				}
				return tt.fnErr
			})
			if tt.fnErr != nil {
				assert.ErrorIs(t, err, tt.fnErr)
			} else {
				assert.NilError(t, err)
			}

			_, err = repos.Build().LoadByID(ctx, build.ID)
			if tt.wantBuild {
				assert.NilError(t, err)
			} else {
				assert.ErrorIs(t, err, api.ErrNoRows)
			}
		})
	}
	entry, err := repos.Recipe().LoadByFingerprint(ctx, fp)
	assert.NilError(t, err)
	assert.Equal(t, entry.HitCount, 1)
}
