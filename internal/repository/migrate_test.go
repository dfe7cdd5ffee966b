package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMigrator struct {
	version uint
	dirty   bool
	verErr  error
	upErr   error
	upCalls int
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, f.dirty, f.verErr
}

func (f *fakeMigrator) Up() error {
	f.upCalls++
	if f.upErr == nil {
		f.version++
	}
	return f.upErr
}

func TestApplyMigrations(t *testing.T) {
	tests := []struct {
		name      string
		migrator  *fakeMigrator
		wantErr   error
		wantCalls int
	}{
		{
			name:      "fresh database",
			migrator:  &fakeMigrator{verErr: migrate.ErrNilVersion},
			wantCalls: 1,
		},
		{
			name:      "already up to date",
			migrator:  &fakeMigrator{version: 1, upErr: migrate.ErrNoChange},
			wantCalls: 1,
		},
		{
			name:      "dirty schema is not forced",
			migrator:  &fakeMigrator{version: 1, dirty: true},
			wantErr:   ErrDirtySchema,
			wantCalls: 0,
		},
		{
			name:      "failed migration",
			migrator:  &fakeMigrator{upErr: errors.New("syntax error")},
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := applyMigrations(tt.migrator, zap.NewNop())

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.migrator.upErr != nil && !errors.Is(tt.migrator.upErr, migrate.ErrNoChange):
				assert.ErrorIs(t, err, tt.migrator.upErr)
			default:
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, tt.migrator.upCalls)
		})
	}
}

// Migrate works on the already open pool, so keyword DSNs never reach
// golang-migrate's URL parser and the pool survives the migration.
func TestMigrate_UsesOpenPool(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	boom := errors.New("permission denied")
	mock.ExpectPing()
	mock.ExpectQuery(`SELECT CURRENT_DATABASE\(\)`).WillReturnError(boom)

	err = Migrate(context.Background(), db, zap.NewNop())
	require.Error(t, err)
	assert.ErrorContains(t, err, "init migrations")
	assert.ErrorContains(t, err, boom.Error())

	mock.ExpectPing()
	assert.NoError(t, db.PingContext(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
