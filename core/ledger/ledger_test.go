package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"shared-save/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupLedger(t *testing.T) *Ledger {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	l := New(db)
	l.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, l.Migrate(context.Background()))
	return l
}

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestLedger_AdvanceAndHead(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)

	_, err := l.Head(ctx, "kerbin")
	assert.ErrorIs(t, err, ErrNoHead)

	v1, err := l.Advance(ctx, Entry{WorldID: "kerbin", ObjectKey: "worlds/kerbin/a.sfsw", Author: "ana", Summary: []string{"ana: added Rover"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)

	v2, err := l.Advance(ctx, Entry{WorldID: "kerbin", ExpectedVersion: 1, ObjectKey: "worlds/kerbin/b.sfsw", Author: "ben", CraftCount: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)

	head, err := l.Head(ctx, "kerbin")
	require.NoError(t, err)
	assert.Equal(t, int64(2), head.Version)
	assert.Equal(t, "worlds/kerbin/b.sfsw", head.ObjectKey)
}

func TestLedger_AdvanceRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)

	_, err := l.Advance(ctx, Entry{WorldID: "kerbin", ObjectKey: "a"})
	require.NoError(t, err)
	_, err = l.Advance(ctx, Entry{WorldID: "kerbin", ExpectedVersion: 1, ObjectKey: "b"})
	require.NoError(t, err)

	t.Run("behind head", func(t *testing.T) {
		_, err := l.Advance(ctx, Entry{WorldID: "kerbin", ExpectedVersion: 1, ObjectKey: "c"})
		var stale *StaleError
		require.True(t, errors.As(err, &stale))
		assert.Equal(t, int64(1), stale.Expected)
		assert.Equal(t, int64(2), stale.Current)
	})

	t.Run("seeding an existing world", func(t *testing.T) {
		_, err := l.Advance(ctx, Entry{WorldID: "kerbin", ObjectKey: "d"})
		var stale *StaleError
		require.True(t, errors.As(err, &stale))
		assert.Equal(t, int64(2), stale.Current)
	})

	t.Run("expecting a version of an unknown world", func(t *testing.T) {
		_, err := l.Advance(ctx, Entry{WorldID: "duna", ExpectedVersion: 4, ObjectKey: "e"})
		var stale *StaleError
		require.True(t, errors.As(err, &stale))
		assert.Equal(t, int64(0), stale.Current)
	})

	head, err := l.Head(ctx, "kerbin")
	require.NoError(t, err)
	assert.Equal(t, "b", head.ObjectKey, "rejected publishes leave the head alone")

	history, err := l.History(ctx, "kerbin", 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestLedger_History(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)

	for v := int64(0); v < 5; v++ {
		_, err := l.Advance(ctx, Entry{WorldID: "kerbin", ExpectedVersion: v, ObjectKey: "k", Summary: []string{"altered Rover", "removed Probe"}})
		require.NoError(t, err)
	}
	_, err := l.Advance(ctx, Entry{WorldID: "duna", ObjectKey: "d"})
	require.NoError(t, err)

	history, err := l.History(ctx, "kerbin", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int64{5, 4, 3}, []int64{history[0].Version, history[1].Version, history[2].Version})
	assert.Equal(t, []string{"altered Rover", "removed Probe"}, history[0].Lines())

	heads, err := l.Heads(ctx)
	require.NoError(t, err)
	require.Len(t, heads, 2)
	assert.Equal(t, "duna", heads[0].WorldID)
	assert.Equal(t, int64(5), heads[1].Version)

	row, err := l.Version(ctx, "kerbin", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), row.Version)

	_, err = l.Version(ctx, "kerbin", 9)
	assert.ErrorIs(t, err, ErrNoHead)
}

func TestLedger_Prunable(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)

	for v := int64(0); v < 4; v++ {
		_, err := l.Advance(ctx, Entry{WorldID: "kerbin", ExpectedVersion: v, ObjectKey: "k"})
		require.NoError(t, err)
	}

	rows, err := l.Prunable(ctx, "kerbin", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Version)
	assert.Equal(t, int64(2), rows[1].Version)

	require.NoError(t, l.MarkPruned(ctx, "kerbin", []int64{1, 2}))
	rows, err = l.Prunable(ctx, "kerbin", 2)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = l.Prunable(ctx, "kerbin", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1, "the head is always kept")
	assert.Equal(t, int64(3), rows[0].Version)
}

func TestLedger_DatabaseErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	l := New(db)

	t.Run("Head", func(t *testing.T) {
		mock.ExpectQuery("SELECT \\* FROM `world_heads`").WillReturnError(errors.New("connection reset"))
		_, err := l.Head(context.Background(), "kerbin")
		assert.ErrorContains(t, err, "connection reset")
		assert.NotErrorIs(t, err, ErrNoHead)
	})

	t.Run("Advance rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE `world_heads`").WillReturnError(errors.New("deadlock"))
		mock.ExpectRollback()

		_, err := l.Advance(context.Background(), Entry{WorldID: "kerbin", ExpectedVersion: 3, ObjectKey: "x"})
		assert.ErrorContains(t, err, "deadlock")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
