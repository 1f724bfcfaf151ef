package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/reposcout/core"
	"github.com/poiesic/reposcout/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.RecordRepository {
	t.Helper()
	repo, backend, err := NewMemoryRecordRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func testDoc(name, desc string) *core.RecordDoc {
	return &core.RecordDoc{
		Record: &core.Record{
			Platform:    core.PlatformGitHub,
			FullName:    name,
			Description: desc,
			Language:    "Go",
			Topics:      []string{"test"},
			Stars:       7,
			PushedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Readme: "# " + name,
	}
}

func TestRecordRepository_PutAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := testDoc("user/logger", "A logging library")
	require.NoError(t, repo.PutRecords(ctx, doc))

	got, err := repo.GetRecord(ctx, "GitHub:user/logger")
	require.NoError(t, err)
	assert.Equal(t, *doc.Record, *got.Record)
	assert.Equal(t, doc.Readme, got.Readme)
}

func TestRecordRepository_PutReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutRecords(ctx, testDoc("user/logger", "old")))
	require.NoError(t, repo.PutRecords(ctx, testDoc("user/logger", "new")))

	got, err := repo.GetRecord(ctx, "GitHub:user/logger")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Record.Description)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordRepository_PutRejectsMissingRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.PutRecords(ctx, testDoc("user/a", "a"), &core.RecordDoc{Readme: "orphan"})
	assert.ErrorIs(t, err, core.ErrInvalidRecord)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRecordRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetRecord(context.Background(), "GitHub:nobody/nothing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRecordRepository_GetRecordsSkipsMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutRecords(ctx, testDoc("user/a", "a"), testDoc("user/b", "b")))

	docs, err := repo.GetRecords(ctx, "GitHub:user/a", "GitHub:user/missing", "GitHub:user/b")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "user/a", docs[0].Record.FullName)
	assert.Equal(t, "user/b", docs[1].Record.FullName)
}

func TestRecordRepository_Delete(t *testing.T) {
	tests := []struct {
		name      string
		ids       []string
		wantErr   error
		wantCount int
	}{
		{"existing", []string{"GitHub:user/a"}, nil, 1},
		{"all", []string{"GitHub:user/a", "GitHub:user/b"}, nil, 0},
		{"missing aborts batch", []string{"GitHub:user/a", "GitHub:user/zzz"}, storage.ErrNotFound, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t)
			ctx := context.Background()
			require.NoError(t, repo.PutRecords(ctx, testDoc("user/a", "a"), testDoc("user/b", "b")))

			err := repo.DeleteRecords(ctx, tt.ids...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			count, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestRecordRepository_ForEachOrdered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutRecords(ctx,
		testDoc("zeta/z", "z"),
		testDoc("alpha/a", "a"),
		testDoc("mid/m", "m"),
	))

	var names []string
	err := repo.ForEach(ctx, func(doc *core.RecordDoc) error {
		names = append(names, doc.Record.FullName)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha/a", "mid/m", "zeta/z"}, names)
}

func TestRecordRepository_ForEachStopsOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.PutRecords(ctx, testDoc("user/a", "a"), testDoc("user/b", "b")))

	stop := errors.New("stop")
	calls := 0
	err := repo.ForEach(ctx, func(doc *core.RecordDoc) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestRecordRepository_Clear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.PutRecords(ctx, testDoc("user/a", "a"), testDoc("user/b", "b")))

	require.NoError(t, repo.Clear(ctx))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordRepository_ClosedBackend(t *testing.T) {
	repo, backend, err := NewMemoryRecordRepository()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = repo.GetRecord(context.Background(), "GitHub:user/a")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, repo.PutRecords(context.Background(), testDoc("user/a", "a")), storage.ErrStorageClosed)
}
