package repository

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"formflow_backend/internal/model"
	"formflow_backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedSubmissions(t *testing.T, repo *FormSubmissionRepository, pageID uint, times []time.Time) []uint {
	t.Helper()
	ids := make([]uint, 0, len(times))
	for _, ts := range times {
		sub := &model.FormSubmission{
			PageID:     pageID,
			SubmitTime: ts,
			FormData:   json.RawMessage(`{}`),
		}
		require.NoError(t, repo.Create(sub))
		ids = append(ids, sub.ID)
	}
	return ids
}

func TestWindowBounds(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewFormSubmissionRepository(db)

	day := func(d int) time.Time { return time.Date(2014, 3, d, 12, 0, 0, 0, time.UTC) }
	seedSubmissions(t, repo, 1, []time.Time{day(1), day(2), day(3), day(4)})

	from := time.Date(2014, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2014, 3, 4, 0, 0, 0, 0, time.UTC)

	// 下界包含，上界排除
	count, err := repo.Count(SubmissionWindow{PageID: 1, From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	rows, err := repo.FindWindow(SubmissionWindow{PageID: 1, From: &from, To: &to}, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, day(2), rows[0].SubmitTime.UTC())
	assert.Equal(t, day(3), rows[1].SubmitTime.UTC())
}

func TestFindWindowTieBreakByID(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewFormSubmissionRepository(db)

	same := time.Date(2014, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := seedSubmissions(t, repo, 1, []time.Time{same, same, same})

	rows, err := repo.FindWindow(SubmissionWindow{PageID: 1}, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, ids[i], row.ID)
	}
}

func TestForEachWindowVisitsEverything(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewFormSubmissionRepository(db)

	base := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 0, 25)
	for i := 0; i < 25; i++ {
		times = append(times, base.Add(time.Duration(i)*time.Minute))
	}
	seedSubmissions(t, repo, 1, times)
	seedSubmissions(t, repo, 2, []time.Time{base})

	var seen []time.Time
	var batches int
	err := repo.ForEachWindow(SubmissionWindow{PageID: 1}, 10, func(batch []model.FormSubmission) error {
		batches++
		for _, sub := range batch {
			seen = append(seen, sub.SubmitTime.UTC())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, batches)
	require.Len(t, seen, 25)
	for i, ts := range seen {
		assert.Equal(t, times[i], ts)
	}
}

func TestDeleteByIDAndPage(t *testing.T) {
	db := newRepoTestDB(t)
	repo := NewFormSubmissionRepository(db)

	ts := time.Date(2014, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := seedSubmissions(t, repo, 1, []time.Time{ts, ts})

	// 页面不匹配不删
	deleted, err := repo.DeleteByIDAndPage(ids[0], 2)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.DeleteByIDAndPage(ids[0], 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	// 二次删除算未命中
	deleted, err = repo.DeleteByIDAndPage(ids[0], 1)
	require.NoError(t, err)
	assert.False(t, deleted)

	count, err := repo.CountByPage(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
