package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "data", "runs.db"))
	require.NoError(t, err)
	repo := NewRepository(db)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveAndListRuns(t *testing.T) {
	repo := newRepo(t)

	require.NoError(t, repo.SaveRun(&Run{RunID: "a", Company: "삼성전자", Status: StatusOK, LastClose: 73000}))
	require.NoError(t, repo.SaveRun(&Run{RunID: "b", Company: "삼성전자", Status: StatusFailed, FailedStage: "fetch", Error: "page 3: timeout"}))
	require.NoError(t, repo.SaveRun(&Run{RunID: "c", Company: "LG전자", Status: StatusOK}))

	runs, err := repo.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)

	last, err := repo.LastSuccessfulRun("삼성전자")
	require.NoError(t, err)
	assert.Equal(t, "a", last.RunID)
	assert.Equal(t, int64(73000), last.LastClose)
}

func TestLastSuccessfulRunMissing(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.LastSuccessfulRun("없음")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRunIDUnique(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.SaveRun(&Run{RunID: "x", Company: "a"}))
	assert.Error(t, repo.SaveRun(&Run{RunID: "x", Company: "a"}))
}
