package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tact/errors"
	qtesting "github.com/teranos/tact/internal/testing"
)

func TestStartAndFinalizeRun(t *testing.T) {
	db := qtesting.CreateTestDB(t)
	store := NewStore(db)
	runs := NewRunStore(db)

	job := testJob("nightly-scan")
	require.NoError(t, store.CreateJob(job))

	started := time.Now().UTC().Truncate(time.Second)
	runID, err := runs.StartRun(job.ID, started, "tact-run")
	require.NoError(t, err)
	require.NotZero(t, runID)

	rec, err := runs.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, rec.Status)
	assert.False(t, rec.Final())
	assert.Nil(t, rec.CompletedAt)
	assert.Equal(t, "nightly-scan", rec.JobName)

	completed := started.Add(3 * time.Second)
	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, runs.FinalizeRun(tx, runID, StatusSuccess, completed, "all clear", "", 3000))
	require.NoError(t, tx.Commit())

	rec, err = runs.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, rec.Status)
	assert.True(t, rec.Final())
	require.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.CompletedAt.Equal(completed))
	assert.Equal(t, "all clear", rec.Output)
	require.NotNil(t, rec.DurationMS)
	assert.Equal(t, int64(3000), *rec.DurationMS)
}

func TestFinalizeRunNotFound(t *testing.T) {
	db := qtesting.CreateTestDB(t)
	runs := NewRunStore(db)

	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	err = runs.FinalizeRun(tx, 9999, StatusFailed, time.Now(), "", "boom", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRunNotFound))
}

func TestListRuns(t *testing.T) {
	db := qtesting.CreateTestDB(t)
	store := NewStore(db)
	runs := NewRunStore(db)

	a := testJob("job-a")
	b := testJob("job-b")
	require.NoError(t, store.CreateJob(a))
	require.NoError(t, store.CreateJob(b))

	base := time.Now().Add(-time.Hour)
	_, err := runs.StartRun(a.ID, base, "tact-run")
	require.NoError(t, err)
	_, err = runs.StartRun(b.ID, base.Add(time.Minute), "tact-run")
	require.NoError(t, err)
	_, err = runs.StartRun(a.ID, base.Add(2*time.Minute), "force")
	require.NoError(t, err)

	all, err := runs.ListRuns("", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first
	assert.Equal(t, "force", all[0].TriggeredBy)

	onlyA, err := runs.ListRuns(a.ID, 10)
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)

	limited, err := runs.ListRuns("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestListRunsByJobName(t *testing.T) {
	db := qtesting.CreateTestDB(t)
	store := NewStore(db)
	runs := NewRunStore(db)

	scan := testJob("nightly-scan")
	review := testJob("weekly-review")
	require.NoError(t, store.CreateJob(scan))
	require.NoError(t, store.CreateJob(review))

	_, err := runs.StartRun(scan.ID, time.Now(), "tact-run")
	require.NoError(t, err)
	_, err = runs.StartRun(review.ID, time.Now(), "tact-run")
	require.NoError(t, err)

	matched, err := runs.ListRunsByJobName("SCAN", 10)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "nightly-scan", matched[0].JobName)
}

func TestListStalledRuns(t *testing.T) {
	db := qtesting.CreateTestDB(t)
	store := NewStore(db)
	runs := NewRunStore(db)

	job := testJob("crashy")
	require.NoError(t, store.CreateJob(job))

	now := time.Now()
	oldID, err := runs.StartRun(job.ID, now.Add(-2*time.Hour), "tact-run")
	require.NoError(t, err)
	_, err = runs.StartRun(job.ID, now.Add(-time.Minute), "tact-run")
	require.NoError(t, err)

	stalled, err := runs.ListStalledRuns(now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, stalled, 1)
	assert.Equal(t, oldID, stalled[0].ID)
}

func TestRunHistoryCascadeDelete(t *testing.T) {
	db := qtesting.CreateTestDB(t)
	store := NewStore(db)
	runs := NewRunStore(db)

	job := testJob("doomed")
	require.NoError(t, store.CreateJob(job))
	runID, err := runs.StartRun(job.ID, time.Now(), "tact-run")
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM scheduled_jobs WHERE job_id = ?`, job.ID)
	require.NoError(t, err)

	_, err = runs.GetRun(runID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrRunNotFound))
}
