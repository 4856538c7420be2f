package schedule

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tact/errors"
)

func TestListDueJobsQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM scheduled_jobs").
		WillReturnError(errors.New("disk I/O error"))

	store := NewStore(db)
	_, err = store.ListDueJobs(time.Now(), 24*time.Hour, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list due jobs")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimJobExecFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE scheduled_jobs").
		WillReturnError(errors.New("database is locked"))

	store := NewStore(db)
	err = store.ClaimJob("j1", time.Now(), time.Now().Add(time.Minute))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to claim job j1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimJobLostRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE scheduled_jobs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewStore(db)
	err = store.ClaimJob("j1", time.Now(), time.Now().Add(time.Minute))
	assert.True(t, errors.IsJobClaimed(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
