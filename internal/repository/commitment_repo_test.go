package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/lifedebt_server/internal/model"
	"github.com/qs3c/lifedebt_server/internal/testutil"
)

func TestCommitmentRepository_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommitmentRepository(db)
	user := testutil.TestUser(t, db)

	start := time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)
	c := &model.Commitment{
		UserID:       user.ID,
		TaskType:     model.TaskKmDaily,
		TargetValue:  5,
		DurationDays: 10,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 10),
		StakeCents:   500,
	}
	require.NoError(t, repo.Create(c))
	assert.NotZero(t, c.ID)

	found, err := repo.GetByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCreated, found.Status) // 默认值
	assert.Equal(t, "sport", found.Category)
	assert.Equal(t, int64(500), found.StakeCents)
	assert.True(t, found.StartDate.Equal(start))
	assert.True(t, found.EndDate.Equal(start.AddDate(0, 0, 10)))
}

func TestCommitmentRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	_, err := NewCommitmentRepository(db).GetByID(12345)
	assert.Error(t, err)
}

func TestCommitmentRepository_GetByIDWithCheckIns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommitmentRepository(db)
	user := testutil.TestUser(t, db)
	c := testutil.TestCommitment(t, db, user.ID)

	testutil.TestCheckIn(t, db, c.ID, testutil.Day(2026, time.March, 3), true)
	testutil.TestCheckIn(t, db, c.ID, testutil.Day(2026, time.March, 1), true)
	testutil.TestCheckIn(t, db, c.ID, testutil.Day(2026, time.March, 2), false)

	found, err := repo.GetByIDWithCheckIns(c.ID)
	require.NoError(t, err)
	require.Len(t, found.CheckIns, 3)
	assert.Equal(t, 1, found.CheckIns[0].Date.UTC().Day())
	assert.Equal(t, 2, found.CheckIns[1].Date.UTC().Day())
	assert.False(t, found.CheckIns[1].Success)
	assert.Equal(t, 3, found.CheckIns[2].Date.UTC().Day())
}

func TestCommitmentRepository_ListByUserIDWithCheckIns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommitmentRepository(db)
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	older := testutil.TestCommitment(t, db, user.ID)
	newer := testutil.TestCommitment(t, db, user.ID)
	testutil.TestCommitment(t, db, other.ID)
	testutil.TestCheckIn(t, db, older.ID, testutil.Day(2026, time.March, 1), true)

	list, err := repo.ListByUserIDWithCheckIns(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Empty(t, list[0].CheckIns)
	assert.Len(t, list[1].CheckIns, 1)
}

func TestCommitmentRepository_OpenQueries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommitmentRepository(db)
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)

	created := testutil.TestCommitment(t, db, user.ID, testutil.WithStatus(model.StatusCreated))
	active := testutil.TestCommitment(t, db, user.ID, testutil.WithStatus(model.StatusActive))
	testutil.TestCommitment(t, db, user.ID, testutil.WithStatus(model.StatusFailed))
	testutil.TestCommitment(t, db, user.ID, testutil.WithStatus(model.StatusCompleted))
	otherOpen := testutil.TestCommitment(t, db, other.ID, testutil.WithStatus(model.StatusActive))

	open, err := repo.ListOpenByUserIDWithCheckIns(user.ID)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, created.ID, open[0].ID)
	assert.Equal(t, active.ID, open[1].ID)

	// 游标分批
	batch, err := repo.ListOpenWithCheckIns(0, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, created.ID, batch[0].ID)

	rest, err := repo.ListOpenWithCheckIns(batch[1].ID, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, otherOpen.ID, rest[0].ID)
}

func TestCommitmentRepository_UpdateStatusIf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommitmentRepository(db)
	user := testutil.TestUser(t, db)
	c := testutil.TestCommitment(t, db, user.ID, testutil.WithStatus(model.StatusActive))

	ok, err := repo.UpdateStatusIf(c.ID, model.StatusActive, model.StatusFailed)
	require.NoError(t, err)
	assert.True(t, ok)

	// 第二个写者看到的已不是 active
	ok, err = repo.UpdateStatusIf(c.ID, model.StatusActive, model.StatusFailed)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.GetByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, found.Status)
}

func TestCommitmentRepository_DeleteWithCheckIns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewCommitmentRepository(db)
	checkIns := NewCheckInRepository(db)
	user := testutil.TestUser(t, db)

	c := testutil.TestCommitment(t, db, user.ID)
	keep := testutil.TestCommitment(t, db, user.ID)
	testutil.TestCheckIn(t, db, c.ID, testutil.Day(2026, time.March, 1), true)
	testutil.TestCheckIn(t, db, c.ID, testutil.Day(2026, time.March, 2), true)
	testutil.TestCheckIn(t, db, keep.ID, testutil.Day(2026, time.March, 1), true)

	require.NoError(t, repo.DeleteWithCheckIns(c.ID))

	_, err := repo.GetByID(c.ID)
	assert.Error(t, err)

	gone, err := checkIns.ListByCommitmentID(c.ID)
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := checkIns.ListByCommitmentID(keep.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
