package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/storage"
)

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFromDB(db), mock
}

func TestUpdateItineraryStatus_Conflict(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE itineraries SET status = ?, version = version + 1 WHERE id = ? AND version = ?")).
		WithArgs("Confirmed", "item-1", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM itineraries WHERE id = ?")).
		WithArgs("item-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	err := store.UpdateItineraryStatus(context.Background(), "item-1", models.StatusConfirmed, 3)
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItineraryVotes_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE itineraries SET version = version + 1 WHERE id = ? AND version = ?")).
		WithArgs("gone", int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM itineraries WHERE id = ?")).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	err := store.UpdateItineraryVotes(context.Background(), "gone", nil, 0)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItineraryVotes_RewritesVotes(t *testing.T) {
	store, mock := newMockStore(t)
	votes := []models.UserRef{{ID: "u1", Email: "a@example.com"}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE itineraries SET version = version + 1")).
		WithArgs("item-1", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM itinerary_votes WHERE item_id = ?")).
		WithArgs("item-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO itinerary_votes")).
		WithArgs("item-1", "u1", "a@example.com", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.UpdateItineraryVotes(context.Background(), "item-1", votes, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBill_RollsBackOnItemFailure(t *testing.T) {
	store, mock := newMockStore(t)
	bill := &models.Bill{
		ID: "b1", ProjectID: "p1", Date: "2024-05-01", Description: "Taxi", Price: 12,
		Items: []models.BillItem{{Name: "Ride", Count: 1}}, CreatedAt: 1,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bills")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bill_items")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.CreateBill(context.Background(), bill)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
