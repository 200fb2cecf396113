package repositories

import (
	"context"
	"testing"

	"github.com/causeconnect/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDonation_RaisesEventTotal(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresDonationRepository(db)
	events := NewPostgresEventRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	donor := createUser(t, db, "donor")
	event := createEvent(t, db, owner.ID)

	donation := &models.Donation{EventID: event.ID, DonorID: donor.ID, Amount: 25.00, Currency: "USD", PaymentRef: "mock_1"}
	require.NoError(t, repo.CreateDonation(ctx, donation))
	assert.Equal(t, models.DonationStatusSucceeded, donation.Status)

	require.NoError(t, repo.CreateDonation(ctx, &models.Donation{EventID: event.ID, DonorID: donor.ID, Amount: 0.10, Currency: "USD", PaymentRef: "mock_2"}))

	reloaded, err := events.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.InDelta(t, 25.10, reloaded.RaisedAmount, 1e-9)

	n, err := repo.CountByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCreateDonation_ClosedEventWritesNothing(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresDonationRepository(db)
	events := NewPostgresEventRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	donor := createUser(t, db, "donor")
	event := &models.Event{OwnerID: owner.ID, Title: "Done", GoalAmount: 10, Status: models.EventStatusClosed}
	require.NoError(t, events.CreateEvent(ctx, event))

	err := repo.CreateDonation(ctx, &models.Donation{EventID: event.ID, DonorID: donor.ID, Amount: 5, Currency: "USD", PaymentRef: "mock_x"})
	assert.ErrorIs(t, err, ErrConflict)

	n, err := repo.CountByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	reloaded, err := events.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.RaisedAmount)
}

func TestGetDonations_PagedNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresDonationRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	donor := createUser(t, db, "donor")
	event := createEvent(t, db, owner.ID)

	for i, ref := range []string{"mock_a", "mock_b", "mock_c"} {
		require.NoError(t, repo.CreateDonation(ctx, &models.Donation{
			EventID: event.ID, DonorID: donor.ID, Amount: float64(i + 1), Currency: "USD", PaymentRef: ref,
		}))
	}

	page, total, err := repo.GetDonationsByEventID(ctx, event.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "mock_c", page[0].PaymentRef)

	mine, total, err := repo.GetDonationsByDonorID(ctx, donor.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, mine, 1)
	assert.Equal(t, "mock_a", mine[0].PaymentRef)
}
