package repositories

import (
	"context"
	"testing"

	"github.com/causeconnect/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleSupport_ExclusiveWithPass(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEventRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	fan := createUser(t, db, "fan")
	event := createEvent(t, db, owner.ID)

	require.NoError(t, repo.PassEvent(ctx, fan.ID, event.ID))

	supported, err := repo.ToggleSupport(ctx, fan.ID, event.ID)
	require.NoError(t, err)
	assert.True(t, supported)
	passed, err := repo.HasPassed(ctx, fan.ID, event.ID)
	require.NoError(t, err)
	assert.False(t, passed, "supporting clears the pass")

	supported, err = repo.ToggleSupport(ctx, fan.ID, event.ID)
	require.NoError(t, err)
	assert.False(t, supported)
	passed, err = repo.HasPassed(ctx, fan.ID, event.ID)
	require.NoError(t, err)
	assert.True(t, passed, "withdrawing support records a pass")

	count, err := repo.CountSupporters(ctx, event.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPassEvent_WithdrawsSupport(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEventRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	fan := createUser(t, db, "fan")
	event := createEvent(t, db, owner.ID)

	_, err := repo.ToggleSupport(ctx, fan.ID, event.ID)
	require.NoError(t, err)
	require.NoError(t, repo.PassEvent(ctx, fan.ID, event.ID))
	require.NoError(t, repo.PassEvent(ctx, fan.ID, event.ID))

	supported, err := repo.IsSupported(ctx, fan.ID, event.ID)
	require.NoError(t, err)
	assert.False(t, supported)

	var passes int64
	require.NoError(t, db.Model(&models.Pass{}).Count(&passes).Error)
	assert.Equal(t, int64(1), passes)
}

func TestListEvents_Filters(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEventRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")

	require.NoError(t, repo.CreateEvent(ctx, &models.Event{OwnerID: owner.ID, Title: "Food Drive", Category: "food", GoalAmount: 10}))
	require.NoError(t, repo.CreateEvent(ctx, &models.Event{OwnerID: owner.ID, Title: "Tree planting", Category: "environment", GoalAmount: 10}))
	require.NoError(t, repo.CreateEvent(ctx, &models.Event{OwnerID: owner.ID, Title: "River cleanup", Category: "environment", GoalAmount: 10, Status: models.EventStatusClosed}))

	events, total, err := repo.ListEvents(ctx, models.EventFilter{Category: "environment"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, events, 2)

	events, _, err = repo.ListEvents(ctx, models.EventFilter{Query: "FOOD"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Food Drive", events[0].Title)
	assert.Equal(t, models.EventStatusActive, events[0].Status)

	_, total, err = repo.ListEvents(ctx, models.EventFilter{Status: models.EventStatusClosed}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSupportersCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEventRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	a := createUser(t, db, "ann")
	b := createUser(t, db, "bob")
	e1 := createEvent(t, db, owner.ID)
	e2 := createEvent(t, db, owner.ID)

	for _, u := range []uint{a.ID, b.ID} {
		_, err := repo.ToggleSupport(ctx, u, e1.ID)
		require.NoError(t, err)
	}

	counts, err := repo.SupportersCounts(ctx, []uint{e1.ID, e2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[e1.ID])
	assert.Zero(t, counts[e2.ID])

	supported, err := repo.SupportedEventIDs(ctx, a.ID, []uint{e1.ID, e2.ID})
	require.NoError(t, err)
	assert.True(t, supported[e1.ID])
	assert.False(t, supported[e2.ID])
}

func TestDeleteEvent_NotFound(t *testing.T) {
	db := newTestDB(t)
	err := NewPostgresEventRepository(db).DeleteEvent(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateEvent_KeepsRaisedAmount(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresEventRepository(db)
	donations := NewPostgresDonationRepository(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	donor := createUser(t, db, "donor")
	event := createEvent(t, db, owner.ID)

	// The owner's copy predates the donation
	stale, err := repo.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	require.NoError(t, donations.CreateDonation(ctx, &models.Donation{EventID: event.ID, DonorID: donor.ID, Amount: 25, Currency: "USD", PaymentRef: "mock_1"}))

	stale.Title = "Edited title"
	require.NoError(t, repo.UpdateEvent(ctx, stale))
	assert.InDelta(t, 25.0, stale.RaisedAmount, 1e-9, "update reloads the stored row")

	reloaded, err := repo.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited title", reloaded.Title)
	assert.InDelta(t, 25.0, reloaded.RaisedAmount, 1e-9)
	assert.Equal(t, owner.ID, reloaded.OwnerID)
}

func TestUpdateEvent_Missing(t *testing.T) {
	db := newTestDB(t)
	err := NewPostgresEventRepository(db).UpdateEvent(context.Background(), &models.Event{ID: 999, Title: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}
