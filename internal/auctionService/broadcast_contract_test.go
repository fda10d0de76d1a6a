package auction

import (
	"context"
	"testing"
	"time"

	"auction-engine/internal/auctionerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/registry"
	"auction-engine/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

// A rejected bid must leave the broadcaster untouched. The mock carries
// no expectations, so any publish fails the test.
func TestPlaceBid_RejectionEmitsNoBroadcast(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	now := time.Now().UTC()

	store := repository.NewMemoryStore()
	svc := NewAuctionService(store, registry.New(store))

	lot, err := svc.Registry().Create(ctx, model.Lot{
		Title:           "lot",
		StartingPrice:   100,
		MinStep:         10,
		DurationMinutes: 60,
		CreatorID:       1,
	})
	require.NoError(t, err)
	lot, err = svc.Registry().Activate(ctx, lot.ID, now)
	require.NoError(t, err)

	_, err = store.UpsertUser(ctx, model.User{ID: 1, Username: "user", Balance: 1000})
	require.NoError(t, err)

	svc.SetBroadcaster(NewMockBroadcaster(ctrl))

	_, err = svc.PlaceBid(ctx, lot.ID, 1, 105, now)
	require.ErrorIs(t, err, auctionerrors.ErrBidTooLow)

	_, err = svc.PlaceBid(ctx, lot.ID+1, 1, 110, now)
	require.ErrorIs(t, err, auctionerrors.ErrLotUnavailable)
}
