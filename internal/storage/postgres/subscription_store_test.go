package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
)

func TestListActiveReturnsOrderedSubscriptions(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSubscriptionStore(mock, zap.NewNop())
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"user_id", "category", "platform", "target_address", "is_active"}).
		AddRow(int64(7), "design", "telegram", "12345", true).
		AddRow(int64(3), "design", "discord", "https://discord.com/api/webhooks/x", true)

	mock.ExpectQuery("SELECT s.user_id, s.category, s.platform").
		WithArgs("design").
		WillReturnRows(rows)

	subs, err := store.ListActive(context.Background(), "design")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, int64(7), subs[0].UserID)
	require.Equal(t, jobs.PlatformTelegram, subs[0].Platform)
	require.Equal(t, jobs.PlatformDiscord, subs[1].Platform)
	require.True(t, subs[0].IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveSkipsUnknownPlatformRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSubscriptionStore(mock, zap.NewNop())
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"user_id", "category", "platform", "target_address", "is_active"}).
		AddRow(int64(1), "design", "fax", "555-0100", true).
		AddRow(int64(2), "design", "telegram", "67890", true)

	mock.ExpectQuery("SELECT s.user_id, s.category, s.platform").
		WithArgs("design").
		WillReturnRows(rows)

	subs, err := store.ListActive(context.Background(), "design")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, int64(2), subs[0].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListActivePropagatesQueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSubscriptionStore(mock, zap.NewNop())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT s.user_id, s.category, s.platform").
		WithArgs("design").
		WillReturnError(errors.New("connection refused"))

	_, err = store.ListActive(context.Background(), "design")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
