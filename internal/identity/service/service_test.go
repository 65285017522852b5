package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toursales/internal/identity/models"
	"toursales/internal/identity/store"
	"toursales/internal/platform/metrics"
	dErrors "toursales/pkg/domain-errors"
	"toursales/pkg/platform/sentinel"
)

func newRegistry() *Registry {
	return NewRegistry(store.NewInMemory(), metrics.NewWith(prometheus.NewRegistry()))
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	registry := newRegistry()
	ctx := context.Background()

	first, err := registry.FindOrCreate(ctx, "123", "Ana", "ana@example.com")
	require.NoError(t, err)

	second, err := registry.FindOrCreate(ctx, "123", "Someone Else", "other@example.com")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same cedula must resolve to the same buyer")
	assert.Equal(t, "Ana", second.Name, "existing record must not be overwritten")
	assert.Equal(t, "ana@example.com", second.Email)
}

func TestFindOrCreateDefaults(t *testing.T) {
	registry := newRegistry()

	user, err := registry.FindOrCreate(context.Background(), "456", "", "")
	require.NoError(t, err)

	assert.Equal(t, "456", user.Name, "name defaults to the cedula")
	assert.Equal(t, "", user.Email, "email defaults to empty")
}

func TestFindOrCreateRejectsBadCedula(t *testing.T) {
	registry := newRegistry()

	for _, cedula := range []string{"", "12a34", "12 34"} {
		_, err := registry.FindOrCreate(context.Background(), cedula, "Ana", "")
		require.Error(t, err, "cedula %q", cedula)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	}
}

func TestFindByCedula(t *testing.T) {
	registry := newRegistry()
	ctx := context.Background()

	_, err := registry.FindByCedula(ctx, "123")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	created, err := registry.FindOrCreate(ctx, "123", "Ana", "")
	require.NoError(t, err)

	found, err := registry.FindByCedula(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

// raceLoserStore simulates losing the unique-index race: the first create
// reports the cedula as taken even though the earlier lookup missed.
type raceLoserStore struct {
	*store.InMemory
	winner *models.User
}

func (s *raceLoserStore) FindByCedula(ctx context.Context, cedula string) (*models.User, error) {
	if s.winner != nil {
		return s.winner, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *raceLoserStore) CreateIfCedulaAvailable(ctx context.Context, user *models.User) error {
	s.winner = &models.User{ID: 42, Cedula: user.Cedula, Name: "Winner"}
	return sentinel.ErrAlreadyUsed
}

func TestFindOrCreateFallsBackToRaceWinner(t *testing.T) {
	registry := NewRegistry(&raceLoserStore{InMemory: store.NewInMemory()}, metrics.NewWith(prometheus.NewRegistry()))

	user, err := registry.FindOrCreate(context.Background(), "123", "Ana", "")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID, "loser of the create race must return the winner's row")
}
