package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository"
	"github.com/Tsitronov/frutti-backend/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityService_Lifecycle(t *testing.T) {
	svc := NewEntityService[models.Frutto]("frutti", repotest.NewMemoryEntityStore[models.Frutto]())
	ctx := context.Background()

	created, err := svc.Create(ctx, models.Frutto{Nome: strPtr("Mela"), Descrizione: strPtr("rossa"), Categoria: strPtr("cibo")})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mela", *list[0].Nome)

	updated, err := svc.Update(ctx, created.ID, models.Frutto{Descrizione: strPtr("verde")})
	require.NoError(t, err)
	assert.Equal(t, "Mela", *updated.Nome)
	assert.Equal(t, "verde", *updated.Descrizione)

	require.NoError(t, svc.Delete(ctx, created.ID))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEntityService_NotFound(t *testing.T) {
	svc := NewEntityService[models.Appunto]("appunti", repotest.NewMemoryEntityStore[models.Appunto]())
	ctx := context.Background()

	_, err := svc.Update(ctx, 0, models.Appunto{})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Update(ctx, 42, models.Appunto{Titolo: strPtr("x")})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, -1), repository.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 42), repository.ErrNotFound)
}

func TestEntityService_WrapsStoreErrors(t *testing.T) {
	store := repotest.NewMemoryEntityStore[models.Utente]()
	store.Err = errors.New("db down")
	svc := NewEntityService[models.Utente]("utenti", store)

	_, err := svc.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "error listing utenti: db down", err.Error())
}
