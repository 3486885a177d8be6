package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/agenda-api/internal/model"
)

func TestSession_HasRole(t *testing.T) {
	s := New(&model.Funcionario{ID: 1, Rut: "196450963"}, []model.RolNombre{model.RolAgenda})
	assert.True(t, s.HasRole(model.RolAgenda))
	assert.False(t, s.HasRole(model.RolCitas))

	var none *Session
	assert.False(t, none.HasRole(model.RolAgenda))
}

func TestCacheStore(t *testing.T) {
	store := NewCacheStore(time.Hour)
	ctx := context.Background()
	s := New(&model.Funcionario{ID: 4, Nombres: "Luis"}, model.AllRoles)

	require.NoError(t, store.Save(ctx, "tok", s, time.Hour))

	got, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)
	assert.Equal(t, model.AllRoles, got.Roles)

	require.NoError(t, store.Delete(ctx, "tok"))
	_, err = store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheStore_Expires(t *testing.T) {
	store := NewCacheStore(time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "tok", &Session{ID: 1}, 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)
	_, err := store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), &Session{ID: 9})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(9), s.ID)
}
