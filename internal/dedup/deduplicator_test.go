package dedup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) ExistsByTitlePrefix(ctx context.Context, prefix string) (bool, error) {
	args := m.Called(ctx, prefix)
	return args.Bool(0), args.Error(1)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got := Normalize("  ENERGÍA   Solar  en\tArgentina ", 50)
	require.Equal(t, "energía solar en argentina", got)

	long := Normalize(strings.Repeat("Á", 80), 50)
	require.Equal(t, strings.Repeat("á", 50), long)
}

func TestExistsInBatch(t *testing.T) {
	t.Parallel()

	d := New(nil, 0, nil)
	dup, err := d.Exists(context.Background(), "Nuevo parque solar en San Juan")
	require.NoError(t, err)
	require.False(t, dup)

	d.Accept("Nuevo parque solar en San Juan")
	dup, err = d.Exists(context.Background(), "NUEVO  parque solar en san juan")
	require.NoError(t, err)
	require.True(t, dup)
	require.Equal(t, 1, d.Seen())
}

func TestExistsChecksStoreWithPrefix(t *testing.T) {
	t.Parallel()

	store := &mockChecker{}
	title := "Empresas argentinas reducen 40% costos energéticos con autoconsumo solar"
	store.On("ExistsByTitlePrefix", mock.Anything, Normalize(title, 50)).Return(true, nil).Once()

	d := New(store, 50, nil)
	dup, err := d.Exists(context.Background(), title)
	require.NoError(t, err)
	require.True(t, dup)
	store.AssertExpectations(t)
}

func TestExistsStoreErrorKeepsItem(t *testing.T) {
	t.Parallel()

	store := &mockChecker{}
	store.On("ExistsByTitlePrefix", mock.Anything, mock.Anything).Return(false, errors.New("db down"))

	d := New(store, 50, nil)
	dup, err := d.Exists(context.Background(), "Biomasa en Misiones")
	require.Error(t, err)
	require.False(t, dup)
}
