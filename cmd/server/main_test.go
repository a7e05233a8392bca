package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll/store"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestInstallDefaultComponents_SeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	restore, err := installDefaultComponents(ctx, m, "", discard())

	require.NoError(t, err)
	assert.Nil(t, restore)
	got, err := m.DefaultComponents(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 6)
}

func TestInstallDefaultComponents_KeepsExistingSet(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	simple, err := factory.NewComponentFactory().ParseJSON(factory.SimpleJSON())
	require.NoError(t, err)
	require.NoError(t, m.ReplaceDefaultComponents(ctx, simple))

	_, err = installDefaultComponents(ctx, m, "", discard())

	require.NoError(t, err)
	got, err := m.DefaultComponents(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestInstallDefaultComponents_FromFile(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	path := filepath.Join(t.TempDir(), "components.json")
	require.NoError(t, os.WriteFile(path, []byte(factory.SimpleJSON()), 0o600))

	restore, err := installDefaultComponents(ctx, m, path, discard())

	require.NoError(t, err)
	assert.Len(t, restore, 4)
	got, err := m.DefaultComponents(ctx)
	require.NoError(t, err)
	assert.Equal(t, restore, got)
}

func TestInstallDefaultComponents_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.txt")
	require.NoError(t, os.WriteFile(path, []byte("basic: 40"), 0o600))

	_, err := installDefaultComponents(context.Background(), store.NewMemory(), path, discard())

	assert.Error(t, err)
}
