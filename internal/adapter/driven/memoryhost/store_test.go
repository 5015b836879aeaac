package memoryhost_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstanley/certhost/internal/adapter/driven/memoryhost"
	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

func TestAdd_RoundTrip(t *testing.T) {
	store := memoryhost.New()
	ctx := context.Background()

	rec := model.HostRecord{ID: "alice", IssueDate: "March 1st, 2026", Issuer: "The Foundation"}
	require.NoError(t, store.Add(ctx, rec))

	got, err := store.GetByID(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)
}

func TestAdd_Idempotent(t *testing.T) {
	store := memoryhost.New()
	ctx := context.Background()

	first := model.HostRecord{ID: "bob", IssueDate: "March 1st, 2026", Issuer: "The Foundation"}
	require.NoError(t, store.Add(ctx, first))

	// A second add for the same id must be a silent no-op that preserves
	// the original record.
	second := model.HostRecord{ID: "bob", IssueDate: "April 9th, 2026", Issuer: "Someone Else"}
	require.NoError(t, store.Add(ctx, second))

	got, err := store.GetByID(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first, *got)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestIsStored_AddSequence(t *testing.T) {
	store := memoryhost.New()
	ctx := context.Background()

	stored, err := store.IsStored(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, store.IsStoredFast("bob"))

	require.NoError(t, store.Add(ctx, model.HostRecord{ID: "bob", IssueDate: "May 2nd, 2026", Issuer: "X"}))

	stored, err = store.IsStored(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, stored)
	assert.True(t, store.IsStoredFast("bob"))
}

func TestUpdate_MissingRecordIsNotFound(t *testing.T) {
	store := memoryhost.New()

	err := store.Update(context.Background(), model.HostRecord{ID: "ghost"})

	assert.ErrorIs(t, err, driven.ErrNotFound)
}

func TestUpdate_ReplacesExistingRecord(t *testing.T) {
	store := memoryhost.New()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, model.HostRecord{ID: "carol", IssueDate: "June 1st, 2026", Issuer: "Old"}))

	updated := model.HostRecord{ID: "carol", IssueDate: "June 1st, 2026", Issuer: "New"}
	require.NoError(t, store.Update(ctx, updated))

	got, err := store.GetByID(ctx, "carol")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, updated, *got)
}

func TestRemove_UnknownIDIsNoOp(t *testing.T) {
	store := memoryhost.New()

	assert.NoError(t, store.Remove(context.Background(), "nobody"))
}

func TestRemove_DeletesRecord(t *testing.T) {
	store := memoryhost.New()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, model.HostRecord{ID: "dave"}))
	require.NoError(t, store.Remove(ctx, "dave"))

	got, err := store.GetByID(ctx, "dave")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetAll_ReturnsACopy(t *testing.T) {
	store := memoryhost.New()
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, model.HostRecord{ID: "erin"}))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	delete(all, "erin")

	stored, err := store.IsStored(ctx, "erin")
	require.NoError(t, err)
	assert.True(t, stored, "mutating the returned map must not affect the store")
}
