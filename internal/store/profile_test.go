package store

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileStore(t *testing.T) *ProfileStore {
	t.Helper()
	return NewProfileStore("profiles.json", filepath.Join(t.TempDir(), "profiles.json"), nil)
}

func TestGetProfileCreatesDefault(t *testing.T) {
	profiles := newProfileStore(t)
	defer profiles.Flush()

	profile := profiles.GetProfile("u1")
	assert.Equal(t, "", profile.AboutMe)
	assert.Nil(t, profile.Lichess)
	assert.Nil(t, profile.Chesscom)
	assert.Empty(t, profile.Wins)

	// A second call returns the same record, it does not recreate it
	profiles.SetBio("u1", "hello")
	assert.Equal(t, "hello", profiles.GetProfile("u1").AboutMe)
}

func TestSetBioRejectsOverlongText(t *testing.T) {
	profiles := newProfileStore(t)
	defer profiles.Flush()

	err := profiles.SetBio("u1", strings.Repeat("x", 300))
	require.ErrorIs(t, err, ErrBioTooLong)
	// The profile is left untouched
	assert.Equal(t, "", profiles.GetProfile("u1").AboutMe)

	require.NoError(t, profiles.SetBio("u1", strings.Repeat("x", MaxBioLength)))
}

func TestWinAccounting(t *testing.T) {
	profiles := newProfileStore(t)
	defer profiles.Flush()

	profiles.AddWin("u1", "blitz")
	profiles.AddWin("u1", "blitz")
	profiles.AddWin("u1", "blitz")
	assert.True(t, profiles.RemoveWin("u1", "blitz"))
	assert.True(t, profiles.RemoveWin("u1", "blitz"))

	profile := profiles.GetProfile("u1")
	assert.Equal(t, 1, profile.Wins["blitz"])
	assert.Equal(t, 1, profile.TotalWins())
}

func TestRemoveWinDeletesCategoryAtZero(t *testing.T) {
	profiles := newProfileStore(t)
	defer profiles.Flush()

	profiles.AddWin("u1", "Rapid")
	assert.True(t, profiles.RemoveWin("u1", "Rapid"))

	profile := profiles.GetProfile("u1")
	_, present := profile.Wins["Rapid"]
	assert.False(t, present)
}

func TestRemoveWinFromAbsentCategoryIsNoop(t *testing.T) {
	profiles := newProfileStore(t)
	defer profiles.Flush()

	assert.False(t, profiles.RemoveWin("u1", "bullet"))
	assert.Empty(t, profiles.GetProfile("u1").Wins)
}

func TestAccountLinking(t *testing.T) {
	profiles := newProfileStore(t)
	defer profiles.Flush()

	rating := 1850
	account := ExternalAccount{Username: "magnus", Ratings: Ratings{Blitz: &rating}}
	require.NoError(t, profiles.SetAccount("u1", ProviderLichess, account))

	linked, ok := profiles.GetAccount("u1", ProviderLichess)
	require.True(t, ok)
	assert.Equal(t, "magnus", linked.Username)
	require.NotNil(t, linked.Blitz)
	assert.Equal(t, 1850, *linked.Blitz)

	_, ok = profiles.GetAccount("u1", ProviderChesscom)
	assert.False(t, ok)

	require.NoError(t, profiles.ClearAccount("u1", ProviderLichess))
	_, ok = profiles.GetAccount("u1", ProviderLichess)
	assert.False(t, ok)

	assert.ErrorIs(t, profiles.SetAccount("u1", Provider("unknown"), account), ErrUnknownProvider)
}
