package bot

import (
	"path/filepath"
	"testing"

	"bedbot/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProfiles(t *testing.T) *store.ProfileStore {
	t.Helper()
	profiles := store.NewProfileStore("profiles.json", filepath.Join(t.TempDir(), "profiles.json"), nil)
	t.Cleanup(profiles.Flush)
	return profiles
}

func TestGenerateOrdersByTotalWins(t *testing.T) {
	profiles := newTestProfiles(t)
	profiles.AddWin("alice", "blitz")
	profiles.AddWin("alice", "blitz")
	profiles.AddWin("alice", "rapid")
	profiles.AddWin("bob", "blitz")
	profiles.AddWin("carol", "bullet")
	profiles.AddWin("carol", "rapid")

	leaderboard := NewLeaderboard(profiles, "", "")
	entries := leaderboard.Generate(10)

	require.Len(t, entries, 3)
	assert.Equal(t, "alice", entries[0].UserId)
	assert.Equal(t, 3, entries[0].Total)
	assert.Equal(t, "carol", entries[1].UserId)
	assert.Equal(t, "bob", entries[2].UserId)
}

func TestGenerateTruncatesToTopN(t *testing.T) {
	profiles := newTestProfiles(t)
	profiles.AddWin("alice", "blitz")
	profiles.AddWin("bob", "blitz")
	profiles.AddWin("carol", "blitz")

	leaderboard := NewLeaderboard(profiles, "", "")
	assert.Len(t, leaderboard.Generate(2), 2)
}

func TestGenerateIncludesWinlessProfiles(t *testing.T) {
	profiles := newTestProfiles(t)
	profiles.AddWin("alice", "blitz")
	require.NoError(t, profiles.SetBio("bob", "just here to chat"))

	leaderboard := NewLeaderboard(profiles, "", "")
	entries := leaderboard.Generate(10)

	// Members without wins still rank, below the winners
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].UserId)
	assert.Equal(t, 0, entries[1].Total)
}

func TestEmbedFillsEmptySlots(t *testing.T) {
	profiles := newTestProfiles(t)
	profiles.AddWin("alice", "blitz")

	leaderboard := NewLeaderboard(profiles, "", "")
	embed := leaderboard.Embed(func(userid string) string { return "Alice" })

	assert.Contains(t, embed.Description, "**1. Alice** (1 win)")
	assert.Contains(t, embed.Description, "• blitz: 1")
	assert.Contains(t, embed.Description, "**2.** -")
	assert.Contains(t, embed.Description, "**10.** -")
}

func TestEmbedUsesResolverOutput(t *testing.T) {
	profiles := newTestProfiles(t)
	profiles.AddWin("123", "blitz")

	leaderboard := NewLeaderboard(profiles, "", "")
	embed := leaderboard.Embed(func(userid string) string {
		return "Unknown (<@" + userid + ">)"
	})

	assert.Contains(t, embed.Description, "Unknown (<@123>)")
}
