package bot

import (
	"fmt"
	"sort"
	"sync"

	"bedbot/internal/store"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// How many entries the posted leaderboard shows
const leaderboardSize = 10

type LeaderboardEntry struct {
	UserId string
	Total  int
	Wins   map[string]int
}

// Leaderboard derives a ranked top-N view from the profile ledger and
// keeps one posted message in sync with it
type Leaderboard struct {
	profiles  *store.ProfileStore
	channelid string

	mutex     sync.Mutex
	messageid string
}

// The message id may be empty; a fresh message is then posted on the
// first sync and remembered for the lifetime of the process
func NewLeaderboard(profiles *store.ProfileStore, channelid string, messageid string) *Leaderboard {
	return &Leaderboard{profiles: profiles, channelid: channelid, messageid: messageid}
}

// Generate computes the ranked top-N entries, ordered by total wins.
// The sort is stable, so equal totals keep their relative order
func (lb *Leaderboard) Generate(topN int) []LeaderboardEntry {

	entries := []LeaderboardEntry{}
	for userid, profile := range lb.profiles.All() {
		entries = append(entries, LeaderboardEntry{
			UserId: userid,
			Total:  profile.TotalWins(),
			Wins:   profile.Wins,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})
	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}

// Embed renders the leaderboard. Display names are resolved through the
// provided function, which falls back to a placeholder for members that
// can no longer be resolved
func (lb *Leaderboard) Embed(resolveName func(userid string) string) *discordgo.MessageEmbed {

	entries := lb.Generate(leaderboardSize)

	description := ""
	for i := 0; i < leaderboardSize; i++ {
		if i >= len(entries) {
			description += fmt.Sprintf("**%d.** -\n", i+1)
			continue
		}
		entry := entries[i]
		categories := winsFieldValue(entry.Wins)
		description += fmt.Sprintf("**%d. %s** (%s)\n%s\n\n", i+1, resolveName(entry.UserId), pluralise(entry.Total, "win"), categories)
	}

	return &discordgo.MessageEmbed{
		Title:       "🏆 Tournament Leaderboard",
		Description: description,
		Color:       colorLeaderboard,
	}
}

// Sync brings the posted message up to date: edit it if it still exists,
// post a new one otherwise and remember its id. The id itself is not
// durable; a restart starts over from the configured one
func (lb *Leaderboard) Sync(discord *discordgo.Session, resolveName func(userid string) string) {

	if lb.channelid == "" {
		return
	}
	embed := lb.Embed(resolveName)

	lb.mutex.Lock()
	defer lb.mutex.Unlock()
	if lb.messageid != "" {
		if _, err := discord.ChannelMessageEditEmbed(lb.channelid, lb.messageid, embed); err == nil {
			return
		}
		log.Warn().Msg(fmt.Sprintf("Could not edit leaderboard message %s, posting a new one", lb.messageid))
	}
	message, err := discord.ChannelMessageSendEmbed(lb.channelid, embed)
	if err != nil {
		log.Error().Err(err).Msg("Could not post leaderboard message")
		return
	}
	lb.messageid = message.ID
}
