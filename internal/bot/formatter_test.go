package bot

import (
	"testing"
	"time"

	"bedbot/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestFormatAwayDuration(t *testing.T) {
	tests := []struct {
		elapsed  time.Duration
		expected string
	}{
		{30 * time.Second, "0 mins"},
		{time.Minute, "1 min"},
		{5 * time.Minute, "5 mins"},
		{59 * time.Minute, "59 mins"},
		{time.Hour, "1 hour 0 mins"},
		{time.Hour + time.Minute, "1 hour 1 min"},
		{2*time.Hour + 30*time.Minute, "2 hours 30 mins"},
		{25 * time.Hour, "25 hours 0 mins"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, FormatAwayDuration(test.elapsed))
	}
}

func TestFormatRating(t *testing.T) {
	assert.Equal(t, "-", FormatRating(nil))
	rating := 1850
	assert.Equal(t, "1850", FormatRating(&rating))
}

func TestAfkEnabledEmbedNote(t *testing.T) {
	embed := AfkEnabledEmbed("")
	assert.NotContains(t, embed.Description, "Note")

	embed = AfkEnabledEmbed("brb coffee")
	assert.Contains(t, embed.Description, "brb coffee")
}

func TestAfkNoticeEmbed(t *testing.T) {
	embed := AfkNoticeEmbed("123", 90*time.Minute, "")
	assert.Contains(t, embed.Description, "<@123>")
	assert.Contains(t, embed.Description, "1 hour 30 mins")
	assert.NotContains(t, embed.Description, "Note")

	embed = AfkNoticeEmbed("123", time.Minute, "lunch")
	assert.Contains(t, embed.Description, "lunch")
}

func TestAccountFieldValue(t *testing.T) {
	assert.Equal(t, "-", accountFieldValue(nil))
	assert.Equal(t, "-", accountFieldValue(&store.ExternalAccount{}))

	blitz := 2100
	value := accountFieldValue(&store.ExternalAccount{
		Username: "magnus",
		Ratings:  store.Ratings{Blitz: &blitz},
	})
	assert.Contains(t, value, "magnus")
	assert.Contains(t, value, "Blitz: 2100")
	assert.Contains(t, value, "Bullet: -")
}

func TestWinsFieldValue(t *testing.T) {
	assert.Equal(t, "-", winsFieldValue(nil))
	assert.Equal(t, "-", winsFieldValue(map[string]int{}))

	value := winsFieldValue(map[string]int{"blitz": 3})
	assert.Equal(t, "• blitz: 3", value)
}
