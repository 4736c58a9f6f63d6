package bot

import (
	"fmt"
	"strings"
	"time"

	"bedbot/internal/store"

	"github.com/bwmarrin/discordgo"
)

// Embed colors used by the different message families
const (
	colorAfkOn       int = 0xffa500
	colorAfkOff      int = 0x00ff00
	colorAfkNotice   int = 0xff0000
	colorProfile     int = 0x0099ff
	colorLeaderboard int = 0xffd700
	colorCongrats    int = 0x00ff00
	colorWelcome     int = 0x00ff00
)

func InputNotValid(errorMessage string) []Response {
	return []Response{ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}}
}

func NoPermission() []Response {
	return []Response{ResponseString{"You do not have the necessary permissions to use this command."}}
}

func GenericError() []Response {
	return []Response{ResponseString{"Something went wrong, the logs are being checked."}}
}

func AlreadyAfkMessage() string {
	return "You're already AFK."
}

func AfkEnabledEmbed(note string) *discordgo.MessageEmbed {
	description := "You're now AFK."
	if note != "" {
		description += fmt.Sprintf("\n📝 **Note:** %s", note)
	}
	return &discordgo.MessageEmbed{
		Title:       "AFK Mode is On",
		Description: description,
		Color:       colorAfkOn,
	}
}

func AfkDisabledEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "AFK mode is off.",
		Description: "Welcome back 👋",
		Color:       colorAfkOff,
	}
}

func AfkNoticeEmbed(userid string, elapsed time.Duration, note string) *discordgo.MessageEmbed {
	description := fmt.Sprintf("<@%s> is AFK right now.\n⏱️ **Duration:** %s", userid, FormatAwayDuration(elapsed))
	if note != "" {
		description += fmt.Sprintf("\n📝 **Note:** %s", note)
	}
	return &discordgo.MessageEmbed{
		Title:       "User is AFK",
		Description: description,
		Color:       colorAfkNotice,
	}
}

// FormatAwayDuration renders an elapsed away time: minutes only under
// an hour, hours and remaining minutes from there on
func FormatAwayDuration(elapsed time.Duration) string {
	mins := int(elapsed.Minutes())
	if mins < 60 {
		return pluralise(mins, "min")
	}
	return fmt.Sprintf("%s %s", pluralise(mins/60, "hour"), pluralise(mins%60, "min"))
}

func pluralise(count int, unit string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", count, unit)
}

// FormatRating renders a rating, "-" when unknown
func FormatRating(rating *int) string {
	if rating == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *rating)
}

func accountFieldValue(account *store.ExternalAccount) string {
	if account == nil || account.Username == "" {
		return "-"
	}
	return fmt.Sprintf("User: **%s**\nBullet: %s\nBlitz: %s\nRapid: %s\nClassical: %s",
		account.Username,
		FormatRating(account.Bullet),
		FormatRating(account.Blitz),
		FormatRating(account.Rapid),
		FormatRating(account.Classic))
}

func winsFieldValue(wins map[string]int) string {
	if len(wins) == 0 {
		return "-"
	}
	lines := make([]string, 0, len(wins))
	for category, count := range wins {
		lines = append(lines, fmt.Sprintf("• %s: %d", category, count))
	}
	return strings.Join(lines, "\n")
}

func ProfileEmbed(user *discordgo.User, member *discordgo.Member, profile store.Profile) []Response {

	embed := discordgo.MessageEmbed{
		Title: user.Username,
		Color: colorProfile,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: user.AvatarURL(""),
		},
	}
	if strings.TrimSpace(profile.AboutMe) != "" {
		embed.Description = fmt.Sprintf("***%s***", profile.AboutMe)
	}

	joined := "Unknown"
	if member != nil && !member.JoinedAt.IsZero() {
		joined = fmt.Sprintf("<t:%d:D>", member.JoinedAt.Unix())
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "📅 Join Date", Value: joined, Inline: false},
		&discordgo.MessageEmbedField{Name: "Lichess", Value: accountFieldValue(profile.Lichess), Inline: true},
		&discordgo.MessageEmbedField{Name: "Chess.com", Value: accountFieldValue(profile.Chesscom), Inline: true},
		&discordgo.MessageEmbedField{Name: "🏆 TOTAL TOURNAMENT WINS", Value: fmt.Sprintf("**%d**", profile.TotalWins()), Inline: false},
		&discordgo.MessageEmbedField{Name: "🏆 Tournament Achievements", Value: winsFieldValue(profile.Wins), Inline: false},
	)
	return []Response{ResponseEmbed{embed}}
}

func WelcomeEmbed(avatarURL string) discordgo.MessageEmbed {
	return discordgo.MessageEmbed{
		Title: "Hey! 👋",
		Color: colorWelcome,
		Thumbnail: &discordgo.MessageEmbedThumbnail{
			URL: avatarURL,
		},
		Description: "**Welcome to our server! Here you'll find tournaments, conversations, and plenty of chess.**\n\n" +
			"**Our Lichess Team:**\nhttps://lichess.org/team/bedbot\n" +
			"**Our ChessCom Team:**\nhttps://www.chess.com/club/bedbot\n\n" +
			"**If you wish, you can customize your profile by adding your lichess and chesscom accounts in our 'verify' channel.**",
	}
}

func CongratsEmbed(user *discordgo.User, category string, roleid string) *discordgo.MessageEmbed {
	role := "No role configured"
	if roleid != "" {
		role = fmt.Sprintf("<@&%s>", roleid)
	}
	return &discordgo.MessageEmbed{
		Title:       "🎉 Congratulations!",
		Description: fmt.Sprintf("Player **%s** won the tournament in category **%s**!", user.Username, category),
		Color:       colorCongrats,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Given Role", Value: role, Inline: true},
			{Name: "User", Value: user.Username, Inline: true},
		},
	}
}

func HelpMessage(prefix string) []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: colorProfile}
	usage := []struct {
		name  string
		value string
	}{
		{"afk [note]", "Mark yourself away; your next message brings you back"},
		{"setaboutme <text>", "Set the 'About Me' section of your profile"},
		{"removeaboutme", "Clear the 'About Me' section of your profile"},
		{"profile [@user]", "Show a profile with chess-site ratings and tournament wins"},
		{"linklichess [@user] <username>", "Link a lichess account (admin)"},
		{"unlinklichess [@user]", "Unlink the lichess account (admin)"},
		{"linkchesscom [@user] <username>", "Link a chess.com account (admin)"},
		{"unlinkchesscom [@user]", "Unlink the chess.com account (admin)"},
		{"addwin @user <category>", "Record a tournament win (admin)"},
		{"removewin @user <category>", "Remove a tournament win (admin)"},
		{"leaderboard", "Receive the tournament leaderboard as a DM"},
		{"help", "Print the usage of the different commands"},
	}
	for _, entry := range usage {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("`%s%s`", prefix, entry.name),
			Value:  entry.value,
			Inline: false,
		})
	}
	return []Response{ResponseEmbed{embed}}
}
