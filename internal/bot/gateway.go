package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Gateway is the slice of the chat platform the presence engine needs.
// The state machine only calls these capabilities, so tests can run it
// against a fake without a session
type Gateway interface {
	SendText(channelid string, content string)
	SendEmbed(channelid string, embed *discordgo.MessageEmbed)
	// SendTransientEmbed posts an embed and retracts it after the ttl
	SendTransientEmbed(channelid string, embed *discordgo.MessageEmbed, ttl time.Duration)
	// Nickname returns the current nickname override (empty if none)
	// and the effective display name of a member
	Nickname(guildid string, userid string) (nick string, displayName string, err error)
	// SetNickname sets the nickname override; empty clears it
	SetNickname(guildid string, userid string, nick string) error
	React(channelid string, messageid string, emoji string)
}

// discordGateway implements Gateway on a discordgo session
type discordGateway struct {
	discord *discordgo.Session
}

func NewDiscordGateway(discord *discordgo.Session) Gateway {
	return discordGateway{discord}
}

func (gw discordGateway) SendText(channelid string, content string) {
	ResponseString{content}.Send(channelid, gw.discord)
}

func (gw discordGateway) SendEmbed(channelid string, embed *discordgo.MessageEmbed) {
	ResponseEmbed{*embed}.Send(channelid, gw.discord)
}

func (gw discordGateway) SendTransientEmbed(channelid string, embed *discordgo.MessageEmbed, ttl time.Duration) {
	ResponseTransientEmbed{Embed: *embed, TTL: ttl}.Send(channelid, gw.discord)
}

func (gw discordGateway) Nickname(guildid string, userid string) (string, string, error) {
	member, err := gw.member(guildid, userid)
	if err != nil {
		return "", "", err
	}
	displayName := member.Nick
	if displayName == "" && member.User != nil {
		displayName = member.User.GlobalName
		if displayName == "" {
			displayName = member.User.Username
		}
	}
	return member.Nick, displayName, nil
}

func (gw discordGateway) SetNickname(guildid string, userid string, nick string) error {
	return gw.discord.GuildMemberNickname(guildid, userid, nick)
}

func (gw discordGateway) React(channelid string, messageid string, emoji string) {
	if err := gw.discord.MessageReactionAdd(channelid, messageid, emoji); err != nil {
		log.Debug().Err(err).Msg("Could not add reaction")
	}
}

func (gw discordGateway) member(guildid string, userid string) (*discordgo.Member, error) {
	if member, err := gw.discord.State.Member(guildid, userid); err == nil {
		return member, nil
	}
	member, err := gw.discord.GuildMember(guildid, userid)
	if err != nil {
		return nil, fmt.Errorf("could not fetch member %s of guild %s: %w", userid, guildid, err)
	}
	return member, nil
}
