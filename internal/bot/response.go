package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type ResponseString struct {
	string
}
type ResponseEmbed struct {
	discordgo.MessageEmbed
}

// ResponseTransientEmbed is an embed that retracts itself
// after the given time to live
type ResponseTransientEmbed struct {
	Embed discordgo.MessageEmbed
	TTL   time.Duration
}

type ResponseDM struct {
	UserId string
	Embed  discordgo.MessageEmbed
	// Sent to the channel when the DM could not be delivered
	Fallback string
}

type Response interface {
	Send(channelid string, discord *discordgo.Session)
}

func (response ResponseString) Send(channelid string, discord *discordgo.Session) {
	if _, err := discord.ChannelMessageSend(channelid, response.string); err != nil {
		log.Error().Err(err).Msg("Could not send message")
	}
}

func (response ResponseEmbed) Send(channelid string, discord *discordgo.Session) {
	if _, err := discord.ChannelMessageSendEmbed(channelid, &response.MessageEmbed); err != nil {
		log.Error().Err(err).Msg("Could not send embed")
	}
}

func (response ResponseTransientEmbed) Send(channelid string, discord *discordgo.Session) {
	message, err := discord.ChannelMessageSendEmbed(channelid, &response.Embed)
	if err != nil {
		log.Error().Err(err).Msg("Could not send transient embed")
		return
	}
	time.AfterFunc(response.TTL, func() {
		if err := discord.ChannelMessageDelete(channelid, message.ID); err != nil {
			log.Debug().Err(err).Msg("Could not retract transient embed")
		}
	})
}

func (response ResponseDM) Send(channelid string, discord *discordgo.Session) {
	dm, err := discord.UserChannelCreate(response.UserId)
	if err == nil {
		_, err = discord.ChannelMessageSendEmbed(dm.ID, &response.Embed)
	}
	if err != nil {
		log.Debug().Err(err).Msg("Could not deliver DM")
		if response.Fallback != "" {
			ResponseString{response.Fallback}.Send(channelid, discord)
		}
	}
}
