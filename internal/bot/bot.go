package bot

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bedbot/internal/chessapi"
	"bedbot/internal/common"
	"bedbot/internal/config"
	"bedbot/internal/metrics"
	"bedbot/internal/store"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type Bot struct {
	cfg         config.Config
	afk         *store.AfkStore
	profiles    *store.ProfileStore
	chess       chessapi.Client
	presence    *Presence
	leaderboard *Leaderboard
	// Refreshes the posted leaderboard from time to time, so an edit
	// lost outside the bot does not leave it stale forever
	leaderboardRefresh common.TimedExecutor
}

func NewBot(cfg config.Config, afk *store.AfkStore, profiles *store.ProfileStore, chess chessapi.Client) *Bot {
	return &Bot{
		cfg:         cfg,
		afk:         afk,
		profiles:    profiles,
		chess:       chess,
		leaderboard: NewLeaderboard(profiles, cfg.LeaderboardChannelID, cfg.LeaderboardMessageID),
	}
}

func (bot *Bot) Run() error {
	// Create session
	discord, err := discordgo.New("Bot " + strings.TrimSpace(bot.cfg.DiscordToken))
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages

	// The presence engine performs its side effects through the gateway
	// abstraction, so it never sees the session directly
	bot.presence = NewPresence(bot.afk, NewDiscordGateway(discord), common.SystemClock(), PresenceConfig{
		NoticeCooldown: bot.cfg.NoticeCooldown,
		ExitLockHold:   bot.cfg.ExitLockHold,
		TransientTTL:   bot.cfg.TransientTTL,
	})

	// The refresh must not delay the message that triggers it
	bot.leaderboardRefresh = common.NewTimedExecutor(bot.cfg.LeaderboardRefresh, func() {
		go bot.syncLeaderboard(discord)
	})

	// Event handlers
	discord.AddHandler(bot.Ready)
	discord.AddHandler(bot.Receive)
	discord.AddHandler(bot.MemberAdd)

	// Open session
	if err := discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer discord.Close()

	// Keep the bot running until there is an os interruption
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	// Give pending saves a chance to finish
	bot.afk.Flush()
	bot.profiles.Flush()
	return nil
}

func (bot *Bot) Ready(discord *discordgo.Session, ready *discordgo.Ready) {
	log.Info().Msg(fmt.Sprintf("Bot active as %s", ready.User.Username))
	go bot.syncLeaderboard(discord)
}

func (bot *Bot) MemberAdd(discord *discordgo.Session, member *discordgo.GuildMemberAdd) {
	if member.User == nil || member.User.Bot {
		return
	}
	// Make sure a profile record exists from day one
	bot.profiles.GetProfile(member.User.ID)
	ResponseDM{UserId: member.User.ID, Embed: WelcomeEmbed(member.User.AvatarURL(""))}.Send("", discord)
}

func (bot *Bot) Receive(discord *discordgo.Session, message *discordgo.MessageCreate) {

	// A single bad event must never take the bot down
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msg(fmt.Sprintf("Recovered while handling a message: %v", r))
			bot.sendResponses(discord, message.ChannelID, GenericError())
		}
	}()

	// Reject my own messages and messages from other bots
	if message.Author == nil || message.Author.Bot || message.Author.ID == discord.State.User.ID {
		return
	}
	// Ignore private channels
	if message.GuildID == "" {
		return
	}

	parseResult := Parse(message.Content, bot.cfg.Prefix)

	// The AFK-entry command must not be treated as an exit trigger
	if parseResult.parseid == PARSEID_OK && parseResult.command == COMMAND_AFK {
		metrics.CommandsTotal.WithLabelValues("afk").Inc()
		bot.presence.Enter(message.GuildID, message.ChannelID, message.ID, message.Author.ID, parseResult.Note())
		return
	}

	// Any other message exits AFK for its author and may trigger
	// notices about away users it references
	bot.presence.HandleMessage(message.GuildID, message.ChannelID, message.Author.ID,
		bot.mentionIds(message), bot.repliedAuthorId(discord, message))

	// Piggyback the periodic leaderboard refresh on message traffic
	bot.leaderboardRefresh.Execute()

	switch parseResult.parseid {
	case PARSEID_NO_BOT_PREFIX:
		return
	case PARSEID_OK:
	default:
		// The command is invalid input, so it contains an error message
		log.Debug().Msg(fmt.Sprintf("Wrong input: '%s'. Reason: %s", message.Content, parseResult.errorMessage))
		bot.sendResponses(discord, message.ChannelID, InputNotValid(parseResult.errorMessage))
		return
	}

	metrics.CommandsTotal.WithLabelValues(commandName(parseResult.command)).Inc()

	var responses []Response
	switch parseResult.command {
	case COMMAND_SET_ABOUT_ME:
		responses = bot.setAboutMe(message.Author.ID, parseResult.Note())
	case COMMAND_REMOVE_ABOUT_ME:
		responses = bot.removeAboutMe(message.Author.ID)
	case COMMAND_PROFILE:
		responses = bot.profile(discord, message)
	case COMMAND_LINK_LICHESS:
		responses = bot.linkAccount(discord, message, parseResult, store.ProviderLichess)
	case COMMAND_UNLINK_LICHESS:
		responses = bot.unlinkAccount(discord, message, store.ProviderLichess)
	case COMMAND_LINK_CHESSCOM:
		responses = bot.linkAccount(discord, message, parseResult, store.ProviderChesscom)
	case COMMAND_UNLINK_CHESSCOM:
		responses = bot.unlinkAccount(discord, message, store.ProviderChesscom)
	case COMMAND_ADD_WIN:
		responses = bot.addWin(discord, message, parseResult)
	case COMMAND_REMOVE_WIN:
		responses = bot.removeWin(discord, message, parseResult)
	case COMMAND_LEADERBOARD:
		responses = bot.leaderboardDM(discord, message)
	case COMMAND_HELP:
		responses = HelpMessage(bot.cfg.Prefix)
	default:
		panic(fmt.Sprintf("Command %d is not one of the possible ones", parseResult.command))
	}
	bot.sendResponses(discord, message.ChannelID, responses)
}

func (bot *Bot) sendResponses(discord *discordgo.Session, channelid string, responses []Response) {
	for _, response := range responses {
		response.Send(channelid, discord)
	}
}

func (bot *Bot) mentionIds(message *discordgo.MessageCreate) []string {
	ids := []string{}
	for _, user := range message.Mentions {
		if !user.Bot {
			ids = append(ids, user.ID)
		}
	}
	return ids
}

// The author of the message being replied to, if any
func (bot *Bot) repliedAuthorId(discord *discordgo.Session, message *discordgo.MessageCreate) string {
	referenced := message.ReferencedMessage
	if referenced == nil && message.MessageReference != nil && message.MessageReference.MessageID != "" {
		var err error
		referenced, err = discord.ChannelMessage(message.MessageReference.ChannelID, message.MessageReference.MessageID)
		if err != nil {
			log.Debug().Err(err).Msg("Could not fetch the replied-to message")
			return ""
		}
	}
	if referenced == nil || referenced.Author == nil || referenced.Author.Bot {
		return ""
	}
	return referenced.Author.ID
}

func (bot *Bot) isAdmin(discord *discordgo.Session, message *discordgo.MessageCreate) bool {
	permissions, err := discord.UserChannelPermissions(message.Author.ID, message.ChannelID)
	if err != nil {
		log.Warn().Err(err).Msg(fmt.Sprintf("Could not compute permissions of user %s", message.Author.ID))
		return false
	}
	return permissions&discordgo.PermissionAdministrator != 0
}

func (bot *Bot) setAboutMe(userid string, text string) []Response {
	if text == "" {
		return []Response{ResponseString{"You should write something."}}
	}
	if err := bot.profiles.SetBio(userid, text); err != nil {
		return []Response{ResponseString{"The 'About Me' section cannot be longer than 256 characters."}}
	}
	return []Response{ResponseString{"The 'About Me' section has been updated!"}}
}

func (bot *Bot) removeAboutMe(userid string) []Response {
	bot.profiles.ClearBio(userid)
	return []Response{ResponseString{"The 'About Me' section has been removed."}}
}

func (bot *Bot) profile(discord *discordgo.Session, message *discordgo.MessageCreate) []Response {

	target := message.Author
	if len(message.Mentions) > 0 {
		target = message.Mentions[0]
	}

	// Refresh linked ratings before rendering; lookups are best effort
	// and a stale rating is better than no profile
	bot.refreshRatings(target.ID, store.ProviderLichess)
	bot.refreshRatings(target.ID, store.ProviderChesscom)

	profile := bot.profiles.GetProfile(target.ID)
	member, err := discord.State.Member(message.GuildID, target.ID)
	if err != nil {
		member, _ = discord.GuildMember(message.GuildID, target.ID)
	}
	return ProfileEmbed(target, member, profile)
}

func (bot *Bot) refreshRatings(userid string, provider store.Provider) {
	account, ok := bot.profiles.GetAccount(userid, provider)
	if !ok || account.Username == "" {
		return
	}
	ratings, err := bot.lookupRatings(provider, account.Username)
	if err != nil {
		metrics.RatingLookupErrors.WithLabelValues(string(provider)).Inc()
		log.Debug().Err(err).Msg(fmt.Sprintf("Could not refresh %s ratings of user %s", provider, userid))
		return
	}
	account.Ratings = toStoreRatings(ratings)
	bot.profiles.SetAccount(userid, provider, account)
}

func (bot *Bot) lookupRatings(provider store.Provider, username string) (chessapi.Ratings, error) {
	switch provider {
	case store.ProviderLichess:
		return bot.chess.LichessRatings(username)
	case store.ProviderChesscom:
		return bot.chess.ChesscomRatings(username)
	default:
		return chessapi.Ratings{}, store.ErrUnknownProvider
	}
}

func toStoreRatings(ratings chessapi.Ratings) store.Ratings {
	return store.Ratings{
		Bullet:  ratings.Bullet,
		Blitz:   ratings.Blitz,
		Rapid:   ratings.Rapid,
		Classic: ratings.Classic,
	}
}

func providerLabel(provider store.Provider) string {
	if provider == store.ProviderChesscom {
		return "Chess.com"
	}
	return "Lichess"
}

func (bot *Bot) linkAccount(discord *discordgo.Session, message *discordgo.MessageCreate, parseResult ParseResult, provider store.Provider) []Response {

	if !bot.isAdmin(discord, message) {
		return NoPermission()
	}
	target := message.Author
	if len(message.Mentions) > 0 {
		target = message.Mentions[0]
	}
	words := parseResult.WordsWithoutMentions()
	if len(words) == 0 {
		return []Response{ResponseString{fmt.Sprintf("You did not provide a %s username.", providerLabel(provider))}}
	}
	username := words[0]

	// Validate the account by looking its ratings up
	ratings, err := bot.lookupRatings(provider, username)
	if err != nil {
		metrics.RatingLookupErrors.WithLabelValues(string(provider)).Inc()
		return []Response{ResponseString{fmt.Sprintf("This %s account could not be found.", providerLabel(provider))}}
	}

	account := store.ExternalAccount{Username: username, Ratings: toStoreRatings(ratings)}
	if err := bot.profiles.SetAccount(target.ID, provider, account); err != nil {
		log.Error().Err(err).Msg("Could not link account")
		return GenericError()
	}
	return []Response{ResponseString{fmt.Sprintf("%s account linked: **%s**", providerLabel(provider), username)}}
}

func (bot *Bot) unlinkAccount(discord *discordgo.Session, message *discordgo.MessageCreate, provider store.Provider) []Response {

	if !bot.isAdmin(discord, message) {
		return NoPermission()
	}
	target := message.Author
	if len(message.Mentions) > 0 {
		target = message.Mentions[0]
	}
	if err := bot.profiles.ClearAccount(target.ID, provider); err != nil {
		log.Error().Err(err).Msg("Could not unlink account")
		return GenericError()
	}
	return []Response{ResponseString{fmt.Sprintf("%s link removed.", providerLabel(provider))}}
}

func (bot *Bot) addWin(discord *discordgo.Session, message *discordgo.MessageCreate, parseResult ParseResult) []Response {

	if !bot.isAdmin(discord, message) {
		return NoPermission()
	}
	if len(message.Mentions) == 0 {
		return []Response{ResponseString{"You need to mention a user."}}
	}
	target := message.Mentions[0]
	category := strings.Join(parseResult.WordsWithoutMentions(), " ")
	if category == "" {
		return []Response{ResponseString{"You need to provide a category."}}
	}

	bot.profiles.AddWin(target.ID, category)
	log.Debug().Msg(fmt.Sprintf("Added a win for user %s in category %s", target.ID, category))

	bot.rotateWinnerRole(discord, message.GuildID, target.ID)
	if bot.cfg.AnnounceChannelID != "" {
		ResponseEmbed{*CongratsEmbed(target, category, bot.cfg.WinnerRoleID)}.Send(bot.cfg.AnnounceChannelID, discord)
	}
	bot.syncLeaderboard(discord)

	return []Response{ResponseString{fmt.Sprintf("%s → 1 win added in category %s!", target.Username, category)}}
}

func (bot *Bot) removeWin(discord *discordgo.Session, message *discordgo.MessageCreate, parseResult ParseResult) []Response {

	if !bot.isAdmin(discord, message) {
		return NoPermission()
	}
	if len(message.Mentions) == 0 {
		return []Response{ResponseString{"You need to mention a user."}}
	}
	target := message.Mentions[0]
	category := strings.Join(parseResult.WordsWithoutMentions(), " ")
	if category == "" {
		return []Response{ResponseString{"You need to provide a category."}}
	}

	if !bot.profiles.RemoveWin(target.ID, category) {
		return []Response{ResponseString{"There are no wins in this category."}}
	}
	log.Debug().Msg(fmt.Sprintf("Removed a win of user %s in category %s", target.ID, category))

	bot.syncLeaderboard(discord)
	return []Response{ResponseString{fmt.Sprintf("%s → win removed from category %s", target.Username, category)}}
}

// The winner role is exclusive: it is taken from every current holder
// before it is granted to the new winner
func (bot *Bot) rotateWinnerRole(discord *discordgo.Session, guildid string, userid string) {
	roleid := bot.cfg.WinnerRoleID
	if roleid == "" {
		return
	}
	if guild, err := discord.State.Guild(guildid); err == nil {
		for _, member := range guild.Members {
			if member.User == nil || member.User.ID == userid {
				continue
			}
			for _, role := range member.Roles {
				if role == roleid {
					if err := discord.GuildMemberRoleRemove(guildid, member.User.ID, roleid); err != nil {
						log.Debug().Err(err).Msg(fmt.Sprintf("Could not remove winner role from user %s", member.User.ID))
					}
					break
				}
			}
		}
	}
	if err := discord.GuildMemberRoleAdd(guildid, userid, roleid); err != nil {
		log.Warn().Err(err).Msg(fmt.Sprintf("Could not grant winner role to user %s", userid))
	}
}

func (bot *Bot) leaderboardDM(discord *discordgo.Session, message *discordgo.MessageCreate) []Response {
	embed := bot.leaderboard.Embed(bot.nameResolver(discord, message.GuildID))
	return []Response{ResponseDM{UserId: message.Author.ID, Embed: *embed, Fallback: "Could not send you a DM."}}
}

func (bot *Bot) syncLeaderboard(discord *discordgo.Session) {
	if bot.cfg.LeaderboardChannelID == "" {
		return
	}
	channel, err := discord.Channel(bot.cfg.LeaderboardChannelID)
	if err != nil {
		log.Warn().Err(err).Msg("Could not fetch the leaderboard channel")
		return
	}
	bot.leaderboard.Sync(discord, bot.nameResolver(discord, channel.GuildID))
}

// nameResolver resolves user ids to display names through the member
// cache, fetching on a miss and falling back to a placeholder for
// members that can no longer be resolved
func (bot *Bot) nameResolver(discord *discordgo.Session, guildid string) func(userid string) string {
	return func(userid string) string {
		member, err := discord.State.Member(guildid, userid)
		if err != nil {
			member, err = discord.GuildMember(guildid, userid)
		}
		if err != nil || member.User == nil {
			return fmt.Sprintf("Unknown (<@%s>)", userid)
		}
		return fmt.Sprintf("%s (<@%s>)", member.User.Username, userid)
	}
}

// commandName gives the printable name of a command constant
func commandName(command int) string {
	for name, id := range commandNames {
		if id == command {
			return name
		}
	}
	return "unknown"
}
