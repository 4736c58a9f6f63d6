package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the bot reads from the environment.
// A .env file is loaded by main before this is processed.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`

	DiscordToken string `envconfig:"DISCORD_BOT_TOKEN" required:"true"`
	Prefix       string `envconfig:"COMMAND_PREFIX" default:"."`

	// Fixed channels and roles used by the win announcements and the leaderboard
	AnnounceChannelID    string `envconfig:"ANNOUNCE_CHANNEL_ID"`
	LeaderboardChannelID string `envconfig:"LEADERBOARD_CHANNEL_ID"`
	LeaderboardMessageID string `envconfig:"LEADERBOARD_MESSAGE_ID"`
	WinnerRoleID         string `envconfig:"WINNER_ROLE_ID"`

	// Remote JSON store. An empty token degrades persistence to local files only.
	Github struct {
		Token  string `envconfig:"GITHUB_TOKEN"`
		Owner  string `envconfig:"GITHUB_OWNER"`
		Repo   string `envconfig:"GITHUB_REPO"`
		Branch string `envconfig:"GITHUB_BRANCH" default:"main"`
	} `envconfig:""`

	DataDir string `envconfig:"DATA_DIR" default:"."`

	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// AFK timings
	NoticeCooldown time.Duration `envconfig:"AFK_NOTICE_COOLDOWN" default:"60s"`
	ExitLockHold   time.Duration `envconfig:"AFK_EXIT_LOCK_HOLD" default:"5s"`
	TransientTTL   time.Duration `envconfig:"AFK_TRANSIENT_TTL" default:"3s"`

	// How often the posted leaderboard is refreshed even without a win event
	LeaderboardRefresh time.Duration `envconfig:"LEADERBOARD_REFRESH" default:"1h"`
}

// Load processes the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
