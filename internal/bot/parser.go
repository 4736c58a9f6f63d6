package bot

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	COMMAND_AFK             = iota
	COMMAND_SET_ABOUT_ME    = iota
	COMMAND_REMOVE_ABOUT_ME = iota
	COMMAND_PROFILE         = iota
	COMMAND_LINK_LICHESS    = iota
	COMMAND_UNLINK_LICHESS  = iota
	COMMAND_LINK_CHESSCOM   = iota
	COMMAND_UNLINK_CHESSCOM = iota
	COMMAND_ADD_WIN         = iota
	COMMAND_REMOVE_WIN      = iota
	COMMAND_LEADERBOARD     = iota
	COMMAND_HELP            = iota
)

const (
	PARSEID_OK                     = iota
	PARSEID_NO_BOT_PREFIX          = iota
	PARSEID_NO_COMMAND             = iota
	PARSEID_COMMAND_NOT_RECOGNISED = iota
	PARSEID_NO_INPUT               = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_COMMAND:             "No command provided",
	PARSEID_COMMAND_NOT_RECOGNISED: "Command `%s` not recognised",
	PARSEID_NO_INPUT:               "Command `%s` requires an argument",
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	// words after the command; mentions inside them are resolved
	// by the dispatcher against the message mention list
	words []string
}

// Names of the commands, in the order of the command constants
var commandNames = map[string]int{
	"afk":            COMMAND_AFK,
	"setaboutme":     COMMAND_SET_ABOUT_ME,
	"removeaboutme":  COMMAND_REMOVE_ABOUT_ME,
	"profile":        COMMAND_PROFILE,
	"linklichess":    COMMAND_LINK_LICHESS,
	"unlinklichess":  COMMAND_UNLINK_LICHESS,
	"linkchesscom":   COMMAND_LINK_CHESSCOM,
	"unlinkchesscom": COMMAND_UNLINK_CHESSCOM,
	"addwin":         COMMAND_ADD_WIN,
	"removewin":      COMMAND_REMOVE_WIN,
	"leaderboard":    COMMAND_LEADERBOARD,
	"help":           COMMAND_HELP,
}

// Commands that make no sense without an argument
var requiresInput = map[int]bool{
	COMMAND_SET_ABOUT_ME:  true,
	COMMAND_LINK_LICHESS:  true,
	COMMAND_LINK_CHESSCOM: true,
	COMMAND_ADD_WIN:       true,
	COMMAND_REMOVE_WIN:    true,
}

func Parse(message string, prefix string) ParseResult {

	// The message has to start with the bot prefix
	if !strings.HasPrefix(message, prefix) {
		return ParseResult{parseid: PARSEID_NO_BOT_PREFIX}
	}

	// Get the command if valid
	words := strings.Fields(strings.TrimSpace(message[len(prefix):]))
	if len(words) == 0 {
		parseid := PARSEID_NO_COMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	commandString := strings.ToLower(words[0])
	words = words[1:]

	// Match the command
	command, ok := commandNames[commandString]
	if !ok {
		parseid := PARSEID_COMMAND_NOT_RECOGNISED
		return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}
	log.Debug().Msg(fmt.Sprintf("Command understood: %s", commandString))

	if requiresInput[command] && len(words) == 0 {
		parseid := PARSEID_NO_INPUT
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}

	return ParseResult{command: command, parseid: PARSEID_OK, words: words}
}

// Note returns the words joined back into free text,
// for commands taking a single text argument
func (result ParseResult) Note() string {
	return strings.TrimSpace(strings.Join(result.words, " "))
}

// WordsWithoutMentions filters out raw mention tokens, leaving
// the plain-text arguments of the command
func (result ParseResult) WordsWithoutMentions() []string {
	words := []string{}
	for _, word := range result.words {
		if strings.HasPrefix(word, "<@") && strings.HasSuffix(word, ">") {
			continue
		}
		words = append(words, word)
	}
	return words
}
