package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		message string
		command int
		parseid int
		words   []string
	}{
		{"no prefix", "hello there", 0, PARSEID_NO_BOT_PREFIX, nil},
		{"prefix only", ".", 0, PARSEID_NO_COMMAND, nil},
		{"prefix and spaces", ".   ", 0, PARSEID_NO_COMMAND, nil},
		{"unknown command", ".frobnicate", 0, PARSEID_COMMAND_NOT_RECOGNISED, nil},
		{"afk without note", ".afk", COMMAND_AFK, PARSEID_OK, []string{}},
		{"afk with note", ".afk back in 5", COMMAND_AFK, PARSEID_OK, []string{"back", "in", "5"}},
		{"mixed case command", ".AfK", COMMAND_AFK, PARSEID_OK, []string{}},
		{"setaboutme needs input", ".setaboutme", COMMAND_SET_ABOUT_ME, PARSEID_NO_INPUT, nil},
		{"setaboutme with input", ".setaboutme I like chess", COMMAND_SET_ABOUT_ME, PARSEID_OK, []string{"I", "like", "chess"}},
		{"addwin needs input", ".addwin", COMMAND_ADD_WIN, PARSEID_NO_INPUT, nil},
		{"addwin with args", ".addwin <@123> blitz", COMMAND_ADD_WIN, PARSEID_OK, []string{"<@123>", "blitz"}},
		{"leaderboard", ".leaderboard", COMMAND_LEADERBOARD, PARSEID_OK, []string{}},
		{"help", ".help", COMMAND_HELP, PARSEID_OK, []string{}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Parse(test.message, ".")
			assert.Equal(t, test.parseid, result.parseid)
			if test.parseid == PARSEID_OK {
				assert.Equal(t, test.command, result.command)
				assert.Equal(t, test.words, result.words)
			}
		})
	}
}

func TestParseCustomPrefix(t *testing.T) {
	result := Parse("!afk", "!")
	assert.Equal(t, PARSEID_OK, result.parseid)
	assert.Equal(t, COMMAND_AFK, result.command)

	result = Parse(".afk", "!")
	assert.Equal(t, PARSEID_NO_BOT_PREFIX, result.parseid)
}

func TestParseErrorMessagesNameTheCommand(t *testing.T) {
	result := Parse(".frobnicate", ".")
	assert.Contains(t, result.errorMessage, "frobnicate")

	result = Parse(".linklichess", ".")
	assert.Contains(t, result.errorMessage, "linklichess")
}

func TestNote(t *testing.T) {
	result := Parse(".afk  eating   dinner ", ".")
	assert.Equal(t, "eating dinner", result.Note())

	result = Parse(".afk", ".")
	assert.Equal(t, "", result.Note())
}

func TestWordsWithoutMentions(t *testing.T) {
	result := Parse(".addwin <@123> blitz", ".")
	assert.Equal(t, []string{"blitz"}, result.WordsWithoutMentions())

	result = Parse(".addwin <@!456> rapid arena", ".")
	assert.Equal(t, []string{"rapid", "arena"}, result.WordsWithoutMentions())
}
