package chessapi

import (
	"fmt"
	"net/url"

	"bedbot/internal/common"

	"github.com/rs/zerolog/log"
)

// Routes of the public APIs of the two chess sites
const LICHESS_USER_ROUTE = "https://lichess.org/api/user/%s"
const CHESSCOM_STATS_ROUTE = "https://api.chess.com/pub/player/%s/stats"

// Client looks up chess-site ratings for a username. Lookups are best
// effort: a user that cannot be resolved is an error the caller is free
// to ignore, never something to retry
type Client struct {
	lichess  common.Proxy
	chesscom common.Proxy
}

func NewClient(restrictions []common.Restriction) Client {
	header := map[string]string{"Accept": "application/json"}
	return Client{
		lichess:  common.NewProxy(header, restrictions),
		chesscom: common.NewProxy(header, restrictions),
	}
}

// LichessRatings fetches the current ratings of a lichess user
func (client *Client) LichessRatings(username string) (Ratings, error) {

	// Request
	requestUrl := fmt.Sprintf(LICHESS_USER_ROUTE, url.PathEscape(username))
	data := client.lichess.Request(requestUrl, false)
	if data == nil {
		return Ratings{}, fmt.Errorf("got no response from lichess for user %s", username)
	}

	// Decode
	ratings, err := DecodeLichessRatings(data)
	if err != nil {
		return Ratings{}, err
	}
	log.Debug().Msg(fmt.Sprintf("Found lichess ratings for user %s", username))
	return ratings, nil
}

// ChesscomRatings fetches the current ratings of a chess.com user
func (client *Client) ChesscomRatings(username string) (Ratings, error) {

	// Request
	requestUrl := fmt.Sprintf(CHESSCOM_STATS_ROUTE, url.PathEscape(username))
	data := client.chesscom.Request(requestUrl, false)
	if data == nil {
		return Ratings{}, fmt.Errorf("got no response from chess.com for user %s", username)
	}

	// Decode
	ratings, err := DecodeChesscomRatings(data)
	if err != nil {
		return Ratings{}, err
	}
	log.Debug().Msg(fmt.Sprintf("Found chess.com ratings for user %s", username))
	return ratings, nil
}
