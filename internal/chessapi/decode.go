package chessapi

import (
	"encoding/json"
)

// Lichess reports ratings under "perfs", one entry per time control
func DecodeLichessRatings(data []byte) (Ratings, error) {

	// unmarshal
	var raw struct {
		Perfs map[string]struct {
			Rating *int `json:"rating"`
		} `json:"perfs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Ratings{}, err
	}

	var ratings Ratings
	if perf, ok := raw.Perfs["bullet"]; ok {
		ratings.Bullet = perf.Rating
	}
	if perf, ok := raw.Perfs["blitz"]; ok {
		ratings.Blitz = perf.Rating
	}
	if perf, ok := raw.Perfs["rapid"]; ok {
		ratings.Rapid = perf.Rating
	}
	if perf, ok := raw.Perfs["classical"]; ok {
		ratings.Classic = perf.Rating
	}
	return ratings, nil
}

// Chess.com reports the latest rating per time control under
// chess_<control>.last.rating; daily chess stands in for classical
func DecodeChesscomRatings(data []byte) (Ratings, error) {

	// unmarshal
	type control struct {
		Last struct {
			Rating *int `json:"rating"`
		} `json:"last"`
	}
	var raw struct {
		Bullet *control `json:"chess_bullet"`
		Blitz  *control `json:"chess_blitz"`
		Rapid  *control `json:"chess_rapid"`
		Daily  *control `json:"chess_daily"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Ratings{}, err
	}

	var ratings Ratings
	if raw.Bullet != nil {
		ratings.Bullet = raw.Bullet.Last.Rating
	}
	if raw.Blitz != nil {
		ratings.Blitz = raw.Blitz.Last.Rating
	}
	if raw.Rapid != nil {
		ratings.Rapid = raw.Rapid.Last.Rating
	}
	if raw.Daily != nil {
		ratings.Classic = raw.Daily.Last.Rating
	}
	return ratings, nil
}
