package chessapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLichessRatings(t *testing.T) {
	data := []byte(`{
		"id": "thibault",
		"perfs": {
			"bullet": {"games": 5320, "rating": 1950},
			"blitz": {"games": 9024, "rating": 1845},
			"classical": {"games": 103, "rating": 2010},
			"puzzle": {"games": 500, "rating": 2200}
		}
	}`)

	ratings, err := DecodeLichessRatings(data)
	require.NoError(t, err)

	require.NotNil(t, ratings.Bullet)
	assert.Equal(t, 1950, *ratings.Bullet)
	require.NotNil(t, ratings.Blitz)
	assert.Equal(t, 1845, *ratings.Blitz)
	assert.Nil(t, ratings.Rapid)
	require.NotNil(t, ratings.Classic)
	assert.Equal(t, 2010, *ratings.Classic)
	assert.True(t, ratings.Known())
}

func TestDecodeLichessRatingsWithoutPerfs(t *testing.T) {
	ratings, err := DecodeLichessRatings([]byte(`{"id": "ghost"}`))
	require.NoError(t, err)
	assert.False(t, ratings.Known())
}

func TestDecodeLichessRatingsMalformed(t *testing.T) {
	_, err := DecodeLichessRatings([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodeChesscomRatings(t *testing.T) {
	data := []byte(`{
		"chess_bullet": {"last": {"rating": 1700, "date": 1704067200}},
		"chess_rapid": {"last": {"rating": 1820, "date": 1704067200}},
		"chess_daily": {"last": {"rating": 1500, "date": 1704067200}},
		"tactics": {"highest": {"rating": 2500}}
	}`)

	ratings, err := DecodeChesscomRatings(data)
	require.NoError(t, err)

	require.NotNil(t, ratings.Bullet)
	assert.Equal(t, 1700, *ratings.Bullet)
	assert.Nil(t, ratings.Blitz)
	require.NotNil(t, ratings.Rapid)
	assert.Equal(t, 1820, *ratings.Rapid)
	// Daily chess stands in for classical
	require.NotNil(t, ratings.Classic)
	assert.Equal(t, 1500, *ratings.Classic)
}

func TestDecodeChesscomRatingsEmpty(t *testing.T) {
	ratings, err := DecodeChesscomRatings([]byte(`{}`))
	require.NoError(t, err)
	assert.False(t, ratings.Known())
}
