package store

import (
	"errors"
	"fmt"
)

const MaxBioLength = 256

var ErrBioTooLong = fmt.Errorf("the bio cannot be longer than %d characters", MaxBioLength)

type Provider string

const (
	ProviderLichess  Provider = "lichess"
	ProviderChesscom Provider = "chesscom"
)

var ErrUnknownProvider = errors.New("unknown rating provider")

// Ratings per time control; nil means unknown
type Ratings struct {
	Bullet  *int `json:"bullet"`
	Blitz   *int `json:"blitz"`
	Rapid   *int `json:"rapid"`
	Classic *int `json:"classic"`
}

// ExternalAccount links a profile to a chess-site account,
// together with the last ratings fetched for it
type ExternalAccount struct {
	Username string `json:"username"`
	Ratings
}

// Profile of one member. Wins maps tournament category to a count;
// counts are always positive, a category at zero is removed entirely
type Profile struct {
	AboutMe  string           `json:"aboutMe"`
	Lichess  *ExternalAccount `json:"lichess"`
	Chesscom *ExternalAccount `json:"chesscom"`
	Wins     map[string]int   `json:"wins"`
}

// TotalWins is the sum of the win counts over all categories
func (p Profile) TotalWins() int {
	total := 0
	for _, count := range p.Wins {
		total += count
	}
	return total
}

func (p Profile) account(provider Provider) *ExternalAccount {
	switch provider {
	case ProviderLichess:
		return p.Lichess
	case ProviderChesscom:
		return p.Chesscom
	default:
		return nil
	}
}

// ProfileStore is the profile ledger, keyed by user id
type ProfileStore struct {
	store *Store[Profile]
}

func NewProfileStore(path string, filename string, remote BlobStore) *ProfileStore {
	return &ProfileStore{store: NewStore[Profile](path, filename, remote)}
}

// GetProfile returns the profile of a user, creating and persisting a
// default one the first time the user is seen
func (ps *ProfileStore) GetProfile(userid string) Profile {
	if profile, ok := ps.store.Get(userid); ok {
		return profile
	}
	profile := Profile{Wins: map[string]int{}}
	ps.store.Set(userid, profile)
	return profile
}

// All returns a snapshot of every profile, keyed by user id
func (ps *ProfileStore) All() map[string]Profile {
	return ps.store.Load()
}

// SetBio updates the free-text bio of a user. The profile is left
// untouched when the text exceeds the maximum length
func (ps *ProfileStore) SetBio(userid string, text string) error {
	if len([]rune(text)) > MaxBioLength {
		return ErrBioTooLong
	}
	profile := ps.GetProfile(userid)
	profile.AboutMe = text
	ps.store.Set(userid, profile)
	return nil
}

func (ps *ProfileStore) ClearBio(userid string) {
	profile := ps.GetProfile(userid)
	profile.AboutMe = ""
	ps.store.Set(userid, profile)
}

func (ps *ProfileStore) SetAccount(userid string, provider Provider, account ExternalAccount) error {
	profile := ps.GetProfile(userid)
	switch provider {
	case ProviderLichess:
		profile.Lichess = &account
	case ProviderChesscom:
		profile.Chesscom = &account
	default:
		return ErrUnknownProvider
	}
	ps.store.Set(userid, profile)
	return nil
}

func (ps *ProfileStore) ClearAccount(userid string, provider Provider) error {
	profile := ps.GetProfile(userid)
	switch provider {
	case ProviderLichess:
		profile.Lichess = nil
	case ProviderChesscom:
		profile.Chesscom = nil
	default:
		return ErrUnknownProvider
	}
	ps.store.Set(userid, profile)
	return nil
}

// GetAccount returns the linked account for a provider, if any
func (ps *ProfileStore) GetAccount(userid string, provider Provider) (ExternalAccount, bool) {
	profile := ps.GetProfile(userid)
	account := profile.account(provider)
	if account == nil {
		return ExternalAccount{}, false
	}
	return *account, true
}

// AddWin increments the win count of a user in a category
// and returns the new count
func (ps *ProfileStore) AddWin(userid string, category string) int {
	profile := ps.GetProfile(userid)
	profile.Wins = copyWins(profile.Wins)
	profile.Wins[category]++
	count := profile.Wins[category]
	ps.store.Set(userid, profile)
	return count
}

// RemoveWin decrements the win count of a user in a category, removing the
// category entirely when it reaches zero. Removing from an absent category
// is a no-op, reported by the returned bool
func (ps *ProfileStore) RemoveWin(userid string, category string) bool {
	profile := ps.GetProfile(userid)
	if profile.Wins[category] == 0 {
		return false
	}
	profile.Wins = copyWins(profile.Wins)
	profile.Wins[category]--
	if profile.Wins[category] <= 0 {
		delete(profile.Wins, category)
	}
	ps.store.Set(userid, profile)
	return true
}

// The cached wins map is shared with profiles handed out to readers,
// so mutations work on a copy and swap it in wholesale
func copyWins(wins map[string]int) map[string]int {
	result := make(map[string]int, len(wins))
	for category, count := range wins {
		result[category] = count
	}
	return result
}

// Flush waits for pending saves. Used at shutdown
func (ps *ProfileStore) Flush() {
	ps.store.Flush()
}
