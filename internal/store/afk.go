package store

import (
	"time"
)

// AfkRecord exists for a user exactly while they are away
type AfkRecord struct {
	Since time.Time `json:"since"`
	Note  string    `json:"note,omitempty"`
	// Nickname override to restore on exit; nil means the user had no
	// override and the nickname is cleared on restore
	OldNick *string `json:"oldNick"`
}

// AfkStore is the AFK ledger, keyed per guild and user
type AfkStore struct {
	store *Store[AfkRecord]
}

func NewAfkStore(path string, filename string, remote BlobStore) *AfkStore {
	return &AfkStore{store: NewStore[AfkRecord](path, filename, remote)}
}

// AFK state is scoped per guild: the same user can be away in one server
// and present in another
func afkKey(guildid string, userid string) string {
	return guildid + "/" + userid
}

func (afk *AfkStore) IsAfk(guildid string, userid string) bool {
	return afk.store.Has(afkKey(guildid, userid))
}

func (afk *AfkStore) GetAfk(guildid string, userid string) (AfkRecord, bool) {
	return afk.store.Get(afkKey(guildid, userid))
}

func (afk *AfkStore) SetAfk(guildid string, userid string, record AfkRecord) {
	afk.store.Set(afkKey(guildid, userid), record)
}

func (afk *AfkStore) RemoveAfk(guildid string, userid string) (AfkRecord, bool) {
	return afk.store.Delete(afkKey(guildid, userid))
}

// Flush waits for pending saves. Used at shutdown
func (afk *AfkStore) Flush() {
	afk.store.Flush()
}
