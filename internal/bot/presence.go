package bot

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"bedbot/internal/common"
	"bedbot/internal/metrics"
	"bedbot/internal/store"

	"github.com/rs/zerolog/log"
)

// Marker prepended to the display name of an away user
const AfkMarker = "[AFK]"

// Reaction added to the message that enabled AFK mode
const afkReaction = "✅"

type PresenceConfig struct {
	// Minimum time between repeated AFK notices for the same subject
	// in the same channel
	NoticeCooldown time.Duration
	// How long an exit lock is held; duplicate exit events inside
	// this window are ignored
	ExitLockHold time.Duration
	// How long the exit confirmation stays up before it is retracted
	TransientTTL time.Duration
}

// Presence is the AFK state machine. A user is either present (no record
// in the ledger) or away (record exists); entering is an explicit command,
// any other message of the same user exits, and messages referencing an
// away user are answered with a notice
type Presence struct {
	afk     *store.AfkStore
	gateway Gateway
	clock   common.Clock
	cfg     PresenceConfig

	mutex     sync.Mutex
	cooldowns map[string]time.Time // (guild, channel, subject) -> last notice
	exitLocks map[string]time.Time // user -> lock acquisition
}

func NewPresence(afk *store.AfkStore, gateway Gateway, clock common.Clock, cfg PresenceConfig) *Presence {
	return &Presence{
		afk:       afk,
		gateway:   gateway,
		clock:     clock,
		cfg:       cfg,
		cooldowns: map[string]time.Time{},
		exitLocks: map[string]time.Time{},
	}
}

// Enter moves a user to away. A whitespace-only note counts as no note.
// Entering while already away is a no-op beyond informing the user
func (p *Presence) Enter(guildid string, channelid string, messageid string, userid string, note string) {

	note = strings.TrimSpace(note)

	if p.afk.IsAfk(guildid, userid) {
		log.Debug().Msg(fmt.Sprintf("User %s is already AFK in guild %s", userid, guildid))
		p.gateway.SendText(channelid, AlreadyAfkMessage())
		return
	}

	// Capture the current override before touching the nickname.
	// nil means there was no override to restore later
	var oldNick *string
	nick, displayName, err := p.gateway.Nickname(guildid, userid)
	if err != nil {
		log.Warn().Err(err).Msg(fmt.Sprintf("Could not read nickname of user %s", userid))
		displayName = ""
	} else if nick != "" {
		oldNick = &nick
	}

	// Apply the away marker, but never twice; the stored name can already
	// carry it if a previous exit failed to restore the nickname
	if displayName != "" && !strings.HasPrefix(displayName, AfkMarker) {
		if err := p.gateway.SetNickname(guildid, userid, AfkMarker+" "+displayName); err != nil {
			log.Warn().Err(err).Msg(fmt.Sprintf("Could not mark nickname of user %s", userid))
		}
	}

	p.afk.SetAfk(guildid, userid, store.AfkRecord{Since: p.clock.Now(), Note: note, OldNick: oldNick})
	log.Debug().Msg(fmt.Sprintf("User %s is now AFK in guild %s", userid, guildid))

	p.gateway.React(channelid, messageid, afkReaction)
	// The confirmation stays up; only the exit confirmation is transient
	p.gateway.SendEmbed(channelid, AfkEnabledEmbed(note))
}

// HandleMessage processes a regular (non AFK-command) message: it exits
// AFK for the author if needed and notifies about away subjects. Subjects
// are the mentioned users plus the author of the replied-to message
func (p *Presence) HandleMessage(guildid string, channelid string, authorid string, mentionids []string, repliedid string) {

	p.maybeExit(guildid, channelid, authorid)

	subjects := make([]string, 0, len(mentionids)+1)
	seen := map[string]struct{}{authorid: {}}
	for _, subject := range append(append([]string{}, mentionids...), repliedid) {
		if subject == "" {
			continue
		}
		if _, ok := seen[subject]; ok {
			continue
		}
		seen[subject] = struct{}{}
		subjects = append(subjects, subject)
	}

	for _, subject := range subjects {
		// A subject that just exited in this same message is no longer
		// away here, so it naturally produces no notice
		record, ok := p.afk.GetAfk(guildid, subject)
		if !ok {
			continue
		}
		if !p.cooldownElapsed(guildid, channelid, subject) {
			log.Debug().Msg(fmt.Sprintf("Skipping AFK notice for user %s, cooldown active", subject))
			continue
		}
		elapsed := p.clock.Now().Sub(record.Since)
		p.gateway.SendEmbed(channelid, AfkNoticeEmbed(subject, elapsed, record.Note))
		metrics.AfkNoticesTotal.Inc()
		// At most one notice per incoming message
		break
	}
}

// maybeExit clears the away state of the author. Guarded by the exit
// lock: two near-simultaneous messages must not both process the exit
func (p *Presence) maybeExit(guildid string, channelid string, userid string) {

	if !p.afk.IsAfk(guildid, userid) {
		return
	}
	if !p.acquireExitLock(userid) {
		log.Debug().Msg(fmt.Sprintf("Exit already in progress for user %s", userid))
		return
	}

	// Delete the record before any side effect, so a concurrent message
	// observes the user as present from here on
	record, ok := p.afk.RemoveAfk(guildid, userid)
	if !ok {
		return
	}
	log.Debug().Msg(fmt.Sprintf("User %s is back in guild %s", userid, guildid))

	// Restore the display name; no saved override means clearing it
	restored := ""
	if record.OldNick != nil {
		restored = *record.OldNick
	}
	if err := p.gateway.SetNickname(guildid, userid, restored); err != nil {
		log.Warn().Err(err).Msg(fmt.Sprintf("Could not restore nickname of user %s", userid))
	}

	p.gateway.SendTransientEmbed(channelid, AfkDisabledEmbed(), p.cfg.TransientTTL)
}

// acquireExitLock takes the per-user exit lock if no unexpired lock is
// held. Locks expire by timestamp rather than by a scheduled callback
func (p *Presence) acquireExitLock(userid string) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	now := p.clock.Now()
	if acquired, ok := p.exitLocks[userid]; ok && now.Sub(acquired) < p.cfg.ExitLockHold {
		return false
	}
	p.exitLocks[userid] = now
	return true
}

// cooldownElapsed reports whether a notice may be shown for the subject
// in this channel, and records the notice time when it may
func (p *Presence) cooldownElapsed(guildid string, channelid string, subject string) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	now := p.clock.Now()
	key := guildid + "/" + channelid + "/" + subject
	if last, ok := p.cooldowns[key]; ok && now.Sub(last) < p.cfg.NoticeCooldown {
		return false
	}
	// Drop expired entries so the map does not grow with every
	// channel a subject was ever mentioned in
	for k, last := range p.cooldowns {
		if now.Sub(last) >= p.cfg.NoticeCooldown {
			delete(p.cooldowns, k)
		}
	}
	p.cooldowns[key] = now
	return true
}
