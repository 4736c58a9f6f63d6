package common

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Analysis struct {
	allowed bool          // If the request is allowed
	wait    time.Duration // The minimal time to wait before the request is allowed
}

type RateLimiter struct {
	restrictions         []Restriction          // Restrictions to consider
	history              []time.Time            // History of requests
	duration             time.Duration          // Min duration to wait for all restrictions to be lifted
	pendingVitalRequests map[uuid.UUID]struct{} // Set of pending vital requests
	stopwatch            Stopwatch
	mutex                sync.Mutex
}

func NewRateLimiter(restrictions []Restriction) *RateLimiter {
	rl := RateLimiter{}
	rl.restrictions = make([]Restriction, len(restrictions))
	copy(rl.restrictions, restrictions)
	rl.pendingVitalRequests = map[uuid.UUID]struct{}{}
	// Duration is the longest of all the restriction windows
	for _, restriction := range restrictions {
		if restriction.Duration > rl.duration {
			rl.duration = restriction.Duration
		}
	}
	rl.stopwatch = NewStopwatch(rl.duration)

	return &rl
}

// Decide if a request is allowed.
// If the request is not allowed but vital, execution
// will block here until it is allowed
func (rl *RateLimiter) Allowed(vital bool) bool {

	// Give this request a unique identifier
	thisuuid := uuid.New()
	for {
		rl.mutex.Lock()
		// Trim history first
		rl.trim()
		// Check if the restrictions allow this request
		analysis := rl.analyse()
		if analysis.allowed {
			if vital || len(rl.pendingVitalRequests) == 0 {
				log.Debug().Msg("Allowing request")
				delete(rl.pendingVitalRequests, thisuuid)
				// Include this request in the history as it is allowed
				rl.history = append(rl.history, time.Now())
				rl.mutex.Unlock()
				return true
			}
			// Request is not vital and the vital queue is not empty,
			// so we have to reject the request
			log.Warn().Msg("Rejecting non vital request because vital queue is not empty")
			rl.mutex.Unlock()
			return false
		}
		if !vital {
			log.Warn().Msg("Rejecting a non vital request because restrictions do not allow it")
			rl.mutex.Unlock()
			return false
		}
		// Request is vital and not allowed, so we add it to the queue
		// and sleep until the analysis says it could be allowed
		rl.pendingVitalRequests[thisuuid] = struct{}{}
		rl.mutex.Unlock()
		log.Warn().Msg(fmt.Sprint("Vital request ", thisuuid, " delayed ", analysis.wait.Seconds(), " seconds"))
		time.Sleep(analysis.wait)
	}
}

func (rl *RateLimiter) ReceivedRateLimit() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.stopwatch.Start()
}

// Trim the current history, leaving only the requests
// that are young enough to be affected by at least one restriction
func (rl *RateLimiter) trim() {
	currentTime := time.Now()
	// Find the index from which we need to keep the history.
	// Start searching at the end of the slice.
	// I assume times are stored in chronological order
	index := 0
	for i := len(rl.history) - 1; i >= 0; i-- {
		if currentTime.Sub(rl.history[i]) > rl.duration {
			index = i + 1
			break
		}
	}
	rl.history = rl.history[index:]
}

func (rl *RateLimiter) analyse() Analysis {

	// A rate limit reported by the server overrides the local bookkeeping
	// until its window has passed
	if stopped, elapsed := rl.stopwatch.Stopped(); !stopped {
		return Analysis{allowed: false, wait: -elapsed}
	}

	// Merge the analyses of each of the restrictions
	var wait time.Duration
	allowed := true
	for i := range rl.restrictions {
		analysis := rl.restrictions[i].Analyse(rl.history)
		allowed = allowed && analysis.allowed
		if analysis.wait > wait {
			wait = analysis.wait
		}
	}
	return Analysis{allowed, wait}
}
