// Package scheduler implements iter_join, the three-source interleave that
// drives each worker's request selection: crawler links take priority,
// corpus picks fill in once the crawler runs dry, and a periodic probe is
// injected every LOGGED_IN_CHECK_INTERVAL iterations regardless of the
// other two sources' state (§4.6).
package scheduler

import "github.com/fluxfuzzer/fluxfuzzer/internal/request"

// Source tags which of the three producers an iteration's item came from.
type Source int

const (
	SourcePrimary Source = iota
	SourceSecondary
	SourcePeriodic
)

// LoggedInCheckInterval is how many outer iterations elapse between probe
// injections.
const LoggedInCheckInterval = 50

// Primary is the crawler-backed source: bool is false at end-of-stream for
// this round (the crawler has no pending requests right now, not
// permanently exhausted — it may be refilled by harvested links).
type Primary interface {
	Next() (*request.Request, bool)
}

// Secondary is the corpus-backed source: bool is false only once the corpus
// is permanently out of candidates.
type Secondary interface {
	Next() (*request.Request, bool)
}

// Item is one tagged yield from the scheduler.
type Item struct {
	Source    Source
	Candidate *request.Request
}

// IterJoin interleaves primary, secondary and a periodic probe. It yields
// indefinitely while primary or secondary can still produce, terminating
// (closing the returned channel) once primary is exhausted for this round
// AND secondary has nothing left. The probe request is injected exactly
// every `interval` iterations, independent of primary/secondary state; pass
// a nil probe to disable periodic injection entirely.
//
// The channel-based shape mirrors a Python generator: callers range over
// the returned channel and stop consuming (abandoning the goroutine) by
// simply breaking, same as letting a generator go out of scope.
func IterJoin(primary Primary, secondary Secondary, probe *request.Request, interval int, done <-chan struct{}) <-chan Item {
	out := make(chan Item)

	go func() {
		defer close(out)

		iteration := 0
		for {
			iteration++

			if interval > 0 && probe != nil && iteration%interval == 0 {
				select {
				case out <- Item{Source: SourcePeriodic, Candidate: probe}:
				case <-done:
					return
				}
				continue
			}

			if next, ok := primary.Next(); ok {
				select {
				case out <- Item{Source: SourcePrimary, Candidate: next}:
				case <-done:
					return
				}
				continue
			}

			next, ok := secondary.Next()
			if !ok {
				return
			}
			select {
			case out <- Item{Source: SourceSecondary, Candidate: next}:
			case <-done:
				return
			}
		}
	}()

	return out
}
