// Package repo contains the composite repositories: each one coordinates the
// local store and the remote API behind a single read/write contract, with an
// explicit fallback strategy per entity kind.
package repo

// Strategy names which side of a repository is authoritative and how writes
// degrade when the server cannot be reached.
type Strategy string

const (
	// StrategyRemotePreferred reads remote first with write-through to the
	// local cache, falling back to the cache on failure. Writes attempt the
	// server first and degrade to a local-only copy; nothing is queued, the
	// next user action is the retry. Used for profile and food catalog data,
	// where staleness is tolerable.
	StrategyRemotePreferred Strategy = "remote-preferred"

	// StrategyLocalPreferred trusts the local row once present, synthesizes
	// missing aggregates from defaults while offline, and defers failed
	// remote writes to the offline queue for replay. Used for the daily
	// diary, its food entries and activity sessions.
	StrategyLocalPreferred Strategy = "local-preferred"
)

// Reachability is the connectivity snapshot repositories consult before
// attempting a remote call.
type Reachability interface {
	IsReachable() bool
}

// alwaysReachable is used when no monitor is wired (tests, one-shot CLI runs
// that want the request failure itself to drive fallback).
type alwaysReachable struct{}

func (alwaysReachable) IsReachable() bool { return true }

// AlwaysReachable returns a Reachability that never reports offline.
func AlwaysReachable() Reachability { return alwaysReachable{} }
