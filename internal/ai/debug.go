package ai

import "sync/atomic"

// debugLoggingEnabled gates per-tick debug logs. The AI loop runs every frame,
// so the level check inside slog is skipped entirely when this is off.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging toggles AI debug logging.
// Called once from main after the log level is parsed.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled reports whether AI debug logging is on.
// Guard expensive debug calls with it:
//
//	if ai.IsDebugEnabled() {
//	    slog.Debug("decision", "skill", d.SkillID)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
