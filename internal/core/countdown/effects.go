package countdown

// Phase represents the current clock mode.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhasePaused   Phase = "paused"
	PhaseFinished Phase = "finished"
)

// Effect is a side effect requested by a clock transition.
type Effect string

const (
	EffectChanged          Effect = "changed"
	EffectStartTicker      Effect = "start_ticker"
	EffectStopTicker       Effect = "stop_ticker"
	EffectStartAlarm       Effect = "start_alarm"
	EffectStopAlarm        Effect = "stop_alarm"
	EffectCueOneMinute     Effect = "cue_one_minute"
	EffectCueThirtySeconds Effect = "cue_thirty_seconds"
	EffectFinished         Effect = "finished"
)

// Style classes for the remaining time.
const (
	StyleWarning = "warning"
	StyleDanger  = "danger"
)

// Has reports whether effects contains effect.
func Has(effects []Effect, effect Effect) bool {
	for _, candidate := range effects {
		if candidate == effect {
			return true
		}
	}
	return false
}
