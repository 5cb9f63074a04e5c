package models

// Action is the structured next step the decision service chose.
type Action string

const (
	ActionNone         Action = "none"
	ActionAskForDay    Action = "ask_for_day"
	ActionAskForTime   Action = "ask_for_time"
	ActionBookCallback Action = "book_callback"
	// ActionInvalid marks a payload that did not parse as any known action.
	ActionInvalid Action = ""
)

// Window is the coarse time-of-day preference a customer expressed.
type Window string

const (
	WindowMorning   Window = "morning"
	WindowAfternoon Window = "afternoon"
	WindowEvening   Window = "evening"
	WindowNone      Window = ""
)

// FallbackHour maps a window to its default start hour, used only when no
// live slot list is available for the requested date.
func (w Window) FallbackHour() int {
	switch w {
	case WindowMorning:
		return 10
	case WindowEvening:
		return 18
	default:
		return 14
	}
}

// Contains reports whether a local hour falls inside the window.
// Morning is before 12, evening from 17, afternoon the band between.
func (w Window) Contains(hour int) bool {
	switch w {
	case WindowMorning:
		return hour < 12
	case WindowEvening:
		return hour >= 17
	case WindowAfternoon:
		return hour >= 12 && hour < 17
	default:
		return false
	}
}

// Decision is the normalized output of the decision service for one event.
// It lives only for the request that produced it; the reply is logged as a
// turn and the rest drives at most one booking attempt.
type Decision struct {
	Reply         string `json:"reply"`
	Action        Action `json:"action"`
	PreferredDate string `json:"preferred_date_iso"`     // "YYYY-MM-DD", empty when unresolved
	Window        Window `json:"preferred_time_of_day"`  // empty when the customer gave none
}

// SafeDefault is the decision substituted when the raw model output cannot
// be parsed: say nothing, do nothing, keep the conversation alive.
func SafeDefault() Decision {
	return Decision{Action: ActionNone}
}
