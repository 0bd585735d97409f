package gamedata

import "strings"

// Status is a persistent (non-volatile) status condition.
type Status string

const (
	StatusNone      Status = ""
	StatusSleep     Status = "slp"
	StatusFreeze    Status = "frz"
	StatusParalysis Status = "par"
	StatusPoison    Status = "psn"
	StatusToxic     Status = "tox"
	StatusBurn      Status = "brn"
)

var statusWeights = map[Status]float64{
	StatusSleep:     5,
	StatusFreeze:    5,
	StatusParalysis: 3,
	StatusToxic:     2,
	StatusPoison:    1,
}

// ParseStatus maps a log status token to a Status. Unknown tokens, the
// "nostatus" marker and the faint marker all map to StatusNone.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slp", "sleep":
		return StatusSleep
	case "frz", "freeze":
		return StatusFreeze
	case "par", "paralysis":
		return StatusParalysis
	case "psn", "poison":
		return StatusPoison
	case "tox", "toxic":
		return StatusToxic
	case "brn", "burn":
		return StatusBurn
	default:
		return StatusNone
	}
}

// Active reports whether s is an actual condition.
func (s Status) Active() bool { return s != StatusNone }

// Weight is the severity weight of the condition, 0 for none and burn.
func (s Status) Weight() float64 { return statusWeights[s] }
