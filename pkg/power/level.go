package power

// Level represents the discrete severity band derived from the battery
// percentage. Levels are ordered: a higher value means a worse battery.
type Level int

const (
	// LevelOK indicates the battery does not need the user's attention.
	LevelOK Level = iota
	// LevelLow indicates the battery is at or below 10%.
	LevelLow
	// LevelVeryLow indicates the battery is at or below 5%.
	LevelVeryLow
	// LevelCritical indicates the battery is at or below 2%.
	LevelCritical
)

const (
	percentCritical = 2.0
	percentVeryLow  = 5.0
	percentLow      = 10.0
)

// ClassifyLevel maps a battery percentage to its severity band. Boundary
// values belong to the worse band, so 10.0 is still LevelLow.
func ClassifyLevel(percentage float64) Level {
	switch {
	case percentage <= percentCritical:
		return LevelCritical
	case percentage <= percentVeryLow:
		return LevelVeryLow
	case percentage <= percentLow:
		return LevelLow
	default:
		return LevelOK
	}
}

// String returns the token used on the bus and in the status API.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelVeryLow:
		return "very-low"
	case LevelCritical:
		return "critical"
	default:
		return "ok"
	}
}
