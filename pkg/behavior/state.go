package behavior

// State is the robot's high-level activity/mood.
type State byte

// Robot states. Wire values are part of the protocol contract.
// Idle is a pre-init sentinel only; it is never revisited after
// startup and is not a valid transition target.
const (
	Idle State = iota
	Sleep
	Wake
	Listen
	Think
	Talk
)

var stateNames = [...]string{"IDLE", "SLEEP", "WAKE", "LISTEN", "THINK", "TALK"}

// IsValid checks the value against the closed state enumeration.
func (s State) IsValid() bool {
	return s >= Sleep && s <= Talk
}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

// Expression returns the expression id shown for the state.
func (s State) Expression() byte {
	switch s {
	case Wake:
		return 0x01
	case Listen:
		return 0x02
	case Think:
		return 0x03
	case Talk:
		return 0x04
	default:
		return 0x00
	}
}
