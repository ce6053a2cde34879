package supervisor

import "encoding/json"

// Status describes the last known lifecycle state of the supervised daemon.
// StatusUnknown is the zero value and the fallback when a probe fails.
type Status int

const (
	StatusUnknown Status = iota
	StatusStarting
	StatusRunning
	StatusStopping
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// AllStatuses lists every state in declaration order.
func AllStatuses() []Status {
	return []Status{StatusUnknown, StatusStarting, StatusRunning, StatusStopping, StatusStopped}
}

// ParseStatus maps a string produced by String back to a Status.
func ParseStatus(s string) Status {
	switch s {
	case "starting":
		return StatusStarting
	case "running":
		return StatusRunning
	case "stopping":
		return StatusStopping
	case "stopped":
		return StatusStopped
	default:
		return StatusUnknown
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	*s = ParseStatus(str)
	return nil
}
