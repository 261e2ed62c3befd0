package model

// Any marks a filter dimension as inactive.
const Any = "Any"

// Criteria holds the user-selected filter values. Every field always
// carries a value; an empty Keywords or an Any selector disables that
// dimension.
type Criteria struct {
	Keywords  string `json:"keywords"`
	LaunchPad string `json:"launch_pad"`
	MinYear   string `json:"min_year"`
	MaxYear   string `json:"max_year"`
}

// DefaultCriteria returns criteria with every dimension inactive.
func DefaultCriteria() Criteria {
	return Criteria{
		Keywords:  "",
		LaunchPad: Any,
		MinYear:   Any,
		MaxYear:   Any,
	}
}
