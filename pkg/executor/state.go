package executor

// State is a candidate's position in the deletion state machine
type State int

const (
	Pending State = iota
	Sizing
	DryRunSkipped
	Deleting
	Deleted
	DeleteFailed
)

var stateNames = map[State]string{
	Pending:       "pending",
	Sizing:        "sizing",
	DryRunSkipped: "dry-run",
	Deleting:      "deleting",
	Deleted:       "deleted",
	DeleteFailed:  "delete-failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen
func (s State) Terminal() bool {
	return s == DryRunSkipped || s == Deleted || s == DeleteFailed
}

var transitions = map[State][]State{
	Pending:  {Sizing, DeleteFailed},
	Sizing:   {DryRunSkipped, Deleting},
	Deleting: {Deleted, DeleteFailed},
}

// CanTransition reports whether from -> to is a legal move
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
