package agent

import (
	"fmt"
	"strings"
)

// State is the behavioral state of an agent. Exactly one is active at a time.
type State int

const (
	Patrolling State = iota
	Chasing
	Attacking
	Retreating
	Searching
	Healing
)

var stateNames = [...]string{"patrolling", "chasing", "attacking", "retreating", "searching", "healing"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) Valid() bool { return s >= Patrolling && s <= Healing }

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	for i, n := range stateNames {
		if n == name {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("agent: unknown state %q", name)
}

// edges lists every transition the machine may take. The low-health edges
// into Retreating are forced by TakeDamage from any non-recovering state.
var edges = map[State][]State{
	Patrolling: {Chasing, Retreating},
	Chasing:    {Attacking, Searching, Retreating},
	Attacking:  {Chasing, Retreating},
	Retreating: {Healing},
	Healing:    {Searching},
	Searching:  {Chasing, Patrolling, Retreating},
}

func canTransition(from, to State) bool {
	for _, s := range edges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// recovering reports whether the agent is already disengaging.
func (s State) recovering() bool { return s == Retreating || s == Healing }
