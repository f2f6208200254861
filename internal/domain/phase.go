package domain

// Phase represents the current phase of a game
type Phase string

const (
	PhaseLobby      Phase = "LOBBY"      // Waiting for players to join
	PhaseNight      Phase = "NIGHT"      // Role abilities run privately
	PhaseNomination Phase = "NOMINATION" // Players name lynch candidates
	PhaseVoting     Phase = "VOTING"     // Players vote among nominees
	PhaseResolution Phase = "RESOLUTION" // The elected target is lynched
	PhaseEnded      Phase = "ENDED"      // A win condition fired
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseLobby:      {PhaseNight},
		PhaseNight:      {PhaseNomination, PhaseEnded},
		PhaseNomination: {PhaseVoting, PhaseResolution, PhaseNight, PhaseEnded},
		PhaseVoting:     {PhaseResolution, PhaseNight, PhaseEnded},
		PhaseResolution: {PhaseNomination, PhaseNight, PhaseEnded},
		PhaseEnded:      {},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}
