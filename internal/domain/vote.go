package domain

import (
	"math/rand"
	"sort"
)

// Ballot is one weighted vote. An empty TargetID is an abstention.
type Ballot struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
	Weight   int    `json:"weight"`
}

// VoteResult is the outcome of a tally.
type VoteResult struct {
	Counts   map[string]int `json:"counts"`
	Leaders  []string       `json:"leaders"` // every target with the top count, sorted
	WinnerID string         `json:"winnerId,omitempty"`
	IsTie    bool           `json:"isTie"`
}

// VoteWeight is 2 for the sheriff and 1 for everyone else.
func VoteWeight(p *Player) int {
	if p.IsSheriff {
		return 2
	}
	return 1
}

// Tally counts ballots and elects the top target. Exact ties are broken by a
// uniform draw between the leaders. No cast votes means no winner.
func Tally(ballots []Ballot, rng *rand.Rand) VoteResult {
	counts := make(map[string]int)
	for _, b := range ballots {
		if b.TargetID == "" {
			continue
		}
		w := b.Weight
		if w <= 0 {
			w = 1
		}
		counts[b.TargetID] += w
	}

	result := VoteResult{Counts: counts}

	maxVotes := 0
	for _, count := range counts {
		if count > maxVotes {
			maxVotes = count
		}
	}
	if maxVotes == 0 {
		return result
	}

	for id, count := range counts {
		if count == maxVotes {
			result.Leaders = append(result.Leaders, id)
		}
	}
	sort.Strings(result.Leaders)

	result.IsTie = len(result.Leaders) > 1
	if result.IsTie {
		result.WinnerID = result.Leaders[rng.Intn(len(result.Leaders))]
	} else {
		result.WinnerID = result.Leaders[0]
	}
	return result
}
