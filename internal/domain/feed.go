package domain

import "time"

// ScoredChirp pairs a chirp with its feed score and a one-line
// explanation of why it ranked where it did. Engine output only, never
// persisted.
type ScoredChirp struct {
	Chirp       Chirp              `json:"chirp"`
	Score       float64            `json:"score"`
	Parts       map[string]float64 `json:"parts,omitempty"`
	Explanation string             `json:"explanation"`
}

// EmptyReason diagnoses why a feed came back empty.
type EmptyReason string

const (
	// EmptyNone means the feed is not empty.
	EmptyNone EmptyReason = ""
	// EmptyNotPersonalized means no viewer was supplied.
	EmptyNotPersonalized EmptyReason = "not_personalized"
	// EmptyNoSignals means the viewer follows nobody and has no liked
	// topics or interests to rank against.
	EmptyNoSignals EmptyReason = "no_follows_or_interests"
	// EmptyOverMuted means muting excluded every candidate.
	EmptyOverMuted EmptyReason = "over_aggressive_muting"
	// EmptyNoCandidates means the candidate set was empty to begin with.
	EmptyNoCandidates EmptyReason = "no_candidates"
)

// Feed is one personalized ranking pass over a candidate set.
type Feed struct {
	ViewerID    string        `json:"viewer_id"`
	Entries     []ScoredChirp `json:"entries"`
	EmptyReason EmptyReason   `json:"empty_reason,omitempty"`
	Candidates  int           `json:"candidates"`
	Excluded    int           `json:"excluded"`
	GeneratedAt time.Time     `json:"generated_at"`
}
