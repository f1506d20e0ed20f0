package domain

import (
	"strings"
	"time"
)

// Verdict is the outcome of fact-checking a single claim.
type Verdict string

const (
	VerdictTrue       Verdict = "true"
	VerdictFalse      Verdict = "false"
	VerdictMixed      Verdict = "mixed"
	VerdictUnverified Verdict = "unverified"
)

// ParseVerdict normalizes a raw verdict string. Anything unrecognized is
// treated as unverified, the most cautious reading.
func ParseVerdict(raw string) Verdict {
	switch Verdict(strings.ToLower(strings.TrimSpace(raw))) {
	case VerdictTrue:
		return VerdictTrue
	case VerdictFalse:
		return VerdictFalse
	case VerdictMixed:
		return VerdictMixed
	default:
		return VerdictUnverified
	}
}

// ClaimDomain tags the subject area of a claim. Health, finance and
// politics are high-risk: unverified claims there are held for review.
type ClaimDomain string

const (
	DomainHealth   ClaimDomain = "health"
	DomainFinance  ClaimDomain = "finance"
	DomainPolitics ClaimDomain = "politics"
	DomainGeneral  ClaimDomain = "general"
)

// HighRisk reports whether claims in this domain require verified
// evidence before they are shown without a review flag.
func (d ClaimDomain) HighRisk() bool {
	switch d {
	case DomainHealth, DomainFinance, DomainPolitics:
		return true
	default:
		return false
	}
}

// FactCheckStatus is the post-level visibility state derived from a
// chirp's claims and fact-checks. Severity order: blocked > needs_review
// > clean.
type FactCheckStatus string

const (
	StatusClean       FactCheckStatus = "clean"
	StatusNeedsReview FactCheckStatus = "needs_review"
	StatusBlocked     FactCheckStatus = "blocked"
)

// Severity returns the precedence rank used when folding per-claim
// statuses into a post-level status.
func (s FactCheckStatus) Severity() int {
	switch s {
	case StatusBlocked:
		return 2
	case StatusNeedsReview:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of two statuses.
func (s FactCheckStatus) Worse(other FactCheckStatus) FactCheckStatus {
	if other.Severity() > s.Severity() {
		return other
	}
	return s
}

// Claim is one factual assertion extracted from a chirp's text by the
// external verification provider.
type Claim struct {
	ID     string      `json:"id"`
	Text   string      `json:"text"`
	Type   string      `json:"type"`
	Domain ClaimDomain `json:"domain"`
}

// Evidence is a single source cited by a fact-check.
type Evidence struct {
	Source  string `json:"source"`
	Snippet string `json:"snippet"`
	URL     string `json:"url,omitempty"`
}

// FactCheck is the verdict record for one claim.
type FactCheck struct {
	ClaimID    string     `json:"claim_id"`
	Verdict    Verdict    `json:"verdict"`
	Confidence float64    `json:"confidence"`
	Evidence   []Evidence `json:"evidence,omitempty"`
	Caveats    []string   `json:"caveats,omitempty"`
}

// BoundedConfidence clamps the reported confidence to [0,1]. Missing or
// malformed values (NaN serialization artifacts arrive as 0 after JSON
// decoding) collapse to 0, i.e. fully unverified.
func (fc FactCheck) BoundedConfidence() float64 {
	c := fc.Confidence
	if c != c || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// ValueScore is the content-value assessment attached to a chirp, total
// plus sub-components, each in [0,1].
type ValueScore struct {
	Total       float64 `json:"total"`
	Novelty     float64 `json:"novelty"`
	Depth       float64 `json:"depth"`
	Civility    float64 `json:"civility"`
	Specificity float64 `json:"specificity"`
}

// Chirp is a single user-authored post.
type Chirp struct {
	ID             string          `json:"id"`
	AuthorID       string          `json:"author_id"`
	Text           string          `json:"text"`
	Topic          string          `json:"topic"`
	SemanticTopics []string        `json:"semantic_topics,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CommentCount   int             `json:"comment_count"`
	ValueScore     *ValueScore     `json:"value_score,omitempty"`
	DiscussionRole string          `json:"discussion_role,omitempty"`
	Claims         []Claim         `json:"claims,omitempty"`
	FactChecks     []FactCheck     `json:"fact_checks,omitempty"`
	Status         FactCheckStatus `json:"fact_check_status"`
}

// NewChirp fills the canonical defaults for a freshly authored chirp:
// no claims yet, clean by absence.
func NewChirp(id, authorID, text, topic string, createdAt time.Time) Chirp {
	return Chirp{
		ID:        id,
		AuthorID:  authorID,
		Text:      text,
		Topic:     topic,
		CreatedAt: createdAt,
		Status:    StatusClean,
	}
}

// Topics returns the primary topic plus semantic topics, lowercased,
// deduplicated, with empties removed.
func (c Chirp) Topics() []string {
	seen := make(map[string]struct{}, len(c.SemanticTopics)+1)
	out := make([]string, 0, len(c.SemanticTopics)+1)
	for _, t := range append([]string{c.Topic}, c.SemanticTopics...) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Age returns how old the chirp is relative to now, never negative.
func (c Chirp) Age(now time.Time) time.Duration {
	age := now.Sub(c.CreatedAt)
	if age < 0 {
		return 0
	}
	return age
}
