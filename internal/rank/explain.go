package rank

import (
	"fmt"
	"sort"
	"strings"
)

// Signal names used in the parts map and explanation assembly.
const (
	signalRelationship = "relationship"
	signalTopic        = "topic_affinity"
	signalRecency      = "recency"
	signalConversation = "conversation"
	signalValue        = "value"
)

// explainOrder fixes tie-break ordering so identical inputs always
// yield identical explanation strings.
var explainOrder = map[string]int{
	signalRelationship: 0,
	signalTopic:        1,
	signalConversation: 2,
	signalValue:        3,
	signalRecency:      4,
}

// dominantShare is the fraction of the strongest contribution a signal
// must reach to be mentioned in the explanation.
const dominantShare = 0.4

// explain builds the one-line justification from the dominant weighted
// contributions.
func explain(parts map[string]float64, matchedTopics []string, dampened bool) string {
	strongest := 0.0
	for _, part := range parts {
		if part > strongest {
			strongest = part
		}
	}

	var dominant []string
	for name, part := range parts {
		if strongest > 0 && part >= strongest*dominantShare && part > 0 {
			dominant = append(dominant, name)
		}
	}
	sort.Slice(dominant, func(i, j int) bool {
		return explainOrder[dominant[i]] < explainOrder[dominant[j]]
	})

	var phrases []string
	for _, name := range dominant {
		if phrase := phraseFor(name, matchedTopics); phrase != "" {
			phrases = append(phrases, phrase)
		}
	}
	if len(phrases) == 0 {
		phrases = []string{"In your extended feed"}
	}
	line := strings.Join(phrases, " · ")
	if dampened {
		line += " (fact-check review pending)"
	}
	return line
}

func phraseFor(name string, matchedTopics []string) string {
	switch name {
	case signalRelationship:
		return "From someone you follow"
	case signalTopic:
		if len(matchedTopics) > 0 {
			return fmt.Sprintf("Matches your interest in %s", matchedTopics[0])
		}
		return "Close to your interests"
	case signalConversation:
		return "Active discussion"
	case signalValue:
		return "High-value chirp"
	case signalRecency:
		return "Recently posted"
	default:
		return ""
	}
}
