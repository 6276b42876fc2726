package chat

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// revisionThreshold is the length above which a post-summary message is
// treated as a revision of the idea.
const revisionThreshold = 50

// revisionKeywords mark a post-summary message as changing the idea.
var revisionKeywords = []string{
	"change", "changed", "changing", "update", "revise", "instead", "pivot",
	"target", "market", "audience", "customer", "customers", "users",
	"pricing", "price", "monetize", "monetization", "revenue", "subscription",
	"competitor", "competitors", "feature", "features", "add", "remove",
	"scope", "platform", "business model",
}

var reRevision = regexp.MustCompile(`(?i)\b(?:` + keywordAlternation() + `)\b`)

func keywordAlternation() string {
	quoted := make([]string, len(revisionKeywords))
	for i, k := range revisionKeywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return strings.Join(quoted, "|")
}

// Classification is the stage chosen for the next turn and the system
// prompt that drives it.
type Classification struct {
	Stage        Stage
	SystemPrompt string
}

// Classify picks the stage for the next assistant turn. history holds the
// prior messages oldest first and must not include the incoming text.
func Classify(history []Message, isInitial bool, incoming string) Classification {
	stage := classifyStage(history, isInitial, incoming)
	return Classification{Stage: stage, SystemPrompt: SystemPrompt(stage)}
}

func classifyStage(history []Message, isInitial bool, incoming string) Stage {
	if isInitial {
		return StageQuestions
	}
	if !hasSummary(history) {
		if len(history) >= 2 {
			return StageSummary
		}
		return StageGathering
	}
	if IsRevision(incoming) {
		return StageSummary
	}
	return StagePostSummary
}

func hasSummary(history []Message) bool {
	for _, m := range history {
		if m.Role == RoleAssistant && m.Metadata.Stage == StageSummary {
			return true
		}
	}
	return false
}

// IsRevision reports whether a post-summary message looks like it changes
// the idea: it names a revision keyword as a whole word or is long.
func IsRevision(text string) bool {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > revisionThreshold {
		return true
	}
	return reRevision.MatchString(text)
}
