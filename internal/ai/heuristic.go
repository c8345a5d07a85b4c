package ai

import (
	"context"
	"strings"

	"github.com/mtlprog/taskpulse/internal/domain"
)

// keywordRule maps a predicate over lowercased text to an intent.
type keywordRule struct {
	intent     domain.Intent
	confidence float64
	reason     bool // attach the original text as reason
	match      func(lower string) bool
}

// heuristicRules are evaluated in order; the first match wins.
var heuristicRules = []keywordRule{
	{intent: domain.IntentStop, confidence: 1.0, match: func(s string) bool {
		s = strings.TrimSpace(s)
		return s == "stop" || s == "pause"
	}},
	{intent: domain.IntentDone, confidence: 0.9, match: containsAny("done", "finished", "complete")},
	{intent: domain.IntentBlock, confidence: 0.8, reason: true, match: containsAny("stuck", "block", "wait", "can't")},
	{intent: domain.IntentConfirm, confidence: 0.9, match: containsAny("ok", "got it", "sure", "will do")},
	{intent: domain.IntentQuery, confidence: 0.8, match: func(s string) bool {
		return strings.Contains(s, "what") && strings.Contains(s, "task")
	}},
	{intent: domain.IntentReschedule, confidence: 0.7, match: containsAny("later", "tomorrow", "reschedule")},
}

func containsAny(words ...string) func(string) bool {
	return func(s string) bool {
		for _, w := range words {
			if strings.Contains(s, w) {
				return true
			}
		}
		return false
	}
}

// HeuristicClassifier is the deterministic keyword classifier. Its output is a
// pure function of the message text; it never proposes task candidates.
type HeuristicClassifier struct{}

// Classify never returns an error.
func (HeuristicClassifier) Classify(_ context.Context, text string, _ []*domain.Task) (domain.Classification, error) {
	return ClassifyKeywords(text), nil
}

// ClassifyKeywords applies the keyword rules to text.
func ClassifyKeywords(text string) domain.Classification {
	lower := strings.ToLower(text)
	for _, rule := range heuristicRules {
		if !rule.match(lower) {
			continue
		}
		c := domain.Classification{
			Intent:     rule.intent,
			Confidence: rule.confidence,
			Source:     domain.SourceHeuristic,
		}
		if rule.reason {
			reason := text
			c.Reason = &reason
		}
		return c
	}
	return unclear()
}

func unclear() domain.Classification {
	return domain.Classification{
		Intent:     domain.IntentUnclear,
		Confidence: 0.5,
		Source:     domain.SourceHeuristic,
	}
}
