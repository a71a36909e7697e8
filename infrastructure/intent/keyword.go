// Package intent provides intent classifier implementations.
package intent

import (
	"context"
	"strings"

	"github.com/ssumakant/abp-agent/domain/constitution"
	"github.com/ssumakant/abp-agent/domain/intent"
)

// KeywordClassifier detects intent from keywords in the request text. It
// serves as the offline fallback for an LLM-backed classifier and as a
// deterministic classifier for tests.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a keyword-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Rule ordering matters: "reschedule my meeting" must match reschedule
// before the generic scheduling keywords.
var keywordRules = []struct {
	intent   intent.Intent
	keywords []string
}{
	{intent.IntentRescheduleMeeting, []string{"reschedule", "free up", "move"}},
	{intent.IntentScheduleMeeting, []string{"book", "schedule", "create"}},
	{intent.IntentCheckAvailability, []string{"free", "available", "when", "calendar", "tomorrow", "today", "what", "meetings"}},
	{intent.IntentAssessBusyness, []string{"busy", "how is"}},
}

// Classify maps a request to an intent via keyword matching.
func (c *KeywordClassifier) Classify(_ context.Context, request string, _ constitution.Constitution) (*intent.Result, error) {
	lower := strings.ToLower(request)

	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return &intent.Result{Intent: rule.intent, Confidence: 0.5}, nil
			}
		}
	}

	return &intent.Result{Intent: intent.IntentUnknown, Confidence: 0.5}, nil
}

var _ intent.Classifier = (*KeywordClassifier)(nil)
