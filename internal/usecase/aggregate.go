package usecase

import "faq-bot/internal/domain"

// DefaultTerminalCategory ends the conversation when any sentence is
// classified into it.
const DefaultTerminalCategory = "conversation-complete"

// AnswerLookup returns the canned answer of a category.
type AnswerLookup func(category string) (string, bool)

// Aggregate joins the canned answers of results in order, each preceded by a
// single space. Categories without an answer contribute fallback and are
// reported back. ConversationComplete is set once any category equals
// terminal and never cleared.
func Aggregate(results []domain.ClassificationResult, lookup AnswerLookup, terminal, fallback string) (domain.ChatResponse, []*UnmappedCategoryError) {
	var (
		resp     domain.ChatResponse
		unmapped []*UnmappedCategoryError
	)
	for i, r := range results {
		fragment, ok := lookup(r.Category)
		if !ok {
			fragment = fallback
			unmapped = append(unmapped, &UnmappedCategoryError{Category: r.Category, Sentence: i + 1})
		}
		resp.Answer = resp.Answer + " " + fragment
		if r.Category == terminal {
			resp.ConversationComplete = true
		}
	}
	return resp, unmapped
}
