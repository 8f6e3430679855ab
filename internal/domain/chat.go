package domain

// ChatResponse is the answer returned for one question. Answer is the
// space-joined concatenation of the canned answers of every sentence, in
// input order.
type ChatResponse struct {
	Answer               string `json:"answer"`
	ConversationComplete bool   `json:"conversationComplete"`
}

// ClassificationResult is the classifier decision for one sentence. Scores
// holds the probability of every label known to the model.
type ClassificationResult struct {
	Category string
	Scores   map[string]float64
}
