package domain

// Exchange is a single answered request as persisted in the transcript table.
type Exchange struct {
	PK                   string   `json:"-"`
	SK                   string   `json:"-"`
	ExchangeID           string   `json:"exchangeId"`
	CorrelationID        string   `json:"correlationId,omitempty"`
	Question             string   `json:"question"`
	Answer               string   `json:"answer"`
	Categories           []string `json:"categories"`
	ConversationComplete bool     `json:"conversationComplete"`
	CreatedAt            string   `json:"createdAt"`
	TTL                  int64    `json:"ttl,omitempty"`
}
