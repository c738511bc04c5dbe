package models

import (
	"time"

	"github.com/google/uuid"
)

// TurnRole identifies who authored a conversation turn
type TurnRole string

const (
	TurnRoleCounterpart TurnRole = "counterpart" // the suspected scammer
	TurnRoleAgent       TurnRole = "agent"       // our persona
)

// ConversationTurn is one caller-supplied history entry. It is never stored.
type ConversationTurn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// TurnRequest is the normalized form of a POST /honeypot body
type TurnRequest struct {
	ConversationID string             `json:"conversation_id"`
	Message        string             `json:"message"`
	History        []ConversationTurn `json:"history"`
}

// DetectionResult is the classifier verdict for one message
type DetectionResult struct {
	IsScam     bool     `json:"is_scam"`
	Confidence float64  `json:"confidence"`
	Matched    []string `json:"-"`
}

// IntelCategory names one bucket of extracted intelligence
type IntelCategory string

const (
	IntelBankAccounts        IntelCategory = "bank_account_numbers"
	IntelPaymentHandles      IntelCategory = "payment_handles"
	IntelPhoneNumbers        IntelCategory = "phone_numbers"
	IntelEmailAddresses      IntelCategory = "email_addresses"
	IntelLinks               IntelCategory = "links"
	IntelPaymentInstructions IntelCategory = "payment_instructions"
)

// IntelCategories lists every category in response order
var IntelCategories = []IntelCategory{
	IntelBankAccounts,
	IntelPaymentHandles,
	IntelPhoneNumbers,
	IntelEmailAddresses,
	IntelLinks,
	IntelPaymentInstructions,
}

// IntelligenceRecord holds extracted substrings per category, in the order found.
// Every field is a non-nil slice so the JSON always carries all six keys.
type IntelligenceRecord struct {
	BankAccountNumbers  []string `json:"bank_account_numbers"`
	PaymentHandles      []string `json:"payment_handles"`
	PhoneNumbers        []string `json:"phone_numbers"`
	EmailAddresses      []string `json:"email_addresses"`
	Links               []string `json:"links"`
	PaymentInstructions []string `json:"payment_instructions"`
}

// NewIntelligenceRecord returns a record with every category present and empty
func NewIntelligenceRecord() IntelligenceRecord {
	return IntelligenceRecord{
		BankAccountNumbers:  []string{},
		PaymentHandles:      []string{},
		PhoneNumbers:        []string{},
		EmailAddresses:      []string{},
		Links:               []string{},
		PaymentInstructions: []string{},
	}
}

func (r *IntelligenceRecord) slot(c IntelCategory) *[]string {
	switch c {
	case IntelBankAccounts:
		return &r.BankAccountNumbers
	case IntelPaymentHandles:
		return &r.PaymentHandles
	case IntelPhoneNumbers:
		return &r.PhoneNumbers
	case IntelEmailAddresses:
		return &r.EmailAddresses
	case IntelLinks:
		return &r.Links
	case IntelPaymentInstructions:
		return &r.PaymentInstructions
	}
	return nil
}

// Add appends values to a category. Unknown categories are ignored.
func (r *IntelligenceRecord) Add(c IntelCategory, values ...string) {
	if s := r.slot(c); s != nil {
		*s = append(*s, values...)
	}
}

// Get returns the values for a category (nil for unknown categories)
func (r *IntelligenceRecord) Get(c IntelCategory) []string {
	if s := r.slot(c); s != nil {
		return *s
	}
	return nil
}

// Total counts every extracted item across categories
func (r *IntelligenceRecord) Total() int {
	n := 0
	for _, c := range IntelCategories {
		n += len(r.Get(c))
	}
	return n
}

// EngagementMetrics describes the exchange so far
type EngagementMetrics struct {
	TurnCount      int   `json:"turn_count"`
	ResponseTimeMs int64 `json:"response_time_ms"`
}

// TurnResponse is the body returned for every handled turn
type TurnResponse struct {
	IsScam                bool               `json:"is_scam"`
	Confidence            float64            `json:"confidence"`
	AgentActivated        bool               `json:"agent_activated"`
	ReplyMessage          string             `json:"reply_message"`
	EngagementMetrics     EngagementMetrics  `json:"engagement_metrics"`
	ExtractedIntelligence IntelligenceRecord `json:"extracted_intelligence"`
}

// IntelligenceReport is the analyst-facing record of a scam turn.
// It is written once and never read back into a conversation.
type IntelligenceReport struct {
	ID              uuid.UUID          `json:"id"`
	ConversationID  string             `json:"conversation_id"`
	Confidence      float64            `json:"confidence"`
	MatchedKeywords []string           `json:"matched_keywords"`
	TurnCount       int                `json:"turn_count"`
	Message         string             `json:"message"`
	Intelligence    IntelligenceRecord `json:"intelligence"`
	CreatedAt       time.Time          `json:"created_at"`
}
