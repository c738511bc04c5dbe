package honeypot

// DefaultReplies is the persona script: a confused, cooperative victim
var DefaultReplies = []string{
	"Okay… I’m not very good with banking. What should I do first?",
	"Can you send the details again?",
	"Where exactly do I send the money?",
	"Is this your official company account?",
	"Sorry I didn’t understand… can you explain slowly?",
}

// DefaultNeutralReply acknowledges messages that look benign
const DefaultNeutralReply = "Okay, thank you for the information."

// ReplySelector walks the persona script by conversation progress
type ReplySelector struct {
	pool    []string
	neutral string
}

// NewReplySelector creates a selector. Empty arguments fall back to the defaults.
func NewReplySelector(pool []string, neutral string) *ReplySelector {
	if len(pool) == 0 {
		pool = DefaultReplies
	}
	if neutral == "" {
		neutral = DefaultNeutralReply
	}
	p := make([]string, len(pool))
	copy(p, pool)
	return &ReplySelector{pool: p, neutral: neutral}
}

// Select returns pool[progress mod len(pool)]. Negative progress counts as 0.
func (s *ReplySelector) Select(progress int) string {
	if progress < 0 {
		progress = 0
	}
	return s.pool[progress%len(s.pool)]
}

// Neutral returns the fixed acknowledgment for non-scam turns
func (s *ReplySelector) Neutral() string {
	return s.neutral
}

// Len returns the script length
func (s *ReplySelector) Len() int {
	return len(s.pool)
}
