package honeypot

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"honeypot-lab/internal/domain/models"
)

// DefaultKeywords are the scam-indicator phrases. Matching is a plain
// case-insensitive substring test, so "kyc" also fires inside "kycinfo";
// that over-matching is a known false-positive source and is kept on purpose.
var DefaultKeywords = []string{
	"otp", "urgent", "account blocked", "verify now", "kyc",
	"suspend", "click link", "send money", "upi", "refund",
	"prize", "lottery", "reward", "transfer funds",
}

// ExtractionRule maps a text pattern to an intelligence category.
// MinLen/MaxLen (in characters, 0 = unbounded) filter whole matches, which lets
// digit-run rules express "bounded by non-digits" without lookarounds.
type ExtractionRule struct {
	Name     string               `json:"name"`
	Category models.IntelCategory `json:"category"`
	Pattern  string               `json:"pattern"`
	MinLen   int                  `json:"min_len,omitempty"`
	MaxLen   int                  `json:"max_len,omitempty"`

	regex *regexp.Regexp
}

// FindAll returns every non-overlapping match, left to right
func (r *ExtractionRule) FindAll(text string) []string {
	found := r.regex.FindAllString(text, -1)
	if r.MinLen == 0 && r.MaxLen == 0 {
		return found
	}

	kept := found[:0]
	for _, m := range found {
		n := utf8.RuneCountInString(m)
		if r.MinLen > 0 && n < r.MinLen {
			continue
		}
		if r.MaxLen > 0 && n > r.MaxLen {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// DefaultRules returns the built-in extraction rules, one per category
func DefaultRules() []ExtractionRule {
	return []ExtractionRule{
		{
			Name:     "bank-account",
			Category: models.IntelBankAccounts,
			Pattern:  `\d+`,
			MinLen:   9,
			MaxLen:   18,
		},
		{
			// Loose on purpose: no TLD needed, so informal payment-app ids match too
			Name:     "payment-handle",
			Category: models.IntelPaymentHandles,
			Pattern:  `\b[\w.-]+@[\w.-]+\b`,
		},
		{
			Name:     "phone-number",
			Category: models.IntelPhoneNumbers,
			Pattern:  `\d+`,
			MinLen:   10,
			MaxLen:   10,
		},
		{
			Name:     "email-address",
			Category: models.IntelEmailAddresses,
			Pattern:  `\b[\w.-]+@[\w.-]+\.\w+\b`,
		},
		{
			Name:     "link",
			Category: models.IntelLinks,
			Pattern:  `https?://\S+`,
		},
		{
			Name:     "payment-instruction",
			Category: models.IntelPaymentInstructions,
			Pattern:  `(?i)(?:send|transfer|pay).{0,40}`,
		},
	}
}

// PatternLibrary is the process-wide, read-only set of keywords and extraction
// rules. It has no mutation API, so it is safe to share between goroutines.
type PatternLibrary struct {
	keywords []string
	rules    []ExtractionRule
}

// NewPatternLibrary compiles the rules and normalizes keywords (lower-cased,
// trimmed, deduplicated). A pattern that fails to compile is a configuration
// defect and is reported here rather than at request time.
func NewPatternLibrary(keywords []string, rules []ExtractionRule) (*PatternLibrary, error) {
	lib := &PatternLibrary{}

	seen := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		lib.keywords = append(lib.keywords, k)
	}

	for _, r := range rules {
		compiled, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile extraction rule %q: %w", r.Name, err)
		}
		if r.MinLen > 0 && r.MaxLen > 0 && r.MinLen > r.MaxLen {
			return nil, fmt.Errorf("extraction rule %q: min_len %d exceeds max_len %d", r.Name, r.MinLen, r.MaxLen)
		}
		r.regex = compiled
		lib.rules = append(lib.rules, r)
	}

	return lib, nil
}

// NewDefaultPatternLibrary builds the library from the built-in keywords plus
// any configured extras
func NewDefaultPatternLibrary(extraKeywords ...string) (*PatternLibrary, error) {
	keywords := append(append([]string{}, DefaultKeywords...), extraKeywords...)
	return NewPatternLibrary(keywords, DefaultRules())
}

// MustPatternLibrary panics if the library cannot be built
func MustPatternLibrary(lib *PatternLibrary, err error) *PatternLibrary {
	if err != nil {
		panic(err)
	}
	return lib
}

// Keywords returns a copy of the indicator phrases
func (l *PatternLibrary) Keywords() []string {
	out := make([]string, len(l.keywords))
	copy(out, l.keywords)
	return out
}

// Rules returns a copy of the extraction rules
func (l *PatternLibrary) Rules() []ExtractionRule {
	out := make([]ExtractionRule, len(l.rules))
	copy(out, l.rules)
	return out
}
