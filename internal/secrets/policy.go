package secrets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Placeholder replaces redacted secrets
const Placeholder = "[REDACTED]"

var (
	// ErrSecretDetected matches every SecretDetectedError via errors.Is
	ErrSecretDetected = errors.New("secret detected")

	// ErrUnknownStrategy is returned for a strategy other than block or redact
	ErrUnknownStrategy = errors.New("unknown secret strategy")
)

// Strategy decides what happens to text that contains secrets
type Strategy string

const (
	StrategyBlock  Strategy = "block"
	StrategyRedact Strategy = "redact"
)

// Strategies lists the supported strategies
var Strategies = []Strategy{StrategyBlock, StrategyRedact}

// ParseStrategy converts a configuration value into a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyBlock:
		return StrategyBlock, nil
	case StrategyRedact:
		return StrategyRedact, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: block, redact)", ErrUnknownStrategy, s)
	}
}

// SecretDetectedError aborts a request under the block strategy.
// It names the rules that fired but never carries the matched text.
type SecretDetectedError struct {
	RuleID  string
	RuleIDs []string
	Count   int
}

func (e *SecretDetectedError) Error() string {
	return fmt.Sprintf("secret detected by rule %s (%d match(es) from %s)",
		e.RuleID, e.Count, strings.Join(e.RuleIDs, ", "))
}

// Is reports whether target is ErrSecretDetected
func (e *SecretDetectedError) Is(target error) bool {
	return target == ErrSecretDetected
}

func newSecretDetectedError(matches []Match) *SecretDetectedError {
	seen := make(map[string]bool, len(matches))
	var ids []string
	for _, m := range matches {
		if !seen[m.RuleID] {
			seen[m.RuleID] = true
			ids = append(ids, m.RuleID)
		}
	}
	return &SecretDetectedError{
		RuleID:  matches[0].RuleID,
		RuleIDs: ids,
		Count:   len(matches),
	}
}

// Policy applies a Strategy to detected matches
type Policy struct {
	strategy Strategy
}

// NewPolicy validates strategy and returns a Policy for it
func NewPolicy(strategy Strategy) (*Policy, error) {
	s, err := ParseStrategy(string(strategy))
	if err != nil {
		return nil, err
	}
	return &Policy{strategy: s}, nil
}

// Strategy returns the configured strategy
func (p *Policy) Strategy() Strategy {
	return p.strategy
}

// Evaluate returns a SecretDetectedError when the strategy is block and
// matches is not empty
func (p *Policy) Evaluate(matches []Match) error {
	if len(matches) == 0 || p.strategy != StrategyBlock {
		return nil
	}
	return newSecretDetectedError(matches)
}

// Apply returns text unchanged when there are no matches, fails under the
// block strategy, and otherwise replaces every occurrence of every matched
// substring with Placeholder.
func (p *Policy) Apply(text string, matches []Match) (string, error) {
	if len(matches) == 0 {
		return text, nil
	}
	if err := p.Evaluate(matches); err != nil {
		return "", err
	}
	return Redact(text, matches), nil
}

// Redact replaces every occurrence of each distinct matched text with
// Placeholder. Identical text elsewhere in the input is replaced too, even
// outside the matched span. Occurrences are located in the original text and
// overlapping ones collapse into a single Placeholder, so a secret containing
// a shorter one is removed whole.
func Redact(text string, matches []Match) string {
	seen := make(map[string]bool, len(matches))
	var spans [][2]int
	for _, m := range matches {
		if m.Text == "" || m.Text == Placeholder || seen[m.Text] {
			continue
		}
		seen[m.Text] = true
		for from := 0; from < len(text); {
			idx := strings.Index(text[from:], m.Text)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, [2]int{start, start + len(m.Text)})
			from = start + 1
		}
	}
	if len(spans) == 0 {
		return text
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i][0] != spans[j][0] {
			return spans[i][0] < spans[j][0]
		}
		return spans[i][1] > spans[j][1]
	})

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for i := 0; i < len(spans); {
		start, end := spans[i][0], spans[i][1]
		for i++; i < len(spans) && spans[i][0] < end; i++ {
			end = max(end, spans[i][1])
		}
		b.WriteString(text[last:start])
		b.WriteString(Placeholder)
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}
