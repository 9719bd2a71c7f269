package secrets

import (
	"github.com/huimingz/commitguard/internal/log"
)

// Role identifies who authored a message sent to the model
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is the text unit the Guard inspects
type Message struct {
	Role Role
	Text string
}

// Guard runs a Detector and a Policy over outbound messages
type Guard struct {
	detector *Detector
	policy   *Policy
	logger   *log.Logger
}

// NewGuard creates a Guard. logger may be nil, which disables its debug output.
func NewGuard(detector *Detector, policy *Policy, logger *log.Logger) *Guard {
	return &Guard{
		detector: detector,
		policy:   policy,
		logger:   logger,
	}
}

// Strategy returns the strategy of the underlying policy
func (g *Guard) Strategy() Strategy {
	return g.policy.Strategy()
}

// Inspect scans every non-system message on its own, so a match never spans
// two messages. System messages are ours and pass through untouched.
//
// Under the block strategy any match returns a SecretDetectedError and no
// messages. Under redact a new slice is returned with secrets replaced; the
// input is never modified. All matches are returned in message order.
func (g *Guard) Inspect(messages []Message) ([]Message, []Match, error) {
	perMessage := make([][]Match, len(messages))
	var all []Match

	for i, msg := range messages {
		if msg.Role == RoleSystem {
			continue
		}
		matches := g.detector.Scan(msg.Text)
		perMessage[i] = matches
		all = append(all, matches...)
	}

	if err := g.policy.Evaluate(all); err != nil {
		g.logger.Debug("Secret guard blocked request: %d match(es)", len(all))
		return nil, all, err
	}

	out := make([]Message, len(messages))
	for i, msg := range messages {
		out[i] = msg
		if len(perMessage[i]) == 0 {
			continue
		}
		text, err := g.policy.Apply(msg.Text, perMessage[i])
		if err != nil {
			return nil, all, err
		}
		out[i].Text = text
	}

	if len(all) > 0 {
		g.logger.Warn("Redacted %d secret match(es) before sending to the model", len(all))
	}
	return out, all, nil
}

// ScanText returns the matches in a single piece of text
func (g *Guard) ScanText(text string) []Match {
	return g.detector.Scan(text)
}

// Detector returns the underlying detector
func (g *Guard) Detector() *Detector {
	return g.detector
}
