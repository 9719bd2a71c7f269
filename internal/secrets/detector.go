package secrets

import (
	"fmt"
	"regexp"

	"github.com/huimingz/commitguard/internal/log"
)

// CompiledRule is a rule that passed validation and the confidence threshold
type CompiledRule struct {
	ID         string
	Confidence Confidence
	Pattern    *regexp.Regexp
}

// Match is one occurrence of a rule in scanned text. Start and End are byte
// offsets into the scanned text.
type Match struct {
	RuleID string
	Text   string
	Start  int
	End    int
}

// Detector scans text with an ordered, immutable list of compiled rules.
// It is safe for concurrent use.
type Detector struct {
	rules     []CompiledRule
	threshold Confidence
}

// NewDetector compiles the rules whose confidence is at least threshold.
// Invalid rules are reported on logger and skipped. A nil logger discards
// those reports.
func NewDetector(rules []Rule, threshold Confidence, logger *log.Logger) *Detector {
	d := &Detector{threshold: threshold}

	for _, rule := range rules {
		compiled, err := compileRule(rule)
		if err != nil {
			logger.Warn("Skipping secret rule %q: %v", rule.Name, err)
			continue
		}
		if compiled.Confidence < threshold {
			logger.Debug("Secret rule %q below threshold (%s < %s)", rule.Name, compiled.Confidence, threshold)
			continue
		}
		d.rules = append(d.rules, compiled)
	}

	logger.Debug("Secret detector loaded %d of %d rules (threshold %s)", len(d.rules), len(rules), threshold)
	return d
}

// NewDetectorFromFile loads rules from path, or the built-in rules when path is empty
func NewDetectorFromFile(path string, threshold Confidence, logger *log.Logger) (*Detector, error) {
	if path == "" {
		return NewDetector(DefaultRules(), threshold, logger), nil
	}

	rules, err := LoadRulesFile(path)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		logger.Warn("No secret rules found in %s, secret detection is disabled", path)
	}
	return NewDetector(rules, threshold, logger), nil
}

func compileRule(rule Rule) (CompiledRule, error) {
	if rule.problem != nil {
		return CompiledRule{}, rule.problem
	}
	if rule.Regex == "" {
		return CompiledRule{}, fmt.Errorf("regex is required")
	}

	confidence, err := ParseConfidence(rule.Confidence)
	if err != nil {
		return CompiledRule{}, err
	}

	pattern, err := regexp.Compile(rule.Regex)
	if err != nil {
		return CompiledRule{}, fmt.Errorf("invalid regex: %w", err)
	}

	return CompiledRule{
		ID:         rule.Name,
		Confidence: confidence,
		Pattern:    pattern,
	}, nil
}

// Scan returns every match of every rule, grouped by rule in rule order and
// left to right within a rule. Empty matches are dropped.
func (d *Detector) Scan(text string) []Match {
	if d == nil || text == "" {
		return nil
	}

	var matches []Match
	for _, rule := range d.rules {
		for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
			if loc[0] == loc[1] {
				continue
			}
			matches = append(matches, Match{
				RuleID: rule.ID,
				Text:   text[loc[0]:loc[1]],
				Start:  loc[0],
				End:    loc[1],
			})
		}
	}
	return matches
}

// Rules returns a copy of the active rules
func (d *Detector) Rules() []CompiledRule {
	if d == nil {
		return nil
	}
	out := make([]CompiledRule, len(d.rules))
	copy(out, d.rules)
	return out
}

// Threshold returns the minimum confidence the detector was built with
func (d *Detector) Threshold() Confidence {
	if d == nil {
		return 0
	}
	return d.threshold
}
