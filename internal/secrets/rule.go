package secrets

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRuleConfig is returned when a rule document cannot be read or decoded
var ErrInvalidRuleConfig = errors.New("invalid secret rule configuration")

// Confidence is how likely a rule's matches are real secrets, from 0 to 1
type Confidence float64

const (
	ConfidenceLow    Confidence = 0.1
	ConfidenceMedium Confidence = 0.5
	ConfidenceHigh   Confidence = 0.9

	// DefaultThreshold accepts medium and high confidence rules
	DefaultThreshold = ConfidenceMedium
)

// ParseConfidence parses a level name (low, medium, high) or a number in [0,1]
func ParseConfidence(s string) (Confidence, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return 0, fmt.Errorf("confidence is required")
	case "low":
		return ConfidenceLow, nil
	case "medium":
		return ConfidenceMedium, nil
	case "high":
		return ConfidenceHigh, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid confidence %q: want low, medium, high or a number between 0 and 1", s)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("confidence %v out of range [0,1]", v)
	}
	return Confidence(v), nil
}

// String returns the level name for the named levels, the number otherwise
func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return strconv.FormatFloat(float64(c), 'g', -1, 64)
	}
}

// Rule is a named regular expression as written in the configuration.
// Confidence is kept raw so one bad value only disables its own rule.
type Rule struct {
	Name       string
	Regex      string
	Confidence string

	// problem records why the entry could not be decoded
	problem error
}

type ruleDocument struct {
	Patterns []yaml.Node `yaml:"patterns"`
}

type ruleEntry struct {
	Pattern struct {
		Name       string    `yaml:"name"`
		Regex      string    `yaml:"regex"`
		Confidence yaml.Node `yaml:"confidence"`
	} `yaml:"pattern"`
}

// ParseRules decodes a rule document. Only a document that is not valid YAML
// or whose top level is not a mapping is an error; malformed entries are
// returned as rules that the Detector will skip.
func ParseRules(r io.Reader) ([]Rule, error) {
	var doc ruleDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuleConfig, err)
	}

	rules := make([]Rule, 0, len(doc.Patterns))
	for i := range doc.Patterns {
		node := &doc.Patterns[i]

		var entry ruleEntry
		if err := node.Decode(&entry); err != nil {
			rules = append(rules, Rule{
				Name:    fmt.Sprintf("pattern #%d", i+1),
				problem: err,
			})
			continue
		}

		rule := Rule{
			Name:  strings.TrimSpace(entry.Pattern.Name),
			Regex: entry.Pattern.Regex,
		}
		if rule.Name == "" {
			rule.Name = fmt.Sprintf("pattern #%d", i+1)
		}

		switch entry.Pattern.Confidence.Kind {
		case 0:
			// missing
		case yaml.ScalarNode:
			rule.Confidence = entry.Pattern.Confidence.Value
		default:
			rule.problem = fmt.Errorf("line %d: confidence must be a scalar", entry.Pattern.Confidence.Line)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

// LoadRulesFile reads and parses a rule document from disk
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidRuleConfig, path, err)
	}

	rules, err := ParseRules(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

//go:embed default_patterns.yaml
var defaultPatterns []byte

// DefaultPatternsYAML returns the built-in rule document, used by `init`
func DefaultPatternsYAML() []byte {
	out := make([]byte, len(defaultPatterns))
	copy(out, defaultPatterns)
	return out
}

// DefaultRules returns the built-in rule set
func DefaultRules() []Rule {
	rules, err := ParseRules(bytes.NewReader(defaultPatterns))
	if err != nil {
		panic(fmt.Sprintf("secrets: embedded default patterns are invalid: %v", err))
	}
	return rules
}
