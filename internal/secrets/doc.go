// Package secrets inspects text before it is sent to a language model.
//
// A Detector compiles named regular expression rules, filtered by a minimum
// confidence, and scans text for every occurrence of every rule. A Policy
// decides what happens when something is found: the block strategy fails
// with a SecretDetectedError, the redact strategy replaces each matched
// substring with [REDACTED]. A Guard applies both to a list of role-tagged
// messages, which is the boundary the commit agent hands over before any
// network call is made.
//
// Rules are read from a YAML document:
//
//	patterns:
//	  - pattern:
//	      name: aws_access_key_id
//	      regex: 'AKIA[0-9A-Z]{16}'
//	      confidence: high
//
// Confidence is low, medium, high or a number between 0 and 1. Regular
// expressions use the Go RE2 dialect; rules that do not compile are skipped
// with a warning.
package secrets
