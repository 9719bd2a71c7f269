package agent

import (
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/huimingz/commitguard/internal/llm"
	"github.com/huimingz/commitguard/internal/secrets"
)

// MessageFilter inspects or rewrites the messages about to be sent to the model.
// A filter returns a new slice when it changes anything; input messages are not modified.
type MessageFilter func(messages []*schema.Message) ([]*schema.Message, error)

// ChainFilters applies filters from left to right and stops at the first error
func ChainFilters(filters ...MessageFilter) MessageFilter {
	return func(messages []*schema.Message) ([]*schema.Message, error) {
		result := messages
		for _, filter := range filters {
			if filter == nil {
				continue
			}
			var err error
			if result, err = filter(result); err != nil {
				return nil, err
			}
		}
		return result, nil
	}
}

func guardRole(role schema.RoleType) secrets.Role {
	switch role {
	case schema.System:
		return secrets.RoleSystem
	case schema.Assistant:
		return secrets.RoleAssistant
	default:
		return secrets.RoleUser
	}
}

// SecretGuardFilter runs guard over the message contents. onMatches, when set,
// receives every match found whether or not the request was blocked.
func SecretGuardFilter(guard *secrets.Guard, onMatches func([]secrets.Match)) MessageFilter {
	return func(messages []*schema.Message) ([]*schema.Message, error) {
		if guard == nil {
			return messages, nil
		}

		in := make([]secrets.Message, len(messages))
		for i, msg := range messages {
			in[i] = secrets.Message{Role: guardRole(msg.Role), Text: msg.Content}
		}

		out, matches, err := guard.Inspect(in)
		if onMatches != nil {
			onMatches(matches)
		}
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return messages, nil
		}

		result := make([]*schema.Message, len(messages))
		for i, msg := range messages {
			if out[i].Text == msg.Content {
				result[i] = msg
				continue
			}
			redacted := *msg
			redacted.Content = out[i].Text
			result[i] = &redacted
		}
		return result, nil
	}
}

// TokenLimitFilter rejects requests whose estimated size exceeds maxTokens.
// A non-positive maxTokens disables the check.
func TokenLimitFilter(maxTokens int) MessageFilter {
	return func(messages []*schema.Message) ([]*schema.Message, error) {
		if maxTokens <= 0 {
			return messages, nil
		}
		if total := EstimateMessagesTokens(messages); total > maxTokens {
			return nil, fmt.Errorf("%w: request is ~%d tokens (limit %d); stage fewer files or raise message.max_tokens",
				llm.ErrTokenLimitExceeded, total, maxTokens)
		}
		return messages, nil
	}
}

// EstimateTokens approximates the token count of text.
// CJK ideographs count about 1.5 characters per token, everything else about 4.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}

	cjk, other := 0, 0
	for _, r := range text {
		if r >= 0x4E00 && r <= 0x9FFF {
			cjk++
		} else {
			other++
		}
	}

	tokens := (cjk * 2 / 3) + (other / 4)
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

// EstimateMessagesTokens sums EstimateTokens over message contents
func EstimateMessagesTokens(messages []*schema.Message) int {
	total := 0
	for _, msg := range messages {
		total += EstimateTokens(msg.Content)
	}
	return total
}
