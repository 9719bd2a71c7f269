package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/huimingz/commitguard/internal/agent/tools"
	"github.com/huimingz/commitguard/internal/config"
	"github.com/huimingz/commitguard/internal/llm"
	"github.com/huimingz/commitguard/internal/log"
	"github.com/huimingz/commitguard/internal/message"
	"github.com/huimingz/commitguard/internal/secrets"
	"github.com/huimingz/commitguard/internal/ui"
	"github.com/huimingz/commitguard/pkg/lang"
)

// ErrNoChanges is returned when there is no diff to describe
var ErrNoChanges = errors.New("no changes detected")

// CommitRequest represents a request to generate a commit message
type CommitRequest struct {
	Diff           string   // Changes to describe (required)
	Status         string   // Short git status (optional)
	Language       string   // Output language
	Context        string   // User-provided context (optional)
	RecentSubjects []string // Recent commit subjects used as style examples (optional)
}

// CommitInfo represents the structured commit information from the submit_commit tool
type CommitInfo struct {
	Type        string `json:"type"`
	Scope       string `json:"scope,omitempty"`
	Description string `json:"description"`
	Body        string `json:"body,omitempty"`
	Footer      string `json:"footer,omitempty"`
	Breaking    bool   `json:"breaking,omitempty"`
	Remark      string `json:"remark,omitempty"` // Note for the developer, never part of Message
}

// Title returns the formatted commit title (first line)
func (c *CommitInfo) Title() string {
	bang := ""
	if c.Breaking {
		bang = "!"
	}
	if c.Scope != "" {
		return fmt.Sprintf("%s(%s)%s: %s", c.Type, c.Scope, bang, c.Description)
	}
	return fmt.Sprintf("%s%s: %s", c.Type, bang, c.Description)
}

// Message returns the complete formatted commit message
func (c *CommitInfo) Message() string {
	parts := []string{c.Title()}

	if c.Body != "" {
		parts = append(parts, "", c.Body)
	}
	if c.Footer != "" {
		parts = append(parts, "", c.Footer)
	}

	return strings.Join(parts, "\n")
}

// Validate checks if the commit info is valid
func (c *CommitInfo) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("commit type is required")
	}
	if !tools.IsCommitType(c.Type) {
		return fmt.Errorf("invalid commit type: %s", c.Type)
	}
	if c.Description == "" {
		return fmt.Errorf("commit description is required")
	}
	return nil
}

// CommitInfoFromToolParams converts SubmitCommitParams to CommitInfo
func CommitInfoFromToolParams(params *tools.SubmitCommitParams) *CommitInfo {
	return &CommitInfo{
		Type:        params.Type,
		Scope:       params.Scope,
		Description: params.Description,
		Body:        params.Body,
		Footer:      params.Footer,
		Breaking:    params.Breaking,
		Remark:      params.Remark,
	}
}

// CommitResponse represents the generated commit message
type CommitResponse struct {
	CommitInfo       *CommitInfo // nil when the model answered with a free-form message
	Message          string      // Reflowed commit message
	Remark           string      // Note from the model for the developer
	Redactions       int         // Secret matches replaced before sending
	RedactedRules    []string    // Distinct rule IDs that caused redactions
	EstimatedTokens  int         // Local estimate of the request size
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Attempts         int
}

// CommitAgentOptions contains configuration for CommitAgent
type CommitAgentOptions struct {
	Language      string            // Output language (default: "en")
	LLMProvider   llm.Provider      // LLM provider for generating messages
	Guard         *secrets.Guard    // Secret guard applied to outbound messages (optional)
	Printer       *ui.StreamPrinter // Stream printer for output (optional)
	Output        io.Writer         // Output writer (used if Printer is nil)
	Debug         bool              // Enable debug mode
	RetryConfig   *llm.RetryConfig  // nil uses llm.DefaultRetryConfig
	MaxTokens     int               // Request budget; 0 uses the default, negative disables
	MaxLineLength int               // Reflow width; 0 uses message.DefaultWidth
	Logger        *log.Logger
}

// Validate validates the options and sets defaults
func (o *CommitAgentOptions) Validate() error {
	if o.LLMProvider == nil {
		return fmt.Errorf("LLM provider is not configured")
	}
	if o.Language == "" {
		o.Language = "en"
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = config.DefaultMessageConfig().MaxTokens
	}
	if o.MaxLineLength < 0 {
		return fmt.Errorf("max line length must be non-negative, got %d", o.MaxLineLength)
	}
	if o.MaxLineLength == 0 {
		o.MaxLineLength = message.DefaultWidth
	}
	if o.RetryConfig != nil {
		if err := o.RetryConfig.Validate(); err != nil {
			return fmt.Errorf("invalid retry config: %w", err)
		}
	}
	return nil
}

// getPrinter returns the printer or creates a default one
func (o *CommitAgentOptions) getPrinter() *ui.StreamPrinter {
	if o.Printer != nil {
		return o.Printer
	}
	if o.Output != nil {
		return ui.NewStreamPrinter(o.Output, ui.WithVerbose(o.Debug))
	}
	return nil
}

// CommitAgent handles commit message generation
type CommitAgent struct {
	opts   CommitAgentOptions
	logger *log.Logger
}

// NewCommitAgent creates a new CommitAgent instance
func NewCommitAgent(opts CommitAgentOptions) (*CommitAgent, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}

	return &CommitAgent{
		opts:   opts,
		logger: logger,
	}, nil
}

type promptData struct {
	Language       string
	Context        string
	RecentSubjects []string
	MaxLineLength  int
}

// BuildSystemPrompt generates the system prompt for commit message generation
func BuildSystemPrompt(language, context string, recentSubjects []string, maxLineLength int) string {
	tmpl, err := template.New("system_prompt").Parse(CommitSystemPrompt)
	if err != nil {
		return CommitSystemPrompt
	}

	if maxLineLength <= 0 {
		maxLineLength = message.DefaultWidth
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, promptData{
		Language:       lang.PromptName(language),
		Context:        context,
		RecentSubjects: recentSubjects,
		MaxLineLength:  maxLineLength,
	})
	if err != nil {
		return CommitSystemPrompt
	}

	return buf.String()
}

// BuildUserMessage renders the status overview and the diff
func BuildUserMessage(req CommitRequest) string {
	var b strings.Builder
	b.WriteString("Please analyze the following changes and generate a commit message.\n\n")

	if strings.TrimSpace(req.Status) != "" {
		b.WriteString("## Git Status Overview\n```\n")
		b.WriteString(req.Status)
		b.WriteString("\n```\n\n")
	}

	b.WriteString("## Changes (Diff)\n```diff\n")
	b.WriteString(req.Diff)
	b.WriteString("\n```\n")

	return b.String()
}

type streamResult struct {
	content   string
	toolCalls []*schema.ToolCall
	usage     schema.TokenUsage
}

// GenerateCommitMessage generates a commit message for the changes in req.
//
// Outbound messages pass the secret guard and the token budget before a chat
// model is created, so a blocked request never reaches a provider. When the
// reflowed message still has an over-long line the response is returned
// together with an error matching message.ErrLineTooLong.
func (a *CommitAgent) GenerateCommitMessage(ctx context.Context, req CommitRequest) (*CommitResponse, error) {
	printer := a.opts.getPrinter()

	printProgress := func(msg string) {
		if printer != nil {
			_ = printer.PrintProgress(msg)
		}
		a.logger.Debug("%s", msg)
	}

	printInfo := func(msg string) {
		if printer != nil {
			_ = printer.PrintInfo(msg)
		}
	}

	printSuccess := func(msg string) {
		if printer != nil {
			_ = printer.PrintSuccess(msg)
		}
	}

	if strings.TrimSpace(req.Diff) == "" {
		return nil, ErrNoChanges
	}
	if req.Language == "" {
		req.Language = a.opts.Language
	}

	startTime := time.Now()
	resp := &CommitResponse{}

	messages := []*schema.Message{
		schema.SystemMessage(BuildSystemPrompt(req.Language, req.Context, req.RecentSubjects, a.opts.MaxLineLength)),
		schema.UserMessage(BuildUserMessage(req)),
	}

	printProgress("Scanning changes for secrets...")
	filter := ChainFilters(
		SecretGuardFilter(a.opts.Guard, func(matches []secrets.Match) {
			resp.Redactions = len(matches)
			resp.RedactedRules = distinctRuleIDs(matches)
		}),
		TokenLimitFilter(a.opts.MaxTokens),
	)
	messages, err := filter(messages)
	if err != nil {
		return nil, err
	}
	resp.EstimatedTokens = EstimateMessagesTokens(messages)

	if resp.Redactions > 0 && printer != nil {
		_ = printer.PrintWarning(fmt.Sprintf("Redacted %d secret match(es) (%s) before sending",
			resp.Redactions, strings.Join(resp.RedactedRules, ", ")))
	}
	printInfo(fmt.Sprintf("Language: %s", req.Language))
	if req.Context != "" {
		printInfo(fmt.Sprintf("Context: %s", req.Context))
	}

	providerName := a.opts.LLMProvider.Name()
	modelName := a.opts.LLMProvider.GetConfig().Model
	printProgress(fmt.Sprintf("Initializing LLM provider (%s/%s)...", providerName, modelName))

	chatModel, err := a.opts.LLMProvider.CreateChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is nil (provider: %s)", providerName)
	}

	if err := chatModel.BindTools([]*schema.ToolInfo{tools.SubmitCommitToolInfo()}); err != nil {
		return nil, fmt.Errorf("failed to bind tools: %w", err)
	}

	retryCfg := llm.DefaultRetryConfig()
	if a.opts.RetryConfig != nil {
		retryCfg = *a.opts.RetryConfig
	}
	onRetry := retryCfg.OnRetry
	retryCfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		a.logger.Debug("Attempt %d failed: %v (retrying in %s)", attempt, err, backoff)
		if printer != nil {
			_ = printer.PrintRetry(attempt, err, backoff)
		}
		if onRetry != nil {
			onRetry(attempt, err, backoff)
		}
	}

	printProgress(fmt.Sprintf("Sending ~%d tokens to LLM (streaming)...", resp.EstimatedTokens))
	result, err := llm.WithRetryResult(ctx, retryCfg, func() (*streamResult, error) {
		resp.Attempts++
		return a.stream(ctx, chatModel, messages, printer)
	})
	if err != nil {
		return nil, err
	}

	resp.PromptTokens = result.usage.PromptTokens
	resp.CompletionTokens = result.usage.CompletionTokens
	resp.TotalTokens = result.usage.TotalTokens
	a.logger.DebugTokenUsage(resp.PromptTokens, resp.CompletionTokens, resp.TotalTokens)
	a.logger.DebugDuration("Commit message generation", time.Since(startTime))

	raw, err := a.extract(result, resp)
	if err != nil {
		return nil, err
	}
	printSuccess("Commit message generated successfully")

	wrapped, err := message.Finalize(raw, a.opts.MaxLineLength)
	resp.Message = wrapped
	if err != nil {
		return resp, fmt.Errorf("generated message: %w", err)
	}
	return resp, nil
}

// stream runs one streaming request and accumulates content, tool calls and usage
func (a *CommitAgent) stream(ctx context.Context, chatModel model.ChatModel, messages []*schema.Message, printer *ui.StreamPrinter) (*streamResult, error) {
	streamReader, err := chatModel.Stream(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("LLM stream failed: %w", err)
	}
	defer streamReader.Close()

	var content strings.Builder
	var toolCalls []*schema.ToolCall
	var usage schema.TokenUsage
	argsStarted := false

	for {
		chunk, err := streamReader.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("stream read error: %w", err)
		}

		if chunk.Content != "" {
			content.WriteString(chunk.Content)
			if printer != nil {
				_ = printer.PrintLLMContent(chunk.Content)
			}
		}

		for _, tc := range chunk.ToolCalls {
			idx := 0
			if tc.Index != nil {
				idx = *tc.Index
			}
			for len(toolCalls) <= idx {
				toolCalls = append(toolCalls, &schema.ToolCall{})
			}

			if tc.Function.Name != "" {
				if toolCalls[idx].Function.Name == "" && printer != nil {
					_ = printer.PrintToolCall(tc.Function.Name)
				}
				toolCalls[idx].Function.Name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				toolCalls[idx].Function.Arguments += tc.Function.Arguments
				if printer != nil && printer.Verbose() {
					if !argsStarted {
						_ = printer.PrintToolArgStart()
						argsStarted = true
					}
					_ = printer.PrintToolArgChunk(tc.Function.Arguments)
				}
			}
		}

		if chunk.ResponseMeta != nil && chunk.ResponseMeta.Usage != nil {
			u := chunk.ResponseMeta.Usage
			usage.PromptTokens = max(usage.PromptTokens, u.PromptTokens)
			usage.CompletionTokens = max(usage.CompletionTokens, u.CompletionTokens)
			usage.TotalTokens = max(usage.TotalTokens, u.TotalTokens)
		}
	}

	if argsStarted {
		_ = printer.PrintToolArgEnd()
	}
	if content.Len() > 0 {
		a.logger.Debug("LLM content: %s", content.String())
	}

	return &streamResult{
		content:   content.String(),
		toolCalls: toolCalls,
		usage:     usage,
	}, nil
}

// extract returns the unwrapped message from a submit_commit call, falling back
// to the text content when no valid call was made
func (a *CommitAgent) extract(result *streamResult, resp *CommitResponse) (string, error) {
	for _, toolCall := range result.toolCalls {
		if toolCall.Function.Name != tools.SubmitCommitToolName {
			continue
		}
		a.logger.Debug("Tool call: %s with args: %s", toolCall.Function.Name, toolCall.Function.Arguments)

		params, err := tools.ParseSubmitCommit(toolCall.Function.Arguments)
		if err != nil {
			a.logger.Debug("Invalid commit params: %v", err)
			continue
		}

		resp.CommitInfo = CommitInfoFromToolParams(params)
		resp.Remark = params.Remark
		return resp.CommitInfo.Message(), nil
	}

	if strings.TrimSpace(result.content) == "" {
		return "", fmt.Errorf("failed to generate commit message: no valid response from LLM")
	}

	a.logger.Debug("No usable tool call found, parsing text response")
	parsed, err := parseTextResponse(result.content)
	if err != nil {
		return "", err
	}
	resp.CommitInfo = parsed.info
	resp.Remark = parsed.remark
	return parsed.message, nil
}

// structuredAnswer is the JSON shape some models emit instead of a tool call
type structuredAnswer struct {
	AgentResponse string `json:"agent_response"`
	CommitMessage string `json:"commit_message"`
}

type parsedText struct {
	info    *CommitInfo
	message string
	remark  string
}

var conventionalTitle = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^)]*)\))?(!)?:\s*(.+)$`)

// parseTextResponse extracts a commit message from a plain-text or JSON answer
func parseTextResponse(content string) (*parsedText, error) {
	text := stripCodeFence(content)
	if text == "" {
		return nil, fmt.Errorf("empty response from LLM")
	}

	parsed := &parsedText{}
	if strings.HasPrefix(text, "{") {
		var answer structuredAnswer
		if err := json.Unmarshal([]byte(text), &answer); err == nil && strings.TrimSpace(answer.CommitMessage) != "" {
			parsed.remark = strings.TrimSpace(answer.AgentResponse)
			text = stripCodeFence(answer.CommitMessage)
		} else if params, err := tools.ParseSubmitCommit(text); err == nil {
			parsed.info = CommitInfoFromToolParams(params)
			parsed.remark = params.Remark
			parsed.message = parsed.info.Message()
			return parsed, nil
		} else {
			return nil, fmt.Errorf("failed to parse commit message from JSON response")
		}
	}

	title, body, _ := strings.Cut(text, "\n")
	title = strings.TrimSpace(title)
	body = strings.Trim(body, "\n")

	if m := conventionalTitle.FindStringSubmatch(title); m != nil && tools.IsCommitType(strings.ToLower(m[1])) {
		parsed.info = &CommitInfo{
			Type:        strings.ToLower(m[1]),
			Scope:       strings.TrimSpace(m[2]),
			Breaking:    m[3] == "!",
			Description: strings.TrimSpace(m[4]),
			Body:        strings.TrimSpace(body),
			Remark:      parsed.remark,
		}
		parsed.message = parsed.info.Message()
		return parsed, nil
	}

	parsed.message = text
	return parsed, nil
}

// stripCodeFence removes a surrounding markdown code block
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	_, rest, found := strings.Cut(s, "\n")
	if !found {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, "```")
	return strings.TrimSpace(rest)
}

func distinctRuleIDs(matches []secrets.Match) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range matches {
		if !seen[m.RuleID] {
			seen[m.RuleID] = true
			ids = append(ids, m.RuleID)
		}
	}
	return ids
}
