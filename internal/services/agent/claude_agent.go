// -----------------------------------------------------------------------
// Claude Agent - Reasoning agent backed by the Anthropic Messages API
// -----------------------------------------------------------------------

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/medeor/internal/common"
	"github.com/ternarybob/medeor/internal/models"
)

const (
	maxAgentTurns = 10
	maxToolCalls  = 15
)

// ClaudeAgent implements the reasoning agent over the Anthropic Messages
// API. Each Analyze call runs a bounded tool-calling loop: the model
// requests read-only workspace tools through fenced JSON blocks, tools
// execute locally, and results feed back into the conversation.
type ClaudeAgent struct {
	client      anthropic.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      arbor.ILogger
}

// NewClaudeAgent creates a reasoning agent from the Claude configuration
func NewClaudeAgent(config *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeAgent, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set ANTHROPIC_API_KEY, MEDEOR_CLAUDE_API_KEY, or claude.api_key in config)")
	}

	model := config.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	timeout, err := time.ParseDuration(config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
	}

	interval, err := time.ParseDuration(config.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid rate_limit duration '%s': %w", config.RateLimit, err)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.APIKey),
	)

	agent := &ClaudeAgent{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: config.Temperature,
		timeout:     timeout,
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		logger:      logger,
	}

	logger.Debug().
		Str("model", model).
		Dur("timeout", timeout).
		Dur("rate_limit", interval).
		Int("max_tokens", maxTokens).
		Msg("Claude reasoning agent initialized")

	return agent, nil
}

// Model returns the configured model identifier
func (a *ClaudeAgent) Model() string {
	return a.model
}

// Analyze investigates the problem report against the repository checked
// out at workspacePath and returns the conversation trace.
func (a *ClaudeAgent) Analyze(ctx context.Context, problemReport, workspacePath string) (*models.AgentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	startTime := time.Now()
	tools := newWorkspaceTools(workspacePath)

	conversation := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(problemReport)),
	}

	result := &models.AgentResult{
		WorkspacePath: workspacePath,
		Messages: []models.AgentMessage{
			{Role: "user", Text: problemReport},
		},
	}

	toolCalls := 0
	for turn := 0; turn < maxAgentTurns; turn++ {
		response, err := a.complete(ctx, conversation)
		if err != nil {
			return nil, fmt.Errorf("agent turn %d failed: %w", turn+1, err)
		}

		call := parseToolUse(response)
		if call == nil {
			// Plain text ends the investigation.
			result.Summary = strings.TrimSpace(response)
			result.Messages = append(result.Messages, models.AgentMessage{Role: "assistant", Text: response})
			result.AnalysisComplete = true

			a.logger.Debug().
				Int("turns", turn+1).
				Int("tool_calls", toolCalls).
				Dur("duration", time.Since(startTime)).
				Msg("Agent analysis complete")

			return result, nil
		}

		toolCalls++
		if toolCalls > maxToolCalls {
			return nil, fmt.Errorf("agent exceeded maximum tool calls (%d)", maxToolCalls)
		}

		toolResult := tools.Execute(call)

		a.logger.Debug().
			Str("tool", call.Name).
			Int("result_length", len(toolResult)).
			Msg("Agent tool executed")

		result.Messages = append(result.Messages, models.AgentMessage{
			Role:       "assistant",
			Text:       response,
			ToolName:   call.Name,
			ToolResult: toolResult,
		})

		conversation = append(conversation,
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(response)),
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				fmt.Sprintf("Tool '%s' returned:\n\n%s", call.Name, toolResult),
			)),
		)
	}

	return nil, fmt.Errorf("agent did not complete within %d turns", maxAgentTurns)
}

// complete makes one rate-limited Messages API call and returns the text
// content of the response.
func (a *ClaudeAgent) complete(ctx context.Context, conversation []anthropic.MessageParam) (string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages:  conversation,
		System: []anthropic.TextBlockParam{
			{Text: systemPromptBase},
		},
	}
	if a.temperature > 0 {
		params.Temperature = anthropic.Float(float64(a.temperature))
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Claude API")
	}
	return text.String(), nil
}

var toolUsePattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\"tool_use\".*?\\})\\s*```")

// parseToolUse extracts a tool call from the model's response, or nil
// when the response is a final answer.
func parseToolUse(response string) *toolUse {
	matches := toolUsePattern.FindStringSubmatch(response)
	if len(matches) < 2 {
		return nil
	}

	var wrapper struct {
		ToolUse toolUse `json:"tool_use"`
	}
	if err := json.Unmarshal([]byte(matches[1]), &wrapper); err != nil {
		return nil
	}
	if wrapper.ToolUse.Name == "" {
		return nil
	}
	return &wrapper.ToolUse
}
