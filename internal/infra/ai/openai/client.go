package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
	"github.com/bryanwahyu/checkdeck/internal/infra/ai/prompt"
)

const (
	maxTokens    = 1024
	defaultModel = "gpt-4o-mini"
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ChatCompleter is the slice of the go-openai client the oracle needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Oracle asks a chat model to judge a check and return a JSON verdict.
type Oracle struct {
	Client ChatCompleter
	Model  string
	defs   map[domain.CheckID]domain.CheckDefinition
}

func NewOracle(apiKey, model string, defs []domain.CheckDefinition) *Oracle {
	return NewOracleWithClient(openai.NewClient(apiKey), model, defs)
}

func NewOracleWithClient(client ChatCompleter, model string, defs []domain.CheckDefinition) *Oracle {
	m := make(map[domain.CheckID]domain.CheckDefinition, len(defs))
	for _, d := range defs {
		m[d.ID] = d
	}
	return &Oracle{Client: client, Model: model, defs: m}
}

func (o *Oracle) Probe(ctx context.Context, id domain.CheckID) (domain.Verdict, error) {
	def, ok := o.defs[id]
	if !ok {
		def = domain.CheckDefinition{ID: id, Name: string(id)}
	}

	model := o.Model
	if model == "" {
		model = defaultModel
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(def)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := o.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		if isQuota(err) {
			return domain.Verdict{}, fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return domain.Verdict{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Verdict{}, errors.New("chat completion returned no choices")
	}
	return prompt.ParseVerdict(resp.Choices[0].Message.Content)
}

func isQuota(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	return errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests
}
