// Package openai binds the reasoning-service surface to the official
// OpenAI Go SDK using the chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	modelpkg "github.com/emberfall/gbagent/pkg/model"
)

var (
	_ modelpkg.Provider = (*OpenAIProvider)(nil)
	_ modelpkg.Model    = (*OpenAIModel)(nil)
)

// OpenAIProvider wires OpenAI-backed model implementations into the factory.
type OpenAIProvider struct {
	Options []option.RequestOption
}

// NewProvider builds an OpenAIProvider with extra client options appended
// after the API key and base URL derived from the model config.
func NewProvider(opts ...option.RequestOption) *OpenAIProvider {
	return &OpenAIProvider{Options: opts}
}

// Name advertises the provider identifier used by the factory.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// NewModel materializes an OpenAIModel configured according to cfg.
func (p *OpenAIProvider) NewModel(ctx context.Context, cfg modelpkg.ModelConfig) (modelpkg.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		return nil, errors.New("openai model name is required")
	}

	opts := make([]option.RequestOption, 0, len(p.Options)+2)
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	opts = append(opts, p.Options...)

	return &OpenAIModel{
		client:      openai.NewClient(opts...),
		model:       modelName,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// OpenAIModel is a concrete model backed by the chat completions endpoint.
type OpenAIModel struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// Generate performs one blocking chat completion call and converts the first
// choice back into the provider-neutral message shape.
func (m *OpenAIModel) Generate(ctx context.Context, req modelpkg.Request) (modelpkg.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.model),
		Messages: toOpenAIMessages(req),
	}
	if m.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(m.maxTokens))
	}
	if m.temperature >= 0 {
		params.Temperature = openai.Float(m.temperature)
	}
	for _, spec := range req.Tools {
		schema, err := toFunctionParameters(spec.Schema)
		if err != nil {
			return modelpkg.Message{}, fmt.Errorf("tool %s schema: %w", spec.Name, err)
		}
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  schema,
			},
		})
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return modelpkg.Message{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return modelpkg.Message{}, errors.New("openai response had no choices")
	}

	choice := resp.Choices[0].Message
	msg := modelpkg.Message{Role: modelpkg.RoleAssistant}
	if choice.Content != "" {
		msg.Parts = append(msg.Parts, modelpkg.TextPart(choice.Content))
	}
	for _, call := range choice.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, modelpkg.ToolCall{
			ID:      call.ID,
			Name:    call.Function.Name,
			RawArgs: json.RawMessage(call.Function.Arguments),
		})
	}
	return msg, nil
}

func toOpenAIMessages(req modelpkg.Request) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		out = append(out, openai.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		switch strings.ToLower(strings.TrimSpace(msg.Role)) {
		case modelpkg.RoleSystem:
			if text := msg.Text(); text != "" {
				out = append(out, openai.SystemMessage(text))
			}
		case modelpkg.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Text()))
		default:
			out = append(out, openai.UserMessage(toContentParts(msg.Parts)))
		}
	}
	return out
}

func toContentParts(parts []modelpkg.Part) []openai.ChatCompletionContentPartUnionParam {
	out := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))
	for _, part := range parts {
		switch part.Kind {
		case modelpkg.PartText:
			out = append(out, openai.TextContentPart(part.Text))
		case modelpkg.PartImage:
			out = append(out, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: part.ImageURL,
			}))
		}
	}
	if len(out) == 0 {
		out = append(out, openai.TextContentPart(""))
	}
	return out
}

// toFunctionParameters round-trips an arbitrary schema value into the map
// shape the SDK expects.
func toFunctionParameters(schema any) (shared.FunctionParameters, error) {
	if schema == nil {
		return nil, nil
	}
	if m, ok := schema.(map[string]any); ok {
		return shared.FunctionParameters(m), nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return shared.FunctionParameters(m), nil
}
