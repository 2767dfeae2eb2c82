package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	modelpkg "github.com/emberfall/gbagent/pkg/model"
)

// Ensure AnthropicModel implements the Model interface.
var _ modelpkg.Model = (*AnthropicModel)(nil)

// AnthropicModel is a concrete model backed by Anthropic's Messages API.
type AnthropicModel struct {
	client  *http.Client
	baseURL string
	model   string
	headers map[string]string

	maxTokens   int
	temperature float64
}

// Generate performs a blocking Anthropic Messages API call.
func (m *AnthropicModel) Generate(ctx context.Context, req modelpkg.Request) (modelpkg.Message, error) {
	payload := m.buildPayload(req)
	resp, err := m.doRequest(ctx, payload)
	if err != nil {
		return modelpkg.Message{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return modelpkg.Message{}, readAPIError(resp)
	}

	var msgResp MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return modelpkg.Message{}, fmt.Errorf("decode anthropic response: %w", err)
	}

	return convertResponse(msgResp), nil
}

func (m *AnthropicModel) buildPayload(req modelpkg.Request) MessageRequest {
	payload := MessageRequest{
		Model:     m.model,
		Messages:  toAnthropicMessages(req.Messages),
		System:    req.System,
		MaxTokens: m.maxTokens,
	}
	if payload.MaxTokens <= 0 {
		payload.MaxTokens = defaultMaxTokens
	}
	if m.temperature >= 0 {
		t := m.temperature
		payload.Temperature = &t
	}

	for _, spec := range req.Tools {
		payload.Tools = append(payload.Tools, ToolParam{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.Schema,
		})
	}
	if len(payload.Tools) > 0 {
		payload.ToolChoice = &ToolChoice{Type: "auto"}
	}

	return payload
}

func (m *AnthropicModel) doRequest(ctx context.Context, payload MessageRequest) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode anthropic request: %w", err)
	}

	endpoint := m.baseURL + messagesPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("create anthropic request: %w", err)
	}

	for k, v := range m.headers {
		if v == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	return m.client.Do(req)
}

func readAPIError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic api status %d: %w", resp.StatusCode, err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return APIError{StatusCode: resp.StatusCode, Type: apiErr.Error.Type, Message: apiErr.Error.Message}
	}

	return APIError{StatusCode: resp.StatusCode, Message: string(body)}
}

func convertResponse(resp MessageResponse) modelpkg.Message {
	msg := modelpkg.Message{Role: resp.Role}
	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			msg.ToolCalls = append(msg.ToolCalls, modelpkg.ToolCall{
				ID:      block.ID,
				Name:    block.Name,
				RawArgs: block.Input,
			})
		}
	}
	if text.Len() > 0 {
		msg.Parts = append(msg.Parts, modelpkg.TextPart(text.String()))
	}
	if msg.Role == "" {
		msg.Role = modelpkg.RoleAssistant
	}
	return msg
}

func toAnthropicMessages(messages []modelpkg.Message) []MessageParam {
	out := make([]MessageParam, 0, len(messages))
	for _, msg := range messages {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if role == modelpkg.RoleSystem {
			// System text travels in the request's top-level field.
			continue
		}

		blocks := make([]ContentBlock, 0, len(msg.Parts)+len(msg.ToolCalls))
		for _, part := range msg.Parts {
			switch part.Kind {
			case modelpkg.PartText:
				if part.Text != "" {
					blocks = append(blocks, ContentBlock{Type: "text", Text: part.Text})
				}
			case modelpkg.PartImage:
				if src, ok := imageSourceFromDataURI(part.ImageURL); ok {
					blocks = append(blocks, ContentBlock{Type: "image", Source: &src})
				}
			}
		}
		for _, call := range msg.ToolCalls {
			blocks = append(blocks, ContentBlock{
				Type:  "tool_use",
				ID:    call.ID,
				Name:  call.Name,
				Input: call.RawArgs,
			})
		}
		if len(blocks) == 0 {
			blocks = append(blocks, ContentBlock{Type: "text", Text: ""})
		}

		out = append(out, MessageParam{Role: normalizeRole(role), Content: blocks})
	}

	if len(out) == 0 {
		out = append(out, MessageParam{
			Role:    "user",
			Content: []ContentBlock{{Type: "text", Text: ""}},
		})
	}
	return out
}

// imageSourceFromDataURI splits a "data:<media>;base64,<data>" URI into the
// base64 source block Anthropic expects.
func imageSourceFromDataURI(uri string) (ImageSource, bool) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ImageSource{}, false
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok || data == "" {
		return ImageSource{}, false
	}
	mediaType, _ := strings.CutSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = "image/png"
	}
	return ImageSource{Type: "base64", MediaType: mediaType, Data: data}, true
}

func normalizeRole(role string) string {
	switch role {
	case "assistant", "model":
		return "assistant"
	default:
		return "user"
	}
}
