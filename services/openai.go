package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tadeyemo32/strategai-backend/logger"
)

// ─── OpenAI-compatible wire format ────────────────────────────────────────────
// Docs: https://platform.openai.com/docs/api-reference/responses
//       https://platform.openai.com/docs/api-reference/chat

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// responsesRequest is the Responses API body ("input" array).
type responsesRequest struct {
	Model string          `json:"model"`
	Input []openAIMessage `json:"input"`
}

// chatRequest is the Chat Completions body ("messages" array).
type chatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

func buildModelRequest(dialect, model, sysPrompt, userPrompt string) ([]byte, error) {
	msgs := []openAIMessage{
		{Role: "system", Content: sysPrompt},
		{Role: "user", Content: userPrompt},
	}
	switch dialect {
	case "", "responses":
		return json.Marshal(responsesRequest{Model: model, Input: msgs})
	case "chat":
		return json.Marshal(chatRequest{Model: model, Messages: msgs})
	default:
		return nil, fmt.Errorf("unknown model API dialect %q", dialect)
	}
}

// modelEnvelope holds the top-level keys of a response body. Each strategy
// decodes only the key it reads, so one oddly typed field cannot hide text
// that sits somewhere else.
type modelEnvelope map[string]json.RawMessage

// decodeKey reports whether key is present and decodes into v.
func (env modelEnvelope) decodeKey(key string, v any) bool {
	raw, ok := env[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.Log.Debugf("[LLM] Ignoring %s: %v", key, err)
		return false
	}
	return true
}

// contentPart is one element of an array-valued content field.
type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// partsText returns the first non-blank text in raw, which may be a plain
// string or an array of parts.
func partsText(raw json.RawMessage) string {
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	var parts []contentPart
	if json.Unmarshal(raw, &parts) != nil {
		return ""
	}
	for _, p := range parts {
		if strings.TrimSpace(p.Text) != "" {
			return p.Text
		}
	}
	return ""
}

type textStrategy struct {
	name    string
	extract func(env modelEnvelope) string
}

// textStrategies are tried in order; the first non-empty result wins.
var textStrategies = []textStrategy{
	{
		name: "output_text",
		extract: func(env modelEnvelope) string {
			var text string
			env.decodeKey("output_text", &text)
			return text
		},
	},
	{
		name: "output.content",
		extract: func(env modelEnvelope) string {
			var output []struct {
				Content json.RawMessage `json:"content"`
			}
			if !env.decodeKey("output", &output) {
				return ""
			}
			// reasoning items come first and carry no content
			for _, item := range output {
				if text := partsText(item.Content); strings.TrimSpace(text) != "" {
					return text
				}
			}
			return ""
		},
	},
	{
		name: "choices.message",
		extract: func(env modelEnvelope) string {
			var choices []struct {
				Message struct {
					Content json.RawMessage `json:"content"`
				} `json:"message"`
			}
			if !env.decodeKey("choices", &choices) || len(choices) == 0 {
				return ""
			}
			return partsText(choices[0].Message.Content)
		},
	},
}

// ExtractModelText pulls the generated text out of a raw response body.
// Unreadable bodies and unknown shapes give "".
func ExtractModelText(raw []byte) string {
	var env modelEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Log.Warnf("[LLM] Response envelope is not a JSON object: %v", err)
		return ""
	}
	for _, s := range textStrategies {
		if text := strings.TrimSpace(s.extract(env)); text != "" {
			logger.Log.Debugf("[LLM] Text found via %s", s.name)
			return text
		}
	}
	return ""
}
