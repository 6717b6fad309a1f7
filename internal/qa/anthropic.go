package qa

import (
	"context"
	"encoding/json"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const extractiveSystemPrompt = `You are an extractive question-answering engine.
Answer the question using only text found in the provided context. Respond
with a single JSON object of the form {"answer": "<short answer extracted
from the context>", "confidence": <number between 0 and 1>} and nothing
else. If the context does not contain the answer, use an empty string and
confidence 0.`

const answerMaxTokens = 512

// anthropicModel implements Model against the Anthropic messages API
type anthropicModel struct {
	client sdk.Client
	model  string
}

// NewAnthropicModel creates the extractive-QA capability backed by an
// Anthropic model
func NewAnthropicModel(apiKey, model string) Model {
	return &anthropicModel{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (m *anthropicModel) Answer(ctx context.Context, question, contextText string) (*Answer, error) {
	prompt := "Context:\n" + contextText + "\n\nQuestion: " + question

	msg, err := m.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(m.model),
		MaxTokens: answerMaxTokens,
		System: []sdk.TextBlockParam{
			{Text: extractiveSystemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return parseAnswer(text.String()), nil
}

// parseAnswer decodes the model's JSON reply. A reply that is not the
// requested JSON object falls back to the raw text; a missing confidence
// defaults to 0.
func parseAnswer(raw string) *Answer {
	trimmed := strings.TrimSpace(raw)

	var parsed struct {
		Answer     string   `json:"answer"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return &Answer{Text: trimmed}
	}

	answer := &Answer{Text: parsed.Answer}
	if parsed.Confidence != nil {
		answer.Confidence = *parsed.Confidence
	}
	return answer
}
