// Package qa selects QA context from normalized records and adapts the
// extractive question-answering capability behind a non-failing interface.
package qa

import (
	"context"

	"go.uber.org/zap"

	"github.com/codeinsight/insight-agent/internal/domain"
)

// Fixed answer texts. The adapter never surfaces internal failures; callers
// always get a printable answer.
const (
	UnavailableAnswer  = "AI Q&A is currently unavailable."
	InsufficientAnswer = "Sorry, I don't have enough information (empty context) to answer that."
	ErrorAnswer        = "Sorry, I encountered an error trying to answer that question."
)

// Answer is the result of one extractive QA invocation
type Answer struct {
	Text       string
	Confidence float64
}

// Model is the extractive-QA capability: given a question and a bounded
// text span, return an answer and a confidence score.
type Model interface {
	Answer(ctx context.Context, question, contextText string) (*Answer, error)
}

// Adapter bounds the context handed to the model and converts every
// capability failure into a fixed answer.
type Adapter struct {
	model           Model // nil means the capability is not configured
	maxContextChars int
	log             *zap.Logger
}

// NewAdapter creates a QA adapter. model may be nil when the capability is
// unavailable; Ask then reports that instead of erroring.
func NewAdapter(model Model, maxContextChars int) *Adapter {
	return &Adapter{
		model:           model,
		maxContextChars: maxContextChars,
		log:             zap.L(),
	}
}

// Available reports whether the underlying capability is configured
func (a *Adapter) Available() bool {
	return a.model != nil
}

// Ask answers question against contextText. The context is hard-truncated
// to the configured bound from the start of the string before the model is
// invoked. All failure modes resolve to a fixed answer with confidence 0;
// no error ever propagates to the caller.
func (a *Adapter) Ask(ctx context.Context, question, contextText string) Answer {
	if a.model == nil {
		a.log.Warn("qa capability not configured")
		return Answer{Text: UnavailableAnswer}
	}

	trimmed := domain.TruncateChars(contextText, a.maxContextChars)
	if domain.IsBlank(trimmed) {
		return Answer{Text: InsufficientAnswer}
	}

	result, err := a.model.Answer(ctx, question, trimmed)
	if err != nil {
		a.log.Warn("qa model failed", zap.Error(err))
		return Answer{Text: ErrorAnswer}
	}
	return *result
}
