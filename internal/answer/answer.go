// Package answer drafts FAQ answers in the voice of a local business.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FranksOps/rankrocket/internal/llm"
)

// DefaultNiche is used when a business has no niche configured.
const DefaultNiche = "HVAC"

// Business identifies who is answering.
type Business struct {
	Name  string
	Niche string
	City  string
	State string
}

// Drafter writes an answer for one question.
type Drafter interface {
	Draft(ctx context.Context, question string, biz Business) (string, error)
}

// LLMDrafter drafts answers with a chat model.
type LLMDrafter struct {
	llm    llm.Completer
	logger *slog.Logger
}

var _ Drafter = (*LLMDrafter)(nil)

// NewDrafter returns a Drafter backed by c.
func NewDrafter(c llm.Completer, logger *slog.Logger) *LLMDrafter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMDrafter{llm: c, logger: logger}
}

// Prompt builds the chat prompt for a question.
func Prompt(question string, biz Business) llm.Prompt {
	niche := strings.TrimSpace(biz.Niche)
	if niche == "" {
		niche = DefaultNiche
	}
	return llm.Prompt{
		Purpose: "faq_answer",
		System:  fmt.Sprintf("You are a helpful, local %s expert providing SEO-optimized, conversational answers.", niche),
		User: fmt.Sprintf("Answer the following question as if you are %s %s contractor named %s, based in %s, %s:\n\nQ: %s\n\nA:",
			article(niche), niche, biz.Name, biz.City, biz.State, question),
	}
}

// Draft asks the model for an answer. An empty answer is an error.
func (d *LLMDrafter) Draft(ctx context.Context, question string, biz Business) (string, error) {
	d.logger.Info("generating answer", "question", question)

	out, err := d.llm.Complete(ctx, Prompt(question, biz))
	if err != nil {
		return "", fmt.Errorf("draft answer for %q: %w", question, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("draft answer for %q: %w", question, errEmptyAnswer)
	}
	return out, nil
}

var errEmptyAnswer = errors.New("model returned an empty answer")

// article picks "a" or "an" for the niche word that follows it. Acronyms such
// as HVAC are read letter by letter, so their first letter's name decides.
func article(word string) string {
	if word == "" {
		return "a"
	}
	first := strings.ToLower(word[:1])
	if isAcronym(word) {
		if strings.Contains("aefhilmnorsx", first) {
			return "an"
		}
		return "a"
	}
	if strings.Contains("aeiou", first) {
		return "an"
	}
	return "a"
}

func isAcronym(word string) bool {
	head := strings.Fields(word)[0]
	if len(head) < 2 {
		return false
	}
	return strings.ToUpper(head) == head
}
