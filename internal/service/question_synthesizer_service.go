package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vhducng/certprep/internal/errs"
	"github.com/vhducng/certprep/internal/model"
)

// corpusCharBudget caps the combined source text sent to the completion
// provider, to respect its input limits.
const corpusCharBudget = 15000

// SupplementaryDoc is one related-content document blended into the corpus.
// Content may be the full page text or just the search snippet when the fetch
// for that result failed.
type SupplementaryDoc struct {
	Title   string
	URL     string
	Content string
}

// QuestionSynthesizerService turns source text into validated exam questions.
type QuestionSynthesizerService interface {
	Synthesize(ctx context.Context, primaryText string, docs []SupplementaryDoc, desiredCount int) ([]model.Question, error)
}

type questionSynthesizerService struct {
	completion CompletionService
	// shuffle must be safe for concurrent use; the service is shared across
	// requests. The top-level math/rand functions lock internally.
	shuffle func(n int, swap func(i, j int))
}

func NewQuestionSynthesizerService(completion CompletionService) QuestionSynthesizerService {
	return &questionSynthesizerService{
		completion: completion,
		shuffle:    rand.Shuffle,
	}
}

// rawQuestion is the loosely typed record decoded from the model's reply.
// Answers arrive as option indices and are resolved to option strings before a
// canonical Question is built.
type rawQuestion struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectAnswer  *int     `json:"correctAnswer"`
	CorrectAnswers []int    `json:"correctAnswers"`
	Explanation    string   `json:"explanation"`
}

func (s *questionSynthesizerService) Synthesize(ctx context.Context, primaryText string, docs []SupplementaryDoc, desiredCount int) ([]model.Question, error) {
	if desiredCount <= 0 {
		return nil, fmt.Errorf("%w: desired question count must be positive, got %d", errs.ErrValidation, desiredCount)
	}

	corpus := buildCorpus(primaryText, docs)

	// 60/40 split between single- and multi-answer questions. The floor lands
	// on the multi side, so small counts degrade to single-answer only.
	multiCount := desiredCount * 4 / 10
	singleCount := desiredCount - multiCount

	questions, err := s.generateBatch(ctx, model.QuestionKindSingle, singleCount, corpus)
	if err != nil {
		return nil, err
	}

	multi, err := s.generateBatch(ctx, model.QuestionKindMulti, multiCount, corpus)
	if err != nil {
		return nil, err
	}
	questions = append(questions, multi...)

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no generated question survived validation", errs.ErrValidation)
	}

	// Interleave the two kinds with a uniform shuffle; order is fixed from
	// here on and becomes the test's presentation order.
	s.shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	for i := range questions {
		questions[i].OrderInTest = i
	}

	log.Info().Int("requested", desiredCount).Int("generated", len(questions)).Msg("Question synthesis completed")
	return questions, nil
}

// generateBatch makes the single completion call for one question kind and
// decodes, resolves and validates the reply. Records that violate the
// Question invariants are dropped and the rest kept; the batch only fails when
// nothing parseable comes back at all.
func (s *questionSynthesizerService) generateBatch(ctx context.Context, kind string, count int, corpus string) ([]model.Question, error) {
	if count == 0 {
		return nil, nil
	}

	reply, err := s.completion.GenerateCompletion(ctx, buildQuestionPrompt(kind, count, corpus))
	if err != nil {
		return nil, fmt.Errorf("question generation (%s) failed: %w", kind, err)
	}

	arrayJSON := extractJSONArray(reply)
	if arrayJSON == "" {
		return nil, fmt.Errorf("%w: reply contains no JSON array", errs.ErrMalformedGeneration)
	}

	var raws []rawQuestion
	if err := json.Unmarshal([]byte(arrayJSON), &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformedGeneration, err)
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("%w: reply contains an empty question array", errs.ErrMalformedGeneration)
	}

	questions := make([]model.Question, 0, len(raws))
	for i, raw := range raws {
		question, err := resolveQuestion(raw, kind)
		if err != nil {
			log.Warn().Err(err).Int("record", i).Str("kind", kind).Msg("Dropping generated question that failed validation")
			continue
		}
		questions = append(questions, *question)
	}
	return questions, nil
}

// resolveQuestion turns a raw record into a canonical Question: index-based
// answer references become option strings and the invariants are enforced.
func resolveQuestion(raw rawQuestion, kind string) (*model.Question, error) {
	var correct []string
	switch kind {
	case model.QuestionKindSingle:
		if raw.CorrectAnswer == nil {
			return nil, fmt.Errorf("%w: missing correctAnswer index", errs.ErrValidation)
		}
		answer, err := optionAt(raw.Options, *raw.CorrectAnswer)
		if err != nil {
			return nil, err
		}
		correct = []string{answer}
	case model.QuestionKindMulti:
		seen := make(map[int]bool, len(raw.CorrectAnswers))
		for _, idx := range raw.CorrectAnswers {
			if seen[idx] {
				continue
			}
			seen[idx] = true
			answer, err := optionAt(raw.Options, idx)
			if err != nil {
				return nil, err
			}
			correct = append(correct, answer)
		}
	default:
		return nil, fmt.Errorf("%w: unknown question kind %q", errs.ErrValidation, kind)
	}

	question := &model.Question{
		ID:             uuid.NewString(),
		Kind:           kind,
		Prompt:         strings.TrimSpace(raw.Question),
		Options:        model.StringList(raw.Options),
		CorrectAnswers: model.StringList(correct),
		Explanation:    strings.TrimSpace(raw.Explanation),
	}
	if err := question.Validate(); err != nil {
		return nil, err
	}
	return question, nil
}

func optionAt(options []string, idx int) (string, error) {
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("%w: answer index %d out of range for %d options", errs.ErrValidation, idx, len(options))
	}
	return options[idx], nil
}

// buildCorpus blends the primary text with labeled supplementary snippets and
// truncates the result to the character budget.
func buildCorpus(primaryText string, docs []SupplementaryDoc) string {
	var b strings.Builder
	b.WriteString(primaryText)
	for _, doc := range docs {
		if strings.TrimSpace(doc.Content) == "" {
			continue
		}
		b.WriteString("\n\n--- Supplementary source: ")
		b.WriteString(doc.Title)
		b.WriteString(" (")
		b.WriteString(doc.URL)
		b.WriteString(") ---\n")
		b.WriteString(doc.Content)
	}

	corpus := b.String()
	if runes := []rune(corpus); len(runes) > corpusCharBudget {
		corpus = string(runes[:corpusCharBudget])
	}
	return corpus
}

func buildQuestionPrompt(kind string, count int, corpus string) string {
	var b strings.Builder
	b.WriteString("You are an expert certification exam author. Using ONLY the study material below, write ")
	fmt.Fprintf(&b, "%d exam questions.\n\n", count)

	switch kind {
	case model.QuestionKindSingle:
		b.WriteString("Each question is single-answer multiple choice:\n")
		b.WriteString("- exactly 4 answer options\n")
		b.WriteString("- exactly 1 correct option\n")
		b.WriteString("- a short explanation of why the correct option is correct\n\n")
		b.WriteString("Respond with a single JSON array, no prose, where each element is an object with fields:\n")
		b.WriteString(`{"question": string, "options": [string, string, string, string], "correctAnswer": <0-based index into options>, "explanation": string}`)
	case model.QuestionKindMulti:
		b.WriteString("Each question is multi-select (\"choose all that apply\"):\n")
		b.WriteString("- 4 or 5 answer options\n")
		b.WriteString("- 2 or 3 correct options; never exactly one, never all of them\n")
		b.WriteString("- a short explanation of why the correct options are correct\n\n")
		b.WriteString("Respond with a single JSON array, no prose, where each element is an object with fields:\n")
		b.WriteString(`{"question": string, "options": [string, ...], "correctAnswers": [<0-based indexes into options>], "explanation": string}`)
	}

	b.WriteString("\n\nStudy material:\n---\n")
	b.WriteString(corpus)
	b.WriteString("\n---\n")
	return b.String()
}

// extractJSONArray returns the first well-formed top-level JSON array
// substring in s, or "" when none exists. The model routinely wraps its JSON
// in prose or markdown fences, so plain unmarshalling of the whole reply is
// not an option.
func extractJSONArray(s string) string {
	start := strings.IndexByte(s, '[')
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '[', '{':
				depth++
			case ']', '}':
				depth--
				if depth == 0 {
					candidate := s[start : i+1]
					if json.Valid([]byte(candidate)) {
						return candidate
					}
					// Malformed from this bracket; try the next one.
					i = len(s)
				}
			}
		}
		next := strings.IndexByte(s[start+1:], '[')
		if next < 0 {
			return ""
		}
		start = start + 1 + next
	}
	return ""
}
