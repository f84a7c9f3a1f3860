package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vhducng/certprep/internal/errs"
	"github.com/vhducng/certprep/internal/model"
)

const singleBatchReply = `[
  {"question": "What is Azure?", "options": ["Cloud platform", "Database", "Language", "Editor"], "correctAnswer": 0, "explanation": "Azure is Microsoft's cloud platform."},
  {"question": "What does VM stand for?", "options": ["Virtual Machine", "Verified Module", "Vector Map", "Volume Mount"], "correctAnswer": 0, "explanation": "VM is a virtual machine."}
]`

const multiBatchReply = `[
  {"question": "Which are Azure compute services?", "options": ["Functions", "App Service", "Blob Storage", "Cosmos DB"], "correctAnswers": [0, 1], "explanation": "Functions and App Service run code."}
]`

func TestSynthesizeSplitsAndShuffles(t *testing.T) {
	completion := &fakeCompletionService{singleReply: singleBatchReply, multiReply: multiBatchReply}
	synth := NewQuestionSynthesizerService(completion)

	questions, err := synth.Synthesize(context.Background(), "some study material", nil, 5)
	require.NoError(t, err)

	// 5 requested: 3 single + 2 multi batches, fakes return 2 + 1 records.
	require.Len(t, completion.prompts, 2)
	assert.Contains(t, completion.prompts[0], "3 exam questions")
	assert.Contains(t, completion.prompts[1], "2 exam questions")

	require.Len(t, questions, 3)
	kinds := map[string]int{}
	for i, q := range questions {
		kinds[q.Kind]++
		assert.NotEmpty(t, q.ID)
		assert.Equal(t, i, q.OrderInTest)
		assert.NoError(t, q.Validate())
	}
	assert.Equal(t, 2, kinds[model.QuestionKindSingle])
	assert.Equal(t, 1, kinds[model.QuestionKindMulti])
}

func TestSynthesizeSafeForConcurrentUse(t *testing.T) {
	// One synthesizer instance is shared by all requests; concurrent calls must
	// not trip the race detector on the shuffle.
	completion := &fakeCompletionService{singleReply: singleBatchReply, multiReply: multiBatchReply}
	synth := NewQuestionSynthesizerService(completion)

	var wg sync.WaitGroup
	errCh := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := synth.Synthesize(context.Background(), "shared study material", nil, 5)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
}

func TestSynthesizeSmallCountSkipsMultiBatch(t *testing.T) {
	completion := &fakeCompletionService{singleReply: singleBatchReply, multiReply: multiBatchReply}
	synth := NewQuestionSynthesizerService(completion)

	_, err := synth.Synthesize(context.Background(), "material", nil, 2)
	require.NoError(t, err)

	// 2 requested: multi share floors to 0, so only the single batch runs.
	require.Len(t, completion.prompts, 1)
	assert.Contains(t, completion.prompts[0], "2 exam questions")
}

func TestSynthesizeResolvesIndicesToOptionStrings(t *testing.T) {
	completion := &fakeCompletionService{singleReply: singleBatchReply, multiReply: multiBatchReply}
	synth := NewQuestionSynthesizerService(completion)

	questions, err := synth.Synthesize(context.Background(), "material", nil, 5)
	require.NoError(t, err)

	for _, q := range questions {
		for _, answer := range q.CorrectAnswers {
			assert.Contains(t, []string(q.Options), answer)
		}
	}
}

func TestSynthesizeParsesArrayWrappedInProse(t *testing.T) {
	completion := &fakeCompletionService{
		singleReply: "Sure! Here are your questions:\n```json\n" + singleBatchReply + "\n```\nLet me know if you need more.",
	}
	synth := NewQuestionSynthesizerService(completion)

	questions, err := synth.Synthesize(context.Background(), "material", nil, 2)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestSynthesizeNoJSONArrayIsMalformed(t *testing.T) {
	completion := &fakeCompletionService{singleReply: "I cannot help with that."}
	synth := NewQuestionSynthesizerService(completion)

	_, err := synth.Synthesize(context.Background(), "material", nil, 2)
	assert.ErrorIs(t, err, errs.ErrMalformedGeneration)
}

func TestSynthesizeInvalidJSONIsMalformed(t *testing.T) {
	completion := &fakeCompletionService{singleReply: `[{"question": "broken"`}
	synth := NewQuestionSynthesizerService(completion)

	_, err := synth.Synthesize(context.Background(), "material", nil, 2)
	assert.ErrorIs(t, err, errs.ErrMalformedGeneration)
}

func TestSynthesizeDropsInvalidRecordsAndKeepsRest(t *testing.T) {
	// Second record marks an out-of-range answer index, third duplicates an
	// option. Both must be dropped, the first kept.
	reply := `[
	  {"question": "Good question?", "options": ["A", "B", "C", "D"], "correctAnswer": 1, "explanation": "ok"},
	  {"question": "Bad index?", "options": ["A", "B"], "correctAnswer": 7, "explanation": "bad"},
	  {"question": "Dup options?", "options": ["A", "A", "B", "C"], "correctAnswer": 0, "explanation": "bad"}
	]`
	completion := &fakeCompletionService{singleReply: reply}
	synth := NewQuestionSynthesizerService(completion)

	// Count 2 keeps the whole batch on the single-answer side.
	questions, err := synth.Synthesize(context.Background(), "material", nil, 2)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Good question?", questions[0].Prompt)
	assert.Equal(t, model.StringList{"B"}, questions[0].CorrectAnswers)
}

func TestSynthesizeAllRecordsInvalidFailsBatch(t *testing.T) {
	reply := `[{"question": "Bad?", "options": ["A", "B"], "correctAnswer": 9, "explanation": ""}]`
	completion := &fakeCompletionService{singleReply: reply}
	synth := NewQuestionSynthesizerService(completion)

	_, err := synth.Synthesize(context.Background(), "material", nil, 1)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestSynthesizeMultiNeverSingleCorrectAnswer(t *testing.T) {
	// One valid multi record plus records that resolve to a single, an
	// all-of-them and a more-than-three correct answer set.
	reply := `[
	  {"question": "Two correct?", "options": ["A", "B", "C", "D"], "correctAnswers": [0, 2], "explanation": "ok"},
	  {"question": "One correct?", "options": ["A", "B", "C", "D"], "correctAnswers": [1], "explanation": "bad"},
	  {"question": "All correct?", "options": ["A", "B", "C"], "correctAnswers": [0, 1, 2], "explanation": "bad"},
	  {"question": "Four correct?", "options": ["A", "B", "C", "D", "E", "F"], "correctAnswers": [0, 1, 2, 3], "explanation": "bad"}
	]`
	completion := &fakeCompletionService{multiReply: reply, singleReply: `[]`}
	synth := NewQuestionSynthesizerService(completion).(*questionSynthesizerService)

	questions, err := synth.generateBatch(context.Background(), model.QuestionKindMulti, 3, "material")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, model.StringList{"A", "C"}, questions[0].CorrectAnswers)
}

func TestSynthesizeCorpusTruncatedToBudget(t *testing.T) {
	completion := &fakeCompletionService{singleReply: singleBatchReply}
	synth := NewQuestionSynthesizerService(completion)

	huge := strings.Repeat("certification material ", 2000)
	_, err := synth.Synthesize(context.Background(), huge, []SupplementaryDoc{{Title: "extra", URL: "https://x", Content: huge}}, 2)
	require.NoError(t, err)

	require.Len(t, completion.prompts, 1)
	// The prompt wraps the corpus in instructions; the corpus itself must not
	// exceed the budget.
	assert.Less(t, len(completion.prompts[0]), corpusCharBudget+1000)
}

func TestBuildCorpusLabelsSupplementaryDocs(t *testing.T) {
	corpus := buildCorpus("primary text", []SupplementaryDoc{
		{Title: "Doc One", URL: "https://one.example", Content: "first snippet"},
		{Title: "Empty", URL: "https://two.example", Content: "   "},
	})

	assert.True(t, strings.HasPrefix(corpus, "primary text"))
	assert.Contains(t, corpus, "Doc One")
	assert.Contains(t, corpus, "https://one.example")
	assert.Contains(t, corpus, "first snippet")
	assert.NotContains(t, corpus, "two.example")
}

func TestExtractJSONArray(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		want  string
		found bool
	}{
		{"bare array", `[1, 2, 3]`, `[1, 2, 3]`, true},
		{"array in prose", `Here you go: [1, 2] thanks`, `[1, 2]`, true},
		{"nested objects", `x [{"a": [1]}] y`, `[{"a": [1]}]`, true},
		{"bracket inside string", `[{"a": "closing ] bracket"}]`, `[{"a": "closing ] bracket"}]`, true},
		{"no array", `just some text`, "", false},
		{"unclosed array", `[1, 2`, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractJSONArray(tc.in)
			if !tc.found {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
