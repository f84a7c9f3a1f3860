package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vhducng/certprep/internal/errs"
	"github.com/vhducng/certprep/internal/model"
)

// fakeCompletionService replies with canned text per question kind, keyed on
// the prompt's phrasing.
type fakeCompletionService struct {
	singleReply string
	multiReply  string
	err         error

	mu      sync.Mutex
	prompts []string
}

func (f *fakeCompletionService) GenerateCompletion(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if strings.Contains(prompt, "multi-select") {
		return f.multiReply, nil
	}
	return f.singleReply, nil
}

// fakeExtractorService serves canned text per URL.
type fakeExtractorService struct {
	texts      map[string]string
	errs       map[string]error
	structured *ExtractedContent
}

func (f *fakeExtractorService) ExtractText(_ context.Context, pageURL string) (string, error) {
	if err, ok := f.errs[pageURL]; ok {
		return "", err
	}
	text, ok := f.texts[pageURL]
	if !ok {
		return "", fmt.Errorf("%w: unexpected url %s", errs.ErrFetch, pageURL)
	}
	return text, nil
}

func (f *fakeExtractorService) ExtractStructured(_ context.Context, pageURL string) (*ExtractedContent, error) {
	if f.structured == nil {
		return nil, fmt.Errorf("%w: no structured content", errs.ErrEmptyContent)
	}
	return f.structured, nil
}

// fakeSearchService returns fixed related-content results.
type fakeSearchService struct {
	enabled bool
	results []SearchResult
	err     error
}

func (f *fakeSearchService) Enabled() bool { return f.enabled }

func (f *fakeSearchService) Search(_ context.Context, _ string, _ int) ([]SearchResult, error) {
	if !f.enabled {
		return nil, errs.ErrSearchUnavailable
	}
	return f.results, f.err
}

func (f *fakeSearchService) FindStudyGuide(ctx context.Context, cert string) ([]SearchResult, error) {
	return f.Search(ctx, cert, 5)
}

func (f *fakeSearchService) SearchRelated(ctx context.Context, _ []string, _ int) ([]SearchResult, error) {
	if !f.enabled {
		return nil, errs.ErrSearchUnavailable
	}
	return f.results, f.err
}

// fakeSynthesizerService returns a fixed question list.
type fakeSynthesizerService struct {
	questions []model.Question
	err       error
	gotDocs   []SupplementaryDoc
	gotCount  int
}

func (f *fakeSynthesizerService) Synthesize(_ context.Context, _ string, docs []SupplementaryDoc, count int) ([]model.Question, error) {
	f.gotDocs = docs
	f.gotCount = count
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Question, len(f.questions))
	copy(out, f.questions)
	return out, nil
}

// fakeTestRepository is an in-memory TestRepository.
type fakeTestRepository struct {
	mu     sync.Mutex
	tests  map[string]*model.PracticeTest
	failOn error
}

func newFakeTestRepository() *fakeTestRepository {
	return &fakeTestRepository{tests: make(map[string]*model.PracticeTest)}
}

func (r *fakeTestRepository) Save(test *model.PracticeTest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn != nil {
		return r.failOn
	}
	stored := *test
	r.tests[test.ID] = &stored
	return nil
}

func (r *fakeTestRepository) FindByID(id string) (*model.PracticeTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	test, ok := r.tests[id]
	if !ok {
		return nil, fmt.Errorf("test %s: %w", id, errs.ErrNotFound)
	}
	loaded := *test
	return &loaded, nil
}

func (r *fakeTestRepository) FindAll() ([]model.PracticeTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.PracticeTest, 0, len(r.tests))
	for _, test := range r.tests {
		out = append(out, *test)
	}
	return out, nil
}

// fakeSessionRepository is an in-memory SessionRepository.
type fakeSessionRepository struct {
	mu       sync.Mutex
	sessions []model.SubmissionSession
}

func (r *fakeSessionRepository) Create(session *model.SubmissionSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.SessionKey == session.SessionKey {
			return fmt.Errorf("duplicate session key %s", session.SessionKey)
		}
	}
	r.sessions = append(r.sessions, *session)
	return nil
}

func (r *fakeSessionRepository) FindByTestID(testID string) ([]model.SubmissionSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SubmissionSession
	for _, session := range r.sessions {
		if session.TestID == testID {
			out = append(out, session)
		}
	}
	return out, nil
}
