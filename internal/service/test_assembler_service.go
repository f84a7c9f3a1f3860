package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vhducng/certprep/internal/model"
	"github.com/vhducng/certprep/internal/repository"
)

// defaultQuestionCount is used when a generation request omits the count.
const defaultQuestionCount = 40

// maxFullTextFetches bounds how many top related results get their full text
// fetched during enrichment; the rest stay snippet-only.
const maxFullTextFetches = 3

// maxSupplementaryChars caps the text taken from each enrichment fetch so the
// synthesizer corpus stays dominated by the primary study guide.
const maxSupplementaryChars = 2000

// TestAssemblerService orchestrates the full generation pipeline: extract the
// study guide, optionally blend in related content found via search, invoke
// the synthesizer and persist the finished test. Nothing is persisted when any
// stage fails.
type TestAssemblerService interface {
	Assemble(ctx context.Context, studyGuideURL, certificationName string, questionCount int) (*model.PracticeTest, error)
}

type testAssemblerService struct {
	extractor   ContentExtractorService
	topicFinder TopicFinderService
	search      SearchService
	synthesizer QuestionSynthesizerService
	testRepo    repository.TestRepository
}

func NewTestAssemblerService(
	extractor ContentExtractorService,
	topicFinder TopicFinderService,
	search SearchService,
	synthesizer QuestionSynthesizerService,
	testRepo repository.TestRepository,
) TestAssemblerService {
	return &testAssemblerService{
		extractor:   extractor,
		topicFinder: topicFinder,
		search:      search,
		synthesizer: synthesizer,
		testRepo:    testRepo,
	}
}

func (s *testAssemblerService) Assemble(ctx context.Context, studyGuideURL, certificationName string, questionCount int) (*model.PracticeTest, error) {
	if questionCount <= 0 {
		questionCount = defaultQuestionCount
	}

	primaryText, err := s.extractor.ExtractText(ctx, studyGuideURL)
	if err != nil {
		return nil, err
	}

	var docs []SupplementaryDoc
	if s.search.Enabled() {
		docs = s.gatherRelatedContent(ctx, studyGuideURL, primaryText)
	}

	questions, err := s.synthesizer.Synthesize(ctx, primaryText, docs, questionCount)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	test := &model.PracticeTest{
		ID:                newTestID(now),
		CertificationName: certificationName,
		SourceURL:         studyGuideURL,
		GeneratedAt:       now,
		QuestionCount:     len(questions),
	}
	for i := range questions {
		questions[i].TestID = test.ID
	}
	test.Questions = questions

	if err := s.testRepo.Save(test); err != nil {
		return nil, err
	}

	log.Info().
		Str("test_id", test.ID).
		Str("certification", certificationName).
		Int("questions", test.QuestionCount).
		Int("supplementary_docs", len(docs)).
		Msg("Practice test assembled")
	return test, nil
}

// gatherRelatedContent runs the optional search-augmented path: derive topics
// from the study guide, search per topic, then fetch full text for the top
// results. Every failure in here degrades rather than aborts; the primary
// study guide alone is always an acceptable corpus.
func (s *testAssemblerService) gatherRelatedContent(ctx context.Context, studyGuideURL, primaryText string) []SupplementaryDoc {
	structured, err := s.extractor.ExtractStructured(ctx, studyGuideURL)
	if err != nil {
		log.Warn().Err(err).Msg("Structured extraction failed, deriving topics from plain text only")
		structured = nil
	}

	topicSet := s.topicFinder.DeriveTopics(primaryText, structured)
	queries := s.topicFinder.TopicsToQueries(topicSet.Topics)
	if len(queries) == 0 {
		return nil
	}

	results, err := s.search.SearchRelated(ctx, queries, 3)
	if err != nil {
		log.Warn().Err(err).Msg("Related-content search failed, continuing with primary content only")
		return nil
	}

	return s.enrichResults(ctx, results)
}

// fetchOutcome carries one enrichment fetch back from its goroutine.
type fetchOutcome struct {
	doc SupplementaryDoc
	err error
}

// enrichResults fetches full text for the top results concurrently. Results
// are joined in completion order, not submission order; a failed fetch keeps
// the snippet-only record instead of dropping the result.
func (s *testAssemblerService) enrichResults(ctx context.Context, results []SearchResult) []SupplementaryDoc {
	docs := make([]SupplementaryDoc, 0, len(results))

	fullFetches := len(results)
	if fullFetches > maxFullTextFetches {
		fullFetches = maxFullTextFetches
	}

	outcomes := make(chan fetchOutcome, fullFetches)
	for _, result := range results[:fullFetches] {
		go func(r SearchResult) {
			text, err := s.extractor.ExtractText(ctx, r.URL)
			if err != nil {
				outcomes <- fetchOutcome{doc: SupplementaryDoc{Title: r.Title, URL: r.URL, Content: r.Snippet}, err: err}
				return
			}
			if runes := []rune(text); len(runes) > maxSupplementaryChars {
				text = string(runes[:maxSupplementaryChars])
			}
			outcomes <- fetchOutcome{doc: SupplementaryDoc{Title: r.Title, URL: r.URL, Content: text}}
		}(result)
	}

	for i := 0; i < fullFetches; i++ {
		outcome := <-outcomes
		if outcome.err != nil {
			log.Warn().Err(outcome.err).Str("url", outcome.doc.URL).Msg("Enrichment fetch failed, keeping snippet-only record")
		}
		docs = append(docs, outcome.doc)
	}

	// Remaining results ride along as snippets.
	for _, result := range results[fullFetches:] {
		docs = append(docs, SupplementaryDoc{Title: result.Title, URL: result.URL, Content: result.Snippet})
	}
	return docs
}

// newTestID builds a unique test id from the generation time plus a random
// suffix, so ids stay unique even for tests generated in the same millisecond.
func newTestID(now time.Time) string {
	return fmt.Sprintf("test-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
