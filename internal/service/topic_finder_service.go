package service

import (
	"strings"
	"unicode"
)

// Thresholds for the topic heuristics. Headings and list items outside these
// bounds are almost always navigation chrome or full sentences, not topics.
const (
	minHeadingLen  = 6
	maxHeadingLen  = 99
	minListItemLen = 11
	maxListItemLen = 199
	minLineLen     = 11
	maxLineLen     = 149
	maxLineWords   = 15

	maxTopics   = 15
	maxConcepts = 20

	minQueryLen = 6
)

// TopicSet holds the search-worthy phrases derived from a study guide: topics
// from headings and heading-like lines, concepts from list items.
type TopicSet struct {
	Topics   []string
	Concepts []string
}

// TopicFinderService derives search-worthy phrases from extracted page text.
type TopicFinderService interface {
	// DeriveTopics returns deduplicated phrases in first-seen order, truncated
	// to maxTopics/maxConcepts. The structured content is optional.
	DeriveTopics(text string, structured *ExtractedContent) TopicSet
	// TopicsToQueries strips punctuation, collapses whitespace and discards
	// queries shorter than minQueryLen characters.
	TopicsToQueries(topics []string) []string
}

type topicFinderService struct{}

func NewTopicFinderService() TopicFinderService {
	return &topicFinderService{}
}

func (s *topicFinderService) DeriveTopics(text string, structured *ExtractedContent) TopicSet {
	var set TopicSet
	seenTopics := make(map[string]bool)
	seenConcepts := make(map[string]bool)

	addTopic := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || seenTopics[candidate] || len(set.Topics) >= maxTopics {
			return
		}
		seenTopics[candidate] = true
		set.Topics = append(set.Topics, candidate)
	}

	if structured != nil {
		for _, h := range structured.Headings {
			if n := len(strings.TrimSpace(h)); n >= minHeadingLen && n <= maxHeadingLen {
				addTopic(h)
			}
		}
		for _, li := range structured.ListItems {
			li = strings.TrimSpace(li)
			n := len(li)
			if n < minListItemLen || n > maxListItemLen || seenConcepts[li] || len(set.Concepts) >= maxConcepts {
				continue
			}
			seenConcepts[li] = true
			set.Concepts = append(set.Concepts, li)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if looksLikeHeading(line) {
			addTopic(line)
		}
	}

	return set
}

// looksLikeHeading detects free-text lines that read like section titles: a
// capitalized start, no trailing sentence punctuation, and a bounded size.
func looksLikeHeading(line string) bool {
	line = strings.TrimSpace(line)
	if len(line) < minLineLen || len(line) > maxLineLen {
		return false
	}

	runes := []rune(line)
	if !unicode.IsUpper(runes[0]) {
		return false
	}

	switch runes[len(runes)-1] {
	case '.', '!', '?', ',', ';', ':':
		return false
	}

	return len(strings.Fields(line)) < maxLineWords
}

func (s *topicFinderService) TopicsToQueries(topics []string) []string {
	queries := make([]string, 0, len(topics))
	for _, topic := range topics {
		var b strings.Builder
		for _, r := range topic {
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
				b.WriteRune(r)
			}
		}
		query := strings.Join(strings.Fields(b.String()), " ")
		if len(query) >= minQueryLen {
			queries = append(queries, query)
		}
	}
	return queries
}
