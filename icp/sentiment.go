package icp

import "strings"

// Sentiment is the best-effort tone of an engagement snippet. It is an
// enrichment only and never feeds into scoring.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// String returns the string representation of the sentiment
func (s Sentiment) String() string {
	return string(s)
}

// Valid checks if the sentiment is valid
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	default:
		return false
	}
}

var positiveWords = map[string]struct{}{
	"great": {}, "love": {}, "loved": {}, "awesome": {}, "amazing": {},
	"excellent": {}, "insightful": {}, "helpful": {}, "congrats": {},
	"congratulations": {}, "thanks": {}, "thank": {}, "agree": {},
	"agreed": {}, "brilliant": {}, "excited": {}, "exciting": {},
	"useful": {}, "valuable": {}, "interesting": {}, "inspiring": {},
	"perfect": {}, "fantastic": {}, "impressive": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "hate": {}, "terrible": {}, "awful": {}, "wrong": {},
	"disagree": {}, "scam": {}, "spam": {}, "overrated": {},
	"misleading": {}, "useless": {}, "worst": {}, "horrible": {},
	"disappointing": {}, "disappointed": {}, "nonsense": {},
}

// ClassifySentiment tags a comment snippet as positive, negative or
// neutral using a small word lexicon. It is deliberately crude; ties and
// empty input come back neutral.
func ClassifySentiment(text string) Sentiment {
	score := 0
	for _, word := range splitWords(text) {
		if _, ok := positiveWords[word]; ok {
			score++
		}
		if _, ok := negativeWords[word]; ok {
			score--
		}
	}
	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func splitWords(text string) []string {
	return strings.Fields(normalize(text))
}
