package news

import "time"

// SentimentSummary counts items per sentiment category. The three known
// categories are always present (zero-filled); items with a label outside
// the backend's enum are counted separately in Unknown rather than silently
// dropped or guessed into a bucket.
type SentimentSummary struct {
	Positive int
	Negative int
	Neutral  int
	Unknown  int
}

// SummarizeSentiment tallies the sentiment distribution of a news set.
func SummarizeSentiment(items []Item) SentimentSummary {
	var sum SentimentSummary
	for _, it := range items {
		switch it.Sentiment {
		case SentimentPositive:
			sum.Positive++
		case SentimentNegative:
			sum.Negative++
		case SentimentNeutral:
			sum.Neutral++
		default:
			sum.Unknown++
		}
	}
	return sum
}

// TrendPoint is the news volume for one calendar day.
type TrendPoint struct {
	Date  string
	Count int
}

// publishedAtFormats are tried in order when parsing article timestamps.
var publishedAtFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// TrendByDay buckets items by their published calendar day in loc (nil
// means the viewer's local zone). Bucket order is the order each day is
// first seen while scanning the input, not chronological order: downstream
// charting trusts input order, so this is a contract. Items whose timestamp
// cannot be parsed are bucketed under the raw string rather than dropped.
func TrendByDay(items []Item, loc *time.Location) []TrendPoint {
	if loc == nil {
		loc = time.Local
	}

	index := make(map[string]int)
	var trend []TrendPoint
	for _, it := range items {
		day := localDay(it.PublishedAt, loc)
		if i, ok := index[day]; ok {
			trend[i].Count++
			continue
		}
		index[day] = len(trend)
		trend = append(trend, TrendPoint{Date: day, Count: 1})
	}
	return trend
}

func localDay(publishedAt string, loc *time.Location) string {
	for _, layout := range publishedAtFormats {
		if t, err := time.Parse(layout, publishedAt); err == nil {
			return t.In(loc).Format("2006-01-02")
		}
	}
	return publishedAt
}
