package market

// Direction classifies a single bar for coloring; each bar is judged
// independently, with no running state.
type Direction int

const (
	Down Direction = iota
	Up
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// ToChronological returns a reversed copy of the history: the source
// delivers newest-first, charts want oldest-first. Pure function; applying
// it twice yields the original order.
func ToChronological(history []HistoryPoint) []HistoryPoint {
	out := make([]HistoryPoint, len(history))
	for i, p := range history {
		out[len(history)-1-i] = p
	}
	return out
}

// ClassifyBar reports Up iff the bar closed at or above its open.
func ClassifyBar(p HistoryPoint) Direction {
	if p.Close >= p.Open {
		return Up
	}
	return Down
}

// Summary holds the computed header fields for a chronological series.
type Summary struct {
	First     float64 // earliest close
	Last      float64 // latest close
	High      float64 // highest high across the series
	Low       float64 // lowest low across the series
	ChangePct float64 // (Last-First)/First, in percent
}

// Summarize computes the chart header fields from a chronological series.
// An empty series yields the zero Summary.
func Summarize(points []HistoryPoint) Summary {
	if len(points) == 0 {
		return Summary{}
	}

	sum := Summary{
		First: points[0].Close,
		Last:  points[len(points)-1].Close,
		High:  points[0].High,
		Low:   points[0].Low,
	}
	for _, p := range points[1:] {
		if p.High > sum.High {
			sum.High = p.High
		}
		if p.Low < sum.Low {
			sum.Low = p.Low
		}
	}
	if sum.First != 0 {
		sum.ChangePct = (sum.Last - sum.First) / sum.First * 100
	}
	return sum
}
