package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"finsight/internal/api"
	"finsight/internal/market"
	"finsight/internal/news"
)

const maxHeadlines = 12

// newsState holds the news search and the rendered article set.
type newsState struct {
	input   textinput.Model
	symbol  string
	items   []news.Item
	scroll  int
	loading bool
}

func newNewsState() newsState {
	input := textinput.New()
	input.Placeholder = "symbol, e.g. TSLA"
	input.CharLimit = 12
	input.Width = 20
	return newsState{input: input}
}

func (m Model) updateNews(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.newsView.input.Focused() {
		switch key.String() {
		case "enter":
			m.newsView.input.Blur()
			return m.searchNews(m.newsView.input.Value())
		case "esc":
			m.newsView.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.newsView.input, cmd = m.newsView.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "/":
		m.newsView.input.SetValue("")
		m.newsView.input.Focus()
		return m, textinput.Blink
	case "up", "k":
		if m.newsView.scroll > 0 {
			m.newsView.scroll--
		}
	case "down", "j":
		if m.newsView.scroll < len(m.newsView.items)-maxHeadlines {
			m.newsView.scroll++
		}
	}
	return m, nil
}

func (m Model) searchNews(symbol string) (tea.Model, tea.Cmd) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		m.status = errorStyle.Render(api.ErrorMessage(err))
		return m, nil
	}

	epoch := m.newsEpochs.Next()
	m.newsView.loading = true
	m.newsView.symbol = sym
	m.status = "loading news for " + sym + "..."
	svc := m.news

	return m, func() tea.Msg {
		items, err := svc.Fetch(context.Background(), sym)
		return newsResultMsg{epoch: epoch, symbol: sym, items: items, err: err}
	}
}

func (m Model) onNewsResult(msg newsResultMsg) (tea.Model, tea.Cmd) {
	if !m.newsEpochs.Current(msg.epoch) {
		m.log.Debug("dropping stale news result", "symbol", msg.symbol, "epoch", msg.epoch)
		return m, nil
	}

	m.newsView.loading = false
	if msg.err != nil {
		m.status = errorStyle.Render(api.ErrorMessage(msg.err))
		return m, nil
	}

	m.status = ""
	m.newsView.items = msg.items
	m.newsView.scroll = 0
	return m, nil
}

func (m Model) viewNews() string {
	var b strings.Builder

	b.WriteString("  " + m.newsView.input.View() + "\n\n")

	if len(m.newsView.items) == 0 {
		if m.newsView.loading {
			b.WriteString(dimStyle.Render("  loading...") + "\n")
		} else if m.newsView.symbol != "" {
			b.WriteString(dimStyle.Render("  no news for "+m.newsView.symbol) + "\n")
		} else {
			b.WriteString(dimStyle.Render("  press / and type a symbol to search") + "\n")
		}
		return b.String()
	}

	b.WriteString("  " + symbolStyle.Render(m.newsView.symbol) + dimStyle.Render(fmt.Sprintf("  %d articles", len(m.newsView.items))) + "\n\n")

	b.WriteString(renderSentimentBars(news.SummarizeSentiment(m.newsView.items)))
	b.WriteString("\n")
	b.WriteString(renderTrend(news.TrendByDay(m.newsView.items, nil)))
	b.WriteString("\n")
	b.WriteString(m.renderHeadlines())
	return b.String()
}

// renderSentimentBars draws the positive/negative/neutral distribution as
// proportional bars. The unknown bucket only shows when non-empty.
func renderSentimentBars(sum news.SentimentSummary) string {
	type row struct {
		label string
		count int
		style lipgloss.Style
	}
	rows := []row{
		{"positive", sum.Positive, positiveStyle},
		{"negative", sum.Negative, negativeStyle},
		{"neutral", sum.Neutral, neutralStyle},
	}
	if sum.Unknown > 0 {
		rows = append(rows, row{"other", sum.Unknown, dimStyle})
	}

	max := 1
	for _, r := range rows {
		if r.count > max {
			max = r.count
		}
	}

	var b strings.Builder
	for _, r := range rows {
		width := r.count * 24 / max
		bar := strings.Repeat("#", width)
		b.WriteString(fmt.Sprintf("  %s %s %d\n",
			labelStyle.Render(fmt.Sprintf("%-8s", r.label)), r.style.Render(bar), r.count))
	}
	return b.String()
}

// renderTrend draws per-day article counts in the order the service
// delivered the days.
func renderTrend(trend []news.TrendPoint) string {
	if len(trend) == 0 {
		return ""
	}

	max := 1
	for _, p := range trend {
		if p.Count > max {
			max = p.Count
		}
	}

	var b strings.Builder
	b.WriteString("  " + labelStyle.Render("volume by day") + "\n")
	for _, p := range trend {
		bar := strings.Repeat("#", p.Count*24/max)
		b.WriteString(fmt.Sprintf("  %s %s %d\n", dimStyle.Render(p.Date), trendStyle.Render(bar), p.Count))
	}
	return b.String()
}

func (m Model) renderHeadlines() string {
	items := m.newsView.items
	start := m.newsView.scroll
	if start > len(items) {
		start = len(items)
	}
	end := start + maxHeadlines
	if end > len(items) {
		end = len(items)
	}

	var b strings.Builder
	for _, it := range items[start:end] {
		tag := sentimentStyle(it.Sentiment).Render(fmt.Sprintf("[%s]", sentimentLabel(it.Sentiment)))
		b.WriteString(fmt.Sprintf("  %s %s\n", tag, it.Headline))
		b.WriteString("      " + dimStyle.Render(strings.TrimSpace(it.Source+"  "+shortDate(it.PublishedAt))) + "\n")
	}
	if end < len(items) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more (down to scroll)", len(items)-end)) + "\n")
	}
	return b.String()
}

func sentimentLabel(sentiment string) string {
	switch sentiment {
	case news.SentimentPositive, news.SentimentNegative, news.SentimentNeutral:
		return sentiment
	default:
		return "?"
	}
}
