package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"finsight/internal/api"
	"finsight/internal/market"
)

const maxChartBars = 30

// stockState holds the symbol search and the currently rendered series.
type stockState struct {
	input   textinput.Model
	symbol  string
	quote   *market.Quote
	series  []market.HistoryPoint // chronological, oldest first
	hover   int                   // index into series, -1 when nothing hovered
	loading bool
}

func newStockState() stockState {
	input := textinput.New()
	input.Placeholder = "symbol, e.g. AAPL"
	input.CharLimit = 12
	input.Width = 20
	return stockState{input: input, hover: -1}
}

func (m Model) updateStock(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.stock.input.Focused() {
		switch key.String() {
		case "enter":
			m.stock.input.Blur()
			return m.searchStock(m.stock.input.Value())
		case "esc":
			m.stock.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.stock.input, cmd = m.stock.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "/":
		m.stock.input.SetValue("")
		m.stock.input.Focus()
		return m, textinput.Blink
	case "up", "k":
		if n := len(m.stock.series); n > 0 {
			if m.stock.hover < 0 {
				m.stock.hover = n - 1
			} else if m.stock.hover > 0 {
				m.stock.hover--
			}
		}
	case "down", "j":
		if n := len(m.stock.series); n > 0 {
			if m.stock.hover < 0 {
				m.stock.hover = n - 1
			} else if m.stock.hover < n-1 {
				m.stock.hover++
			}
		}
	case "esc":
		m.stock.hover = -1
	case "w":
		// Quick add of the current stock to the watchlist.
		if m.stock.quote != nil {
			return m, m.addWatchlistCmd(m.stock.quote.Symbol, m.stock.quote.Name)
		}
	}
	return m, nil
}

// searchStock kicks off a quote+history fetch for a new symbol. The epoch
// taken here invalidates any fetch still in flight.
func (m Model) searchStock(symbol string) (tea.Model, tea.Cmd) {
	sym, err := market.NormalizeSymbol(symbol)
	if err != nil {
		m.status = errorStyle.Render(api.ErrorMessage(err))
		return m, nil
	}

	epoch := m.marketEpochs.Next()
	m.stock.loading = true
	m.stock.symbol = sym
	// The previous symbol's data must not linger next to the new symbol's
	// loading state; the epoch only guards the response side.
	m.stock.quote = nil
	m.stock.series = nil
	m.stock.hover = -1
	m.status = "loading " + sym + "..."
	svc := m.market

	return m, func() tea.Msg {
		ctx := context.Background()
		quote, err := svc.Quote(ctx, sym)
		if err != nil {
			return marketResultMsg{epoch: epoch, symbol: sym, err: err}
		}
		history, err := svc.History(ctx, sym)
		return marketResultMsg{epoch: epoch, symbol: sym, quote: quote, history: history, err: err}
	}
}

func (m Model) onMarketResult(msg marketResultMsg) (tea.Model, tea.Cmd) {
	if !m.marketEpochs.Current(msg.epoch) {
		m.log.Debug("dropping stale market result", "symbol", msg.symbol, "epoch", msg.epoch)
		return m, nil
	}

	m.stock.loading = false
	if msg.err != nil {
		m.status = errorStyle.Render(api.ErrorMessage(msg.err))
		return m, nil
	}

	m.status = ""
	m.stock.quote = msg.quote
	m.stock.series = market.ToChronological(msg.history)
	m.stock.hover = -1
	return m, nil
}

func (m Model) viewStock() string {
	var b strings.Builder

	b.WriteString("  " + m.stock.input.View() + "\n\n")

	q := m.stock.quote
	if q == nil {
		if m.stock.loading {
			b.WriteString(dimStyle.Render("  loading...") + "\n")
		} else {
			b.WriteString(dimStyle.Render("  press / and type a symbol to search") + "\n")
		}
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %s  %s\n", symbolStyle.Render(q.Symbol), q.Name))
	b.WriteString(fmt.Sprintf("  %s %.2f   %s %.2f   %s %.2f\n",
		labelStyle.Render("last"), q.Current,
		labelStyle.Render("high"), q.High,
		labelStyle.Render("low"), q.Low))
	if q.Exchange != "" || q.Sector != "" {
		b.WriteString("  " + dimStyle.Render(strings.TrimSpace(q.Exchange+"  "+q.Sector)) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(renderCandles(m.stock.series, m.stock.hover, m.chartWidth()))

	if len(m.stock.series) > 1 {
		sum := market.Summarize(m.stock.series)
		style := upStyle
		if sum.ChangePct < 0 {
			style = downStyle
		}
		b.WriteString(fmt.Sprintf("\n  %s %s   range %.2f - %.2f\n",
			labelStyle.Render("period"),
			style.Render(fmt.Sprintf("%+.2f%%", sum.ChangePct)),
			sum.Low, sum.High))
	}

	if h := m.stock.hover; h >= 0 && h < len(m.stock.series) {
		p := m.stock.series[h]
		b.WriteString(fmt.Sprintf("\n  %s  O %.2f  H %.2f  L %.2f  C %.2f\n",
			hoverStyle.Render(p.Date), p.Open, p.High, p.Low, p.Close))
	}
	return b.String()
}

func (m Model) chartWidth() int {
	w := m.width - 14
	if w < 20 {
		w = 40
	}
	return w
}

// renderCandles draws one horizontal row per bar: the date, a wick spanning
// low..high, and a thicker body spanning open..close, colored by direction.
// The hovered row gets a marker instead of color emphasis alone.
func renderCandles(series []market.HistoryPoint, hover, width int) string {
	if len(series) == 0 {
		return dimStyle.Render("  no history available") + "\n"
	}

	bars := series
	offset := 0
	if len(bars) > maxChartBars {
		offset = len(bars) - maxChartBars
		bars = bars[offset:]
	}

	lo, hi := bars[0].Low, bars[0].High
	for _, p := range bars {
		if p.Low < lo {
			lo = p.Low
		}
		if p.High > hi {
			hi = p.High
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	scale := func(v float64) int {
		col := int(float64(width-1) * (v - lo) / span)
		if col < 0 {
			col = 0
		}
		if col > width-1 {
			col = width - 1
		}
		return col
	}

	var b strings.Builder
	for i, p := range bars {
		wickLo, wickHi := scale(p.Low), scale(p.High)
		bodyLo, bodyHi := scale(p.Open), scale(p.Close)
		if bodyLo > bodyHi {
			bodyLo, bodyHi = bodyHi, bodyLo
		}

		row := make([]rune, width)
		for c := range row {
			row[c] = ' '
		}
		for c := wickLo; c <= wickHi; c++ {
			row[c] = '-'
		}
		for c := bodyLo; c <= bodyHi; c++ {
			row[c] = '#'
		}

		style := upStyle
		if market.ClassifyBar(p) == market.Down {
			style = downStyle
		}

		marker := "  "
		if offset+i == hover {
			marker = hoverStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", marker, dimStyle.Render(shortDate(p.Date)), style.Render(string(row))))
	}
	return b.String()
}

// shortDate trims a timestamp down to its date part for the chart gutter.
func shortDate(date string) string {
	if len(date) > 10 {
		date = date[:10]
	}
	return fmt.Sprintf("%10s", date)
}
