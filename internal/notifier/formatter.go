package notifier

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"BandWatch/internal/model"
	"BandWatch/internal/scanner"
)

// maxBodyChars keeps formatted messages clear of Telegram's 4096-char cap.
const maxBodyChars = 3500

// FormatMatches formats live-scan matches, sorted ascending by AB_W. The
// source annotation is added when a non-primary data source served the scan.
func FormatMatches(matches []model.Match, p scanner.Params, source string) string {
	header := []string{
		"*AB_W + Volume scan*",
		fmt.Sprintf("Condition: AB_W < %.2f, Vol > %.1fx MA%d", p.ABThreshold, p.VolumeMultiplier, p.VolumeMALength),
		fmt.Sprintf("Top %d USDT pairs by 24h quote volume", p.TopN),
	}

	if len(matches) == 0 {
		text := strings.Join(header, "\n") + "\n\nNo symbols matched."
		return appendSource(text, source)
	}

	sorted := make([]model.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ABWeekly < sorted[j].ABWeekly })

	lines := append(header, "", "Symbol | AB_W | Vol / MA (x)")
	for _, m := range sorted {
		line := fmt.Sprintf("`%s` | %.2f | %s/%s (%s)",
			m.Symbol, m.ABWeekly, volume(m.Volume), volume(m.VolumeMA), ratio(m.VolumeRatio()))
		lines = append(lines, line)
		if len(strings.Join(lines, "\n")) > maxBodyChars {
			lines = append(lines, "... (truncated)")
			break
		}
	}
	return appendSource(strings.Join(lines, "\n"), source)
}

// FormatBacktest formats historical-scan matches in chronological order.
func FormatBacktest(matches []model.Match, p scanner.Params) string {
	header := []string{
		"*AB_W + Volume backtest*",
		fmt.Sprintf("Window: %d daily bars | AB_W < %.2f, Vol > %.1fx MA%d (shifted)",
			p.BacktestDays, p.ABThreshold, p.VolumeMultiplier, p.VolumeMALength),
	}
	if len(matches) == 0 {
		return strings.Join(header, "\n") + "\n\nNo historical hits."
	}

	sorted := make([]model.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	lines := append(header, "", "Date | Symbol | AB_W | Vol / MA (x)")
	for _, m := range sorted {
		line := fmt.Sprintf("%s | `%s` | %.2f | %s/%s (%s)",
			m.Time.Format("2006-01-02"), m.Symbol, m.ABWeekly, volume(m.Volume), volume(m.VolumeMA), ratio(m.VolumeRatio()))
		lines = append(lines, line)
		if len(strings.Join(lines, "\n")) > maxBodyChars {
			lines = append(lines, "... (truncated)")
			break
		}
	}
	return strings.Join(lines, "\n")
}

// FormatReport formats one symbol's indicator report.
func FormatReport(r *scanner.Report, decimals int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*Report:* `%s` | %s\n", r.Symbol, time.Now().UTC().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Last Close: `%.*f`\n", decimals, r.LastClose()))

	n := r.Table.Len()
	if rsi := r.RSI[n-1]; !math.IsNaN(rsi) {
		b.WriteString(fmt.Sprintf("RSI: `%.2f`\n", rsi))
	}
	b.WriteString(fmt.Sprintf("EMA Fast/Slow: `%.2f` / `%.2f`\n", r.EMAFast[n-1], r.EMASlow[n-1]))
	b.WriteString(fmt.Sprintf("MACD: `%.2f` Signal: `%.2f` Hist: `%.2f`\n", r.MACD[n-1], r.MACDSignal[n-1], r.MACDHist[n-1]))
	if ab := r.AB[n-1]; !math.IsNaN(ab) {
		if math.IsNaN(r.ABWeekly) {
			b.WriteString(fmt.Sprintf("AB: `%.2f`\n", ab))
		} else {
			b.WriteString(fmt.Sprintf("AB: `%.2f`, AB_W: `%.2f`\n", ab, r.ABWeekly))
		}
	}

	if len(r.Reasons) > 0 {
		b.WriteString("\n*Signals:*\n")
		for _, reason := range r.Reasons {
			b.WriteString(fmt.Sprintf("- %s\n", reason))
		}
	} else {
		b.WriteString("\n_No new signals_.\n")
	}
	return appendSource(strings.TrimRight(b.String(), "\n"), r.Source)
}

func appendSource(text, source string) string {
	if source == "" || source == "binance" {
		return text
	}
	return text + fmt.Sprintf("\n(data source: %s)", source)
}

func volume(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return humanize.CommafWithDigits(v, 0)
}

func ratio(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("%.1fx", r)
}
