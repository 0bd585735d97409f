package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pkmn-analytics/battle-features/internal/store"
)

func main() {
	_ = godotenv.Load()

	dsn := flag.String("dsn", os.Getenv("CLICKHOUSE_URL"), "ClickHouse DSN")
	profile := flag.String("profile", "full", "feature profile to report on")
	minBattles := flag.Int("min", 20, "minimum labelled battles per lead")
	top := flag.Int("top", 15, "leads to chart")
	out := flag.String("out", "lead_win_rates.svg", "SVG output path")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("CLICKHOUSE_URL or -dsn is required")
	}

	ctx := context.Background()
	conn, err := store.OpenClickHouse(ctx, *dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	fmt.Println("Querying lead win rates...")
	rates, err := store.NewClickHouseSink(conn).LeadWinRates(ctx, *profile, *minBattles)
	if err != nil {
		log.Fatalf("Failed to query lead win rates: %v", err)
	}
	if len(rates) == 0 {
		fmt.Println("No leads with enough labelled battles.")
		return
	}

	fmt.Printf("%-14s %8s %8s %8s\n", "lead", "battles", "wins", "rate")
	for _, r := range rates {
		fmt.Printf("%-14s %8d %8d %7.1f%%\n", r.Lead, r.Battles, r.Wins, 100*r.WinRate())
	}

	if len(rates) > *top {
		rates = rates[:*top]
	}
	labels := make([]string, len(rates))
	values := make([]float64, len(rates))
	for i, r := range rates {
		labels[i] = r.Lead
		values[i] = r.WinRate()
	}

	svg := generateBarChartSVG(fmt.Sprintf("Player 1 win rate by lead (%s)", *profile), labels, values, "#4a90e2")
	saveChart(*out, svg)
}

func saveChart(path string, svg string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Chart generated: %s\n", path)
}

// generateBarChartSVG draws rates in [0,1] with a 50% reference line.
func generateBarChartSVG(title string, labels []string, values []float64, color string) string {
	width := 600
	height := 400
	padding := 50
	barWidth := (width - 2*padding) / len(labels)
	maxBarHeight := float64(height - 2*padding)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height, width, height)
	sb.WriteString(`<rect width="100%" height="100%" fill="#1a1a1a" />`)
	fmt.Fprintf(&sb, `<text x="%d" y="30" fill="white" font-family="Arial" font-size="20" text-anchor="middle">%s</text>`, width/2, title)

	for i, val := range values {
		barHeight := int(val * maxBarHeight)
		x := padding + i*barWidth
		y := height - padding - barHeight

		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" rx="4" />`, x+5, y, barWidth-10, barHeight, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="white" font-family="Arial" font-size="12" text-anchor="end" transform="rotate(-45 %d %d)">%s</text>`,
			x+barWidth/2, height-padding+20, x+barWidth/2, height-padding+20, labels[i])
		fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="white" font-family="Arial" font-size="10" text-anchor="middle">%.0f%%</text>`, x+barWidth/2, y-5, 100*val)
	}

	half := height - padding - int(maxBarHeight/2)
	fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#888" stroke-dasharray="4" />`, padding, half, width-padding, half)
	fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="white" stroke-width="2" />`, padding, height-padding, width-padding, height-padding)

	sb.WriteString(`</svg>`)
	return sb.String()
}
