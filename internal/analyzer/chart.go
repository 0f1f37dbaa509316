package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes an HTML page with the equity and drawdown curves.
func RenderChart(res Result, path string) error {
	page := components.NewPage()
	page.PageTitle = "Backtest Result"

	equity := charts.NewLine()
	equity.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Equity Curve"}))
	xAxis := make([]string, 0, len(res.EquityCurve))
	equityData := make([]opts.LineData, 0, len(res.EquityCurve))
	for _, sample := range res.EquityCurve {
		xAxis = append(xAxis, sample.Timestamp.Format("2006-01-02 15:04"))
		value, _ := sample.Equity.Float64()
		equityData = append(equityData, opts.LineData{Value: value})
	}
	equity.SetXAxis(xAxis).AddSeries("equity", equityData)

	drawdownChart := charts.NewLine()
	drawdownChart.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Drawdown %"}))
	ddAxis := make([]string, 0, len(res.DrawdownCurve))
	ddData := make([]opts.LineData, 0, len(res.DrawdownCurve))
	for _, sample := range res.DrawdownCurve {
		ddAxis = append(ddAxis, sample.Timestamp.Format("2006-01-02 15:04"))
		value, _ := sample.DrawdownPercent.Float64()
		ddData = append(ddData, opts.LineData{Value: value})
	}
	drawdownChart.SetXAxis(ddAxis).AddSeries("drawdown_pct", ddData)

	page.AddCharts(equity, drawdownChart)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// SnapshotChart renders the HTML chart to a PNG with a headless browser.
// Needs a Chrome binary on the host; callers should treat failure as
// non-fatal.
func SnapshotChart(ctx context.Context, htmlPath, pngPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	browserCtx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	var buf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+abs),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.FullScreenshot(&buf, 90),
	)
	if err != nil {
		return fmt.Errorf("chart screenshot: %w", err)
	}
	return os.WriteFile(pngPath, buf, 0o644)
}
