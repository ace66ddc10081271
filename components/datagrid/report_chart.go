package datagrid

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"
	defaultChartTop    = 12
	otherLabel         = "Other"
)

// ChartPoint is one labelled value of a summary chart.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// SummarizeColumn counts rendered values of one column. The most frequent
// labels come first; ties are ordered by label. Labels past top are folded
// into a single "Other" point.
func SummarizeColumn(rows []Row, binding ColumnBinding, top int) []ChartPoint {
	if binding == nil {
		return nil
	}
	counts := map[string]float64{}
	for _, row := range rows {
		label := binding.Render(binding.Value(row))
		if label == "" {
			label = "(empty)"
		}
		counts[label]++
	}
	points := make([]ChartPoint, 0, len(counts))
	for label, n := range counts {
		points = append(points, ChartPoint{Label: label, Value: n})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Label < points[j].Label
	})
	if top > 0 && len(points) > top {
		rest := 0.0
		for _, p := range points[top:] {
			rest += p.Value
		}
		points = append(points[:top:top], ChartPoint{Label: otherLabel, Value: rest})
	}
	return points
}

// ReportChart renders row set summaries as ECharts HTML. Output is cached per
// row set identity, column and chart type.
type ReportChart struct {
	theme      string
	assetsHost string
	top        int
	cache      *ChartCache
}

// ReportChartOption customizes a ReportChart.
type ReportChartOption func(*ReportChart)

// WithChartTheme sets the ECharts theme.
func WithChartTheme(theme string) ReportChartOption {
	return func(c *ReportChart) {
		if theme != "" {
			c.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ReportChartOption {
	return func(c *ReportChart) { c.assetsHost = host }
}

// WithChartTop limits the number of labels before folding into "Other".
func WithChartTop(n int) ReportChartOption {
	return func(c *ReportChart) { c.top = n }
}

// WithChartCacheTTL sets how long rendered charts are kept. Zero disables
// caching.
func WithChartCacheTTL(ttl time.Duration) ReportChartOption {
	return func(c *ReportChart) { c.cache = NewChartCache(ttl) }
}

// NewReportChart builds a renderer with the Westeros theme.
func NewReportChart(options ...ReportChartOption) *ReportChart {
	c := &ReportChart{
		theme: types.ThemeWesteros,
		top:   defaultChartTop,
		cache: NewChartCache(5 * time.Minute),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Render draws a "bar" or "pie" summary of one column of set.
func (c *ReportChart) Render(set RowSet, binding ColumnBinding, chartType string) (string, error) {
	if binding == nil {
		return "", fmt.Errorf("datagrid: report chart requires a column")
	}
	chartType = strings.ToLower(strings.TrimSpace(chartType))
	if chartType == "" {
		chartType = "bar"
	}
	key := fmt.Sprintf("%s:%s:%s", set.ID, binding.Key(), chartType)
	return c.cache.GetOrRender(key, func() (string, error) {
		points := SummarizeColumn(set.Rows, binding, c.top)
		title := binding.Header()
		subtitle := fmt.Sprintf("%d rows", len(set.Rows))
		switch chartType {
		case "bar":
			return c.renderBar(title, subtitle, points)
		case "pie":
			return c.renderPie(title, subtitle, points)
		default:
			return "", fmt.Errorf("datagrid: unsupported chart type: %s", chartType)
		}
	})
}

func (c *ReportChart) renderBar(title, subtitle string, points []ChartPoint) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(c.globalOptions(title, subtitle)...)
	labels := make([]string, len(points))
	data := make([]opts.BarData, len(points))
	for i, p := range points {
		labels[i] = p.Label
		data[i] = opts.BarData{Name: p.Label, Value: p.Value}
	}
	bar.SetXAxis(labels)
	bar.AddSeries(title, data)
	return renderChart(bar)
}

func (c *ReportChart) renderPie(title, subtitle string, points []ChartPoint) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(c.globalOptions(title, subtitle)...)
	data := make([]opts.PieData, len(points))
	for i, p := range points {
		data[i] = opts.PieData{Name: p.Label, Value: p.Value}
	}
	pie.AddSeries(title, data)
	return renderChart(pie)
}

func (c *ReportChart) globalOptions(title, subtitle string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  c.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if c.assetsHost != "" {
		initOpts.AssetsHost = c.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ChartCache is an in-memory TTL cache for rendered charts.
type ChartCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedChart
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{ttl: ttl, entries: make(map[string]cachedChart)}
}

// GetOrRender returns a live entry or renders and stores a new one.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

func (c *ChartCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedChart{html: html, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}
