package charts

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ivanoskov/expense_tracker/internal/analytics"
)

// ChartGenerator рисует графики дашборда в PNG
type ChartGenerator struct {
	money analytics.CurrencyFormatter
}

// NewChartGenerator создает новый генератор графиков
func NewChartGenerator(money analytics.CurrencyFormatter) *ChartGenerator {
	return &ChartGenerator{money: money}
}

// calculateMovingAverage вычисляет скользящее среднее
func calculateMovingAverage(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		count := 0
		sum := 0.0
		for j := max(0, i-window+1); j <= i; j++ {
			sum += values[j]
			count++
		}
		result[i] = sum / float64(count)
	}
	return result
}

func (g *ChartGenerator) axisFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%s%.0f", g.money.Symbol, f)
	}
	return ""
}

var background = chart.Style{
	Padding: chart.Box{
		Top:    50,
		Left:   50,
		Right:  50,
		Bottom: 50,
	},
	FillColor: chart.ColorWhite,
}

// DailyTrend рисует траты по дням месяца и 7-дневное среднее.
// Если трат не было, возвращает nil.
func (g *ChartGenerator) DailyTrend(period analytics.Period, daily []analytics.DailySummary) ([]byte, error) {
	xValues := make([]time.Time, len(daily))
	yValues := make([]float64, len(daily))
	hasData := false
	for i, d := range daily {
		xValues[i] = d.Date.In(time.UTC)
		yValues[i] = d.Total.InexactFloat64()
		if d.Total.IsPositive() {
			hasData = true
		}
	}
	if !hasData {
		return nil, nil
	}

	graph := chart.Chart{
		Title:      "Daily Spending Trend - " + period.String(),
		Width:      1200,
		Height:     600,
		Background: background,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02"),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: g.axisFormatter,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Spent",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 3,
				},
			},
			chart.TimeSeries{
				Name:    "7-day average",
				XValues: xValues,
				YValues: calculateMovingAverage(yValues, 7),
				Style: chart.Style{
					StrokeColor:     chart.ColorBlue.WithAlpha(100),
					StrokeWidth:     2,
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
		},
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		}),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render daily trend: %w", err)
	}
	return buffer.Bytes(), nil
}

// CategoryPie рисует распределение трат по категориям в цветах категорий
func (g *ChartGenerator) CategoryPie(categories []analytics.CategorySummary) ([]byte, error) {
	values := make([]chart.Value, 0, len(categories))
	for _, c := range categories {
		if !c.Total.IsPositive() {
			continue
		}
		value := chart.Value{
			Label: fmt.Sprintf("%s (%s%%)", c.Name, c.Percentage.StringFixed(1)),
			Value: c.Total.InexactFloat64(),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		}
		if c.Color != "" {
			value.Style.FillColor = drawing.ColorFromHex(strings.TrimPrefix(c.Color, "#"))
		}
		values = append(values, value)
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:      "Spending by Category",
		Width:      800,
		Height:     800,
		Values:     values,
		Background: background,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}
