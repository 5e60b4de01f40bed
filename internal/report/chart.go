package report

import (
	"fmt"
	"os"
	"path/filepath"

	charts "github.com/vicanso/go-charts/v2"

	"etfrotate/internal/backtest"
)

// writeChart renders the equity curve to nav.png.
func (w *Writer) writeChart(dir string, result *backtest.Result) error {
	if len(result.Nav) < 2 {
		return nil
	}

	labels := make([]string, len(result.Nav))
	values := make([]float64, len(result.Nav))
	yMin, yMax := result.Nav[0].Nav, result.Nav[0].Nav
	for i, p := range result.Nav {
		labels[i] = p.Date.Format("2006-01-02")
		values[i] = p.Nav
		if p.Nav < yMin {
			yMin = p.Nav
		}
		if p.Nav > yMax {
			yMax = p.Nav
		}
	}
	pad := (yMax - yMin) * 0.05
	yMin -= pad
	yMax += pad

	painter, err := charts.LineRender([][]float64{values},
		charts.TitleTextOptionFunc(fmt.Sprintf("NAV (%s rotation)", result.Cadence)),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: labels, BoundaryGap: charts.FalseFlag(), SplitNumber: 8}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(1000),
		charts.HeightOptionFunc(500),
	)
	if err != nil {
		return fmt.Errorf("failed to render NAV chart: %w", err)
	}
	img, err := painter.Bytes()
	if err != nil {
		return fmt.Errorf("failed to encode NAV chart: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nav.png"), img, 0644); err != nil {
		return fmt.Errorf("failed to write nav.png: %w", err)
	}
	return nil
}
