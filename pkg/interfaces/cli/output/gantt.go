package output

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/vsinha/mps/pkg/domain/entities"
)

const day = 24 * time.Hour

// GanttChart lays out a schedule as an SVG Gantt chart
type GanttChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	StartTime    time.Time
	EndTime      time.Time
}

// GanttBar is one task row of the chart
type GanttBar struct {
	Task  *entities.GanttTask
	X     int
	Y     int
	Width int
	Color string
}

// NewGanttChart sizes a chart for every task of s
func NewGanttChart(s *entities.Schedule) *GanttChart {
	gc := &GanttChart{
		Width:        1200,
		Height:       200,
		MarginLeft:   220,
		MarginTop:    60,
		MarginRight:  60,
		MarginBottom: 60,
		RowHeight:    26,
	}
	if s == nil || s.Root == nil {
		return gc
	}

	tasks := s.Tasks()
	start, end := tasks[0].StartDate, tasks[0].EndDate
	for _, t := range tasks {
		if t.StartDate.Before(start) {
			start = t.StartDate
		}
		if t.EndDate.After(end) {
			end = t.EndDate
		}
	}
	if s.TargetDate != nil && s.TargetDate.After(end) {
		end = *s.TargetDate
	}

	// one day of padding on both sides keeps zero-length tasks visible
	gc.StartTime = start.Add(-day)
	gc.EndTime = end.Add(day)
	gc.Height = len(tasks)*gc.RowHeight + gc.MarginTop + gc.MarginBottom
	return gc
}

// GenerateSVG renders s as an SVG document
func (gc *GanttChart) GenerateSVG(s *entities.Schedule) string {
	if s == nil || s.Root == nil {
		return gc.generateEmptyChart()
	}

	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, gc.Width, gc.Height)
	svg.WriteString(`<defs><style>`)
	svg.WriteString(`.task-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.time-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.target-line { stroke: #fb4934; stroke-width: 2; stroke-dasharray: 6 3; }`)
	svg.WriteString(`.task-bar { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`</style></defs>`)
	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="white"/>`, gc.Width, gc.Height)
	fmt.Fprintf(&svg, `<text x="%d" y="30" class="title" text-anchor="middle">%s x%s - %s schedule</text>`,
		gc.Width/2, html.EscapeString(string(s.ProductCode)), formatQty(s.Quantity), s.Policy)

	bars := gc.createBars(s.Tasks())
	gc.drawTimeAxis(&svg)
	gc.drawTimeGrid(&svg, len(bars))
	if s.TargetDate != nil {
		gc.drawTargetLine(&svg, *s.TargetDate, len(bars))
	}
	for _, bar := range bars {
		gc.drawBar(&svg, bar)
	}
	gc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (gc *GanttChart) xFor(t time.Time) int {
	chartWidth := gc.Width - gc.MarginLeft - gc.MarginRight
	total := gc.EndTime.Sub(gc.StartTime)
	if total <= 0 {
		return gc.MarginLeft
	}
	return gc.MarginLeft + int(float64(t.Sub(gc.StartTime))/float64(total)*float64(chartWidth))
}

// createBars places one bar per task in depth-first order
func (gc *GanttChart) createBars(tasks []*entities.GanttTask) []GanttBar {
	bars := make([]GanttBar, 0, len(tasks))
	for i, t := range tasks {
		x := gc.xFor(t.StartDate)
		width := gc.xFor(t.EndDate) - x
		if width < 2 {
			width = 2
		}
		bars = append(bars, GanttBar{
			Task:  t,
			X:     x,
			Y:     gc.MarginTop + i*gc.RowHeight,
			Width: width,
			Color: barColor(t),
		})
	}
	return bars
}

func (gc *GanttChart) interval() (time.Duration, string) {
	days := int(math.Ceil(gc.EndTime.Sub(gc.StartTime).Hours() / 24))
	switch {
	case days <= 31:
		return day, "Jan 2"
	case days <= 180:
		return 7 * day, "Jan 2"
	default:
		return 30 * day, "Jan 2006"
	}
}

func (gc *GanttChart) drawTimeAxis(svg *strings.Builder) {
	interval, layout := gc.interval()
	axisY := gc.Height - gc.MarginBottom
	for t := gc.StartTime; t.Before(gc.EndTime); t = t.Add(interval) {
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label" text-anchor="middle">%s</text>`,
			gc.xFor(t), axisY+15, t.Format(layout))
	}
	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, axisY, gc.Width-gc.MarginRight, axisY)
}

func (gc *GanttChart) drawTimeGrid(svg *strings.Builder, rows int) {
	interval, _ := gc.interval()
	bottom := gc.MarginTop + rows*gc.RowHeight
	for t := gc.StartTime; t.Before(gc.EndTime); t = t.Add(interval) {
		x := gc.xFor(t)
		fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`, x, gc.MarginTop, x, bottom)
	}
}

func (gc *GanttChart) drawTargetLine(svg *strings.Builder, target time.Time, rows int) {
	x := gc.xFor(target)
	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="target-line"/>`,
		x, gc.MarginTop-10, x, gc.MarginTop+rows*gc.RowHeight)
	fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label" text-anchor="middle">target %s</text>`,
		x, gc.MarginTop-14, target.Format(dateLayout))
}

func (gc *GanttChart) drawBar(svg *strings.Builder, bar GanttBar) {
	t := bar.Task
	label := strings.Repeat("  ", t.Level) + string(t.Code)
	fmt.Fprintf(svg, `<text x="%d" y="%d" class="task-label" text-anchor="end" xml:space="preserve">%s</text>`,
		gc.MarginLeft-10, bar.Y+gc.RowHeight/2+4, html.EscapeString(label))
	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, bar.Y+gc.RowHeight, gc.Width-gc.MarginRight, bar.Y+gc.RowHeight)

	fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="task-bar">`,
		bar.X, bar.Y+3, bar.Width, gc.RowHeight-6, bar.Color)
	fmt.Fprintf(svg, `<title>%s</title></rect>`, html.EscapeString(tooltip(t)))
}

func tooltip(t *entities.GanttTask) string {
	text := fmt.Sprintf("%s %s, %s to %s, %d days, %s",
		t.Code, t.Name, t.StartDate.Format(dateLayout), t.EndDate.Format(dateLayout), t.Duration, t.Status)
	if d := t.Detail; d != nil {
		text += fmt.Sprintf(", required %s, stock %s, deficit %s",
			formatQty(d.RequiredQuantity), formatQty(d.AvailableInventory), formatQty(d.Deficit))
	}
	return text
}

func (gc *GanttChart) drawLegend(svg *strings.Builder) {
	legendX := gc.Width - gc.MarginRight - 160
	legendY := 8
	items := []struct {
		color string
		label string
	}{
		{"#8ec07c", "normal"},
		{"#fabd2f", "warning"},
		{"#fb4934", "critical"},
		{"#bdbdbd", "in stock"},
	}
	for i, item := range items {
		x := legendX + (i%2)*80
		y := legendY + (i/2)*14
		fmt.Fprintf(svg, `<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`, x, y, item.color)
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label">%s</text>`, x+16, y+8, item.label)
	}
}

func barColor(t *entities.GanttTask) string {
	if t.Detail != nil && t.Detail.Ready {
		return "#bdbdbd"
	}
	switch t.Status {
	case entities.StatusCritical:
		return "#fb4934"
	case entities.StatusWarning:
		return "#fabd2f"
	default:
		return "#8ec07c"
	}
}

func (gc *GanttChart) generateEmptyChart() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+
		`<rect width="%d" height="%d" fill="white"/>`+
		`<text x="%d" y="%d" text-anchor="middle" font-family="Arial, sans-serif" font-size="16" fill="#666">No tasks scheduled</text>`+
		`</svg>`, gc.Width, gc.Height, gc.Width, gc.Height, gc.Width/2, gc.Height/2)
}
