package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vsinha/mps/pkg/application/dto"
	"github.com/vsinha/mps/pkg/domain/entities"
	"github.com/vsinha/mps/pkg/domain/services"
)

const (
	dateLayout = "2006-01-02"
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeSpace  = "   "
)

// WriteFeasibility renders the feasibility tree of r followed by its alerts
func WriteFeasibility(w io.Writer, th *Theme, r *dto.PlanResult) error {
	var b strings.Builder
	b.WriteString(header(th, "Feasibility "+string(r.ProductCode)))
	b.WriteString("\n")
	if r.Feasibility != nil {
		fmt.Fprintf(&b, "Max sets: %s\n", th.Bold.Render(formatSets(r.Feasibility.MaxSets)))
		if len(r.Bottlenecks) > 0 {
			fmt.Fprintf(&b, "Bottleneck chain: %s\n", joinCodes(r.Bottlenecks, " → "))
		}
		b.WriteString("\n")
		renderAssembly(&b, th, r.Feasibility, "", true, true, false)
	}
	if len(r.Alerts) > 0 {
		b.WriteString("\n")
		renderAlerts(&b, th, r.Alerts)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSchedule renders the Gantt task table and plan summary of r followed by its alerts
func WriteSchedule(w io.Writer, th *Theme, r *dto.PlanResult) error {
	s := r.Schedule
	if s == nil {
		return WriteFeasibility(w, th, r)
	}

	var b strings.Builder
	b.WriteString(header(th, fmt.Sprintf("Schedule %s x%s (%s)", s.ProductCode, formatQty(s.Quantity), s.Policy)))
	b.WriteString("\n")

	rows := make([][]string, 0)
	for _, t := range s.Tasks() {
		required, stock, deficit := "", "", ""
		if t.Detail != nil {
			required = formatQty(t.Detail.RequiredQuantity)
			stock = formatQty(t.Detail.AvailableInventory)
			deficit = formatQty(t.Detail.Deficit)
		}
		rows = append(rows, []string{
			strings.Repeat("  ", t.Level) + string(t.Code),
			string(t.Type),
			t.StartDate.Format(dateLayout),
			t.EndDate.Format(dateLayout),
			strconv.Itoa(t.Duration),
			required,
			stock,
			deficit,
			statusStyle(th, t.Status).Render(string(t.Status)),
		})
	}
	b.WriteString(renderTable(th,
		[]string{"Task", "Type", "Start", "End", "Days", "Required", "Stock", "Deficit", "Status"}, rows))

	b.WriteString("\n")
	writeSummary(&b, th, s)
	if r.Feasibility != nil {
		fmt.Fprintf(&b, "Max sets from stock: %s\n", formatSets(r.MaxSets()))
	}

	if len(r.Alerts) > 0 {
		b.WriteString("\n")
		renderAlerts(&b, th, r.Alerts)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSummary(b *strings.Builder, th *Theme, s *entities.Schedule) {
	feasible := th.Green.Render("yes")
	if !s.Feasible {
		feasible = th.Red.Render("no")
	}
	fmt.Fprintf(b, "Reference date: %s\n", s.ReferenceDate.Format(dateLayout))
	if s.TargetDate != nil {
		fmt.Fprintf(b, "Target date:    %s\n", s.TargetDate.Format(dateLayout))
	}
	fmt.Fprintf(b, "Earliest start: %s\n", s.EarliestStart.Format(dateLayout))
	fmt.Fprintf(b, "Projected end:  %s\n", s.ProjectedEnd.Format(dateLayout))
	fmt.Fprintf(b, "Cycle days:     %d\n", s.TotalCycleDays)
	fmt.Fprintf(b, "Feasible:       %s\n", feasible)
	if s.ShiftDays > 0 {
		fmt.Fprintf(b, "Shift:          %d days\n", s.ShiftDays)
	}
	if s.OverdueDays > 0 {
		fmt.Fprintf(b, "Overdue:        %d days\n", s.OverdueDays)
	}
	if len(s.CriticalPath) > 0 {
		fmt.Fprintf(b, "Critical path:  %s\n", joinCodes(s.CriticalPath, " → "))
	}
	if len(s.NotReadyMaterials) > 0 {
		fmt.Fprintf(b, "Not ready:      %s\n", joinCodes(s.NotReadyMaterials, ", "))
	}
}

// WriteAlerts renders alerts, critical first as given
func WriteAlerts(w io.Writer, th *Theme, alerts []entities.RiskAlert) error {
	var b strings.Builder
	renderAlerts(&b, th, alerts)
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteValidation renders the outcome of a BOM validation
func WriteValidation(w io.Writer, th *Theme, v *services.ValidationResult) error {
	var b strings.Builder
	b.WriteString(header(th, "BOM validation"))
	b.WriteString("\n")

	for _, cycle := range v.CyclePaths {
		fmt.Fprintf(&b, "%s cycle %s\n", th.Red.Render("✗"), joinCodes(cycle, " → "))
	}
	for _, d := range v.Errors {
		if d.Kind == entities.DiagCycleDetected {
			continue
		}
		fmt.Fprintf(&b, "%s %s: %s\n", th.Red.Render("✗"), d.Kind, d.Message)
	}
	for _, d := range v.Warnings {
		fmt.Fprintf(&b, "%s %s: %s\n", th.Yellow.Render("!"), d.Kind, d.Message)
	}

	if v.Valid() {
		fmt.Fprintf(&b, "%s BOM is valid (%d warnings)\n", th.Green.Render("✔"), len(v.Warnings))
	} else {
		fmt.Fprintf(&b, "%s %d errors, %d warnings\n", th.Red.Render("✗"), len(v.Errors), len(v.Warnings))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderAssembly(b *strings.Builder, th *Theme, n *entities.AssemblyNode, prefix string, last, root, limiting bool) {
	line := prefix
	childPrefix := prefix
	if !root {
		if last {
			line += treeCorner
			childPrefix += treeSpace
		} else {
			line += treeBranch
			childPrefix += treePipe
		}
	}

	label := th.Bold.Render(string(n.Code))
	if n.Name != "" && n.Name != string(n.Code) {
		label += " " + th.Dim.Render(n.Name)
	}

	var detail string
	switch {
	case n.Truncated != entities.NotTruncated:
		detail = th.Yellow.Render(fmt.Sprintf("truncated (%s)", n.Truncated))
	case n.IsAlternativeGroup():
		detail = fmt.Sprintf("pool %s, need %s/set → %s sets",
			formatQty(n.TotalAvailable), formatQty(n.RequiredPerSet), formatSets(n.MaxSets))
	case len(n.Children) > 0:
		detail = fmt.Sprintf("stock %s + %s buildable, need %s/set → %s sets",
			formatQty(n.Inventory), formatSets(n.Producible), formatQty(n.RequiredPerSet), formatSets(n.MaxSets))
	default:
		detail = fmt.Sprintf("stock %s, need %s/set → %s sets",
			formatQty(n.Inventory), formatQty(n.RequiredPerSet), formatSets(n.MaxSets))
	}

	b.WriteString(line + label + "  " + th.Blue.Render("[ "+detail+" ]"))
	if limiting {
		b.WriteString(" " + th.Red.Render("◀ limiting"))
	}
	b.WriteString("\n")

	for i, child := range n.Children {
		renderAssembly(b, th, child, childPrefix, i == len(n.Children)-1, false, child == n.LimitingFactor)
	}
}

func renderAlerts(b *strings.Builder, th *Theme, alerts []entities.RiskAlert) {
	b.WriteString(header(th, "Risk alerts"))
	b.WriteString("\n")
	for _, a := range alerts {
		indicator := th.Yellow.Render("● WARNING ")
		if a.IsCritical() {
			indicator = th.Red.Render("● CRITICAL")
		}
		fmt.Fprintf(b, "%s %s %s: %s\n", indicator, th.Dim.Render("["+string(a.Type)+"]"), a.ItemID, a.Message)
		if a.AISuggestion != "" {
			fmt.Fprintf(b, "    → %s\n", a.AISuggestion)
		}
	}
}

// renderTable renders an aligned table with a header separator line
func renderTable(th *Theme, headers []string, rows [][]string) string {
	const colGap = 2
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(style(cell))
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return th.Header.Render(s) })
	separators := make([]string, len(widths))
	for i, w := range widths {
		separators[i] = strings.Repeat("─", w)
	}
	writeRow(separators, func(s string) string { return th.Dim.Render(s) })
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}

func header(th *Theme, text string) string {
	upper := strings.ToUpper(text)
	return th.Header.Render(upper) + "\n" + th.Dim.Render(strings.Repeat("─", lipgloss.Width(upper))) + "\n"
}

func statusStyle(th *Theme, s entities.TaskStatus) lipgloss.Style {
	switch s {
	case entities.StatusCritical:
		return th.Red
	case entities.StatusWarning:
		return th.Yellow
	default:
		return th.Green
	}
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatSets(n int64) string {
	if n == entities.Unlimited {
		return "∞"
	}
	return strconv.FormatInt(n, 10)
}

func joinCodes(codes []entities.MaterialCode, sep string) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, sep)
}
