// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/problem"
	"github.com/katalvlaran/qoc/runstore"
	"github.com/katalvlaran/qoc/sweep"
)

// Lipgloss styles used by the reports.
var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")).
			Width(14)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9ece6a"))
	limitStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e0af68"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f7768e"))
)

func stateStyle(s optimize.State) lipgloss.Style {
	switch s {
	case optimize.Converged:
		return okStyle
	case optimize.Failed:
		return failStyle
	default:
		return limitStyle
	}
}

func row(key, value string) string {
	return keyStyle.Render(key) + value
}

func fmtErr(v float64) string {
	if math.IsNaN(v) {
		return dimStyle.Render("n/a")
	}

	return fmt.Sprintf("%.6e", v)
}

func fmtDur(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(time.Microsecond).String()
	default:
		return d.String()
	}
}

func renderResult(p *problem.Problem, backend string, res *optimize.Result) string {
	measure := p.Measure
	if measure == "" {
		measure = "TRACEDIFF"
	}
	lines := []string{
		titleStyle.Render("qoc · " + p.Name),
		"",
		row("state", stateStyle(res.State).Render(res.State.String())),
		row("reason", res.Reason),
		row("backend", backend+" / "+strings.ToUpper(measure)),
		row("fid error", fmtErr(res.InitialError)+" → "+fmtErr(res.FinalError)),
		row("grad norm", fmtErr(res.GradNorm)),
		row("iterations", humanize.Comma(int64(res.Iterations))),
		row("evaluations", humanize.Comma(int64(res.FunctionEvals))+" fidelity, "+
			humanize.Comma(int64(res.GradientEvals))+" gradient"),
		row("resets", humanize.Comma(int64(res.MemoryResets))),
		row("wall time", fmtDur(res.WallTime)),
		row("", dimStyle.Render(fmt.Sprintf("propagate %s  fidelity %s  gradient %s  optimizer %s",
			fmtDur(res.Timing.Propagate), fmtDur(res.Timing.Fidelity),
			fmtDur(res.Timing.Gradient), fmtDur(res.Timing.Optimizer)))),
	}
	if res.Err != nil {
		lines = append(lines, row("error", failStyle.Render(res.Err.Error())))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderSweep(outs []sweep.Outcome) string {
	best := sweep.Best(outs)
	lines := []string{titleStyle.Render(fmt.Sprintf("qoc sweep · %d runs", len(outs))), ""}
	for i, o := range outs {
		mark := "  "
		if i == best {
			mark = okStyle.Render("★ ")
		}
		if o.Err != nil {
			lines = append(lines, mark+keyStyle.Width(24).Render(o.Job)+failStyle.Render(o.Err.Error()))
			continue
		}
		r := o.Result
		lines = append(lines, mark+keyStyle.Width(24).Render(o.Job)+
			stateStyle(r.State).Width(16).Render(r.State.String())+
			fmtErr(r.InitialError)+" → "+fmtErr(r.FinalError)+
			dimStyle.Render(fmt.Sprintf("  %d it, %s", r.Iterations, fmtDur(r.WallTime))))
	}
	sum := sweep.Summarize(outs)
	lines = append(lines, "", dimStyle.Render(fmt.Sprintf("converged %d  limits %d  failed %d  errors %d",
		sum.States[optimize.Converged],
		sum.States[optimize.IterationLimit]+sum.States[optimize.TimeLimit],
		sum.States[optimize.Failed], sum.Errors)))

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderRuns(recs []runstore.Record) string {
	if len(recs) == 0 {
		return dimStyle.Render("no stored runs")
	}
	lines := []string{titleStyle.Render(fmt.Sprintf("qoc runs · %s", humanize.Comma(int64(len(recs))))), ""}
	for _, r := range recs {
		lines = append(lines, keyStyle.Width(38).Render(r.ID)+
			keyStyle.Width(24).Render(r.Problem)+
			stateStyle(r.State).Width(16).Render(r.State.String())+
			fmtErr(r.FinalError)+
			dimStyle.Render("  "+humanize.Time(r.CreatedAt)))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderRecord(r runstore.Record) string {
	lines := []string{
		titleStyle.Render("qoc run · " + r.ID),
		"",
		row("problem", r.Problem),
		row("state", stateStyle(r.State).Render(r.State.String())),
		row("reason", r.Reason),
		row("backend", r.Backend+" / "+r.Measure),
		row("fid error", fmtErr(r.InitialError)+" → "+fmtErr(r.FinalError)),
		row("grad norm", fmtErr(r.GradNorm)),
		row("iterations", humanize.Comma(int64(r.Iterations))),
		row("evaluations", humanize.Comma(int64(r.FunctionEvals))+" fidelity, "+
			humanize.Comma(int64(r.GradientEvals))+" gradient"),
		row("wall time", fmtDur(r.WallTime)),
		row("created", r.CreatedAt.Format(time.RFC3339)+dimStyle.Render(" ("+humanize.Time(r.CreatedAt)+")")),
	}
	if r.Error != "" {
		lines = append(lines, row("error", failStyle.Render(r.Error)))
	}

	return boxStyle.Render(strings.Join(lines, "\n"))
}
