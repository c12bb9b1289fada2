package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records one timed stage of a unit run.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer collects stage durations for a single run. Begin/End pairs match
// by index, so nested or overlapping stages stay independent.
type Timer struct {
	phases []Phase
}

// NewTimer creates an empty timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin opens a phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase at idx and attaches an optional note. Out-of-range
// indexes are ignored, so callers can pass -1 when timing is off.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// PhaseReport — сжатая информация о фазе для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report — срез фаз и общая длительность в миллисекундах.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the recorded phases.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Summary renders the report as a fixed-width table.
func (r Report) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "total", r.TotalMS)
	return sb.String()
}

// Aggregate folds unit reports into one rollup. Phases with the same name
// sum across units and keep first-seen order; per-unit notes do not
// survive the fold.
func Aggregate(reports ...Report) Report {
	var order []string
	sums := make(map[string]float64)
	total := 0.0
	for _, r := range reports {
		total += r.TotalMS
		for _, p := range r.Phases {
			if _, ok := sums[p.Name]; !ok {
				order = append(order, p.Name)
			}
			sums[p.Name] += p.DurationMS
		}
	}
	out := Report{TotalMS: total, Phases: make([]PhaseReport, len(order))}
	for i, name := range order {
		out.Phases[i] = PhaseReport{Name: name, DurationMS: sums[name]}
	}
	return out
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
