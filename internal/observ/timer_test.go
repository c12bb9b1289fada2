package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	a := timer.Begin("decode")
	timer.End(a, "12 events")
	b := timer.Begin("construct")
	timer.End(b, "")
	timer.End(-1, "ignored")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "decode" || report.Phases[0].Note != "12 events" {
		t.Fatalf("unexpected first phase: %+v", report.Phases[0])
	}
	if report.TotalMS < 0 {
		t.Fatalf("expected a non-negative total, got %f", report.TotalMS)
	}

	summary := report.Summary()
	if !strings.Contains(summary, "decode") || !strings.Contains(summary, "// 12 events") {
		t.Fatalf("unexpected summary:\n%s", summary)
	}
}

func TestAggregate(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{
		{Name: "read", DurationMS: 1},
		{Name: "construct", DurationMS: 2},
	}}
	b := Report{TotalMS: 5, Phases: []PhaseReport{
		{Name: "construct", DurationMS: 4},
		{Name: "bind", DurationMS: 1},
	}}

	got := Aggregate(a, b)
	if got.TotalMS != 8 {
		t.Fatalf("expected total 8, got %f", got.TotalMS)
	}
	if len(got.Phases) != 3 {
		t.Fatalf("expected 3 folded phases, got %d", len(got.Phases))
	}
	want := []struct {
		name string
		ms   float64
	}{{"read", 1}, {"construct", 6}, {"bind", 1}}
	for i, w := range want {
		if got.Phases[i].Name != w.name || got.Phases[i].DurationMS != w.ms {
			t.Fatalf("phase %d: got %+v, want %s=%f", i, got.Phases[i], w.name, w.ms)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	report := NewTimer().Report()
	if report.TotalMS != 0 || len(report.Phases) != 0 {
		t.Fatalf("expected an empty report, got %+v", report)
	}
}
