// Package prof runs the Go runtime profilers behind a single session
// object so commands can start and stop them as one unit.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options selects which profilers a session enables. Empty paths stay off.
type Options struct {
	// CPUPath receives pprof CPU samples for the whole session.
	CPUPath string
	// MemPath receives a heap profile written when the session stops.
	MemPath string
	// TracePath receives the runtime execution trace.
	TracePath string
}

// Session owns the files backing the active profilers. A nil session is
// inert, so callers may defer Stop unconditionally.
type Session struct {
	cpuFile   *os.File
	traceFile *os.File
	memPath   string
	done      bool
}

// Start enables the profilers requested in opts. On failure it unwinds
// whatever already started and returns the error.
func Start(opts Options) (*Session, error) {
	s := &Session{memPath: opts.MemPath}
	if opts.CPUPath != "" {
		f, err := os.Create(opts.CPUPath)
		if err != nil {
			return nil, fmt.Errorf("create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("start cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	if opts.TracePath != "" {
		f, err := os.Create(opts.TracePath)
		if err != nil {
			s.stopCPU()
			return nil, fmt.Errorf("create runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, fmt.Errorf("start runtime trace: %w", err)
		}
		s.traceFile = f
	}
	return s, nil
}

// Stop halts the active profilers and, when requested, writes the heap
// profile. Safe to call on a nil session and more than once.
func (s *Session) Stop() error {
	if s == nil || s.done {
		return nil
	}
	s.done = true
	if s.traceFile != nil {
		trace.Stop()
		_ = s.traceFile.Close()
		s.traceFile = nil
	}
	s.stopCPU()
	if s.memPath == "" {
		return nil
	}
	return writeHeap(s.memPath)
}

func (s *Session) stopCPU() {
	if s.cpuFile == nil {
		return
	}
	pprof.StopCPUProfile()
	_ = s.cpuFile.Close()
	s.cpuFile = nil
}

func writeHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heap profile: %w", err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write heap profile: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close heap profile: %w", err)
	}
	return nil
}
