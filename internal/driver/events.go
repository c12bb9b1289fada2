package driver

import "time"

// Stage describes a high-level outline pipeline phase.
type Stage string

const (
	// StageRead is the file loading stage.
	StageRead Stage = "read"
	// StageDecode is the event-script decoding stage.
	StageDecode Stage = "decode"
	// StageConstruct is the declaration construction stage.
	StageConstruct Stage = "construct"
	// StageLink is the result assembly stage.
	StageLink Stage = "link"
	// StageBind is the reference-cache stage.
	StageBind Stage = "bind"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the unit is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the unit is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the unit is done.
	StatusDone Status = "done"
	// StatusError indicates the unit encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a unit (or for the overall run when Path is
// empty).
type Event struct {
	Path    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, path string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Path: path, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func emitQueued(sink ProgressSink, paths []string) {
	if sink == nil {
		return
	}
	for _, path := range paths {
		sink.OnEvent(Event{Path: path, Stage: StageRead, Status: StatusQueued})
	}
}
