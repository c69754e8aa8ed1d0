package editor

import (
	"github.com/msto63/recordpad/internal/analyzer/service"
)

// Message types for tea.Cmd async operations

// analysisMsg is sent when an analysis finished
type analysisMsg struct {
	revision int
	manual   bool
	analysis *service.Analysis
	err      error
}

// debounceMsg triggers a live analysis if no edit happened since
type debounceMsg struct {
	revision int
}

// savedMsg is sent when the buffer was written to disk
type savedMsg struct {
	path string
	err  error
}

// formattedMsg carries the canonical layout of the buffer
type formattedMsg struct {
	text string
	err  error
}
