package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

type Logger struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

type Event struct {
	TS         string `json:"ts"`
	Level      string `json:"level"`
	Event      string `json:"event"`
	Input      string `json:"input,omitempty"`
	Block      int    `json:"block,omitempty"`
	Category   string `json:"category,omitempty"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`
	OutputFile string `json:"output_file,omitempty"`
	Error      string `json:"error,omitempty"`
}

func New(stderr io.Writer, logFile string, verbose bool) (*Logger, io.Closer, error) {
	if logFile == "" {
		return &Logger{w: stderr, verbose: verbose}, nil, nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	w := io.MultiWriter(stderr, f)
	return &Logger{w: w, verbose: verbose}, f, nil
}

func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

// Emit writes one NDJSON line. Events at level "debug" are dropped unless
// the logger is verbose.
func (l *Logger) Emit(ev Event) {
	if l == nil || l.w == nil {
		return
	}
	if ev.Level == "debug" && !l.verbose {
		return
	}
	if ev.TS == "" {
		ev.TS = time.Now().Format(time.RFC3339Nano)
	}
	if ev.Level == "" {
		ev.Level = "info"
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(append(b, '\n'))
}
