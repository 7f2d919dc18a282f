package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

type ImportLogStatus string

const (
	LogProcessing ImportLogStatus = "processing"
	LogSuccess    ImportLogStatus = "success"
	LogError      ImportLogStatus = "error"
	LogSkipped    ImportLogStatus = "skipped"
)

// DoneStep labels the terminal entry; its message is the JSON-encoded ImportRunResult.
const DoneStep = "DONE"

type ImportLogEntry struct {
	Step    string          `json:"step"`
	Status  ImportLogStatus `json:"status"`
	Message string          `json:"message"`
	Data    string          `json:"data,omitempty"`
}

// ImportLogSink receives log entries in processing order. Finalize is called
// exactly once per run with the final counters.
type ImportLogSink interface {
	Append(entry ImportLogEntry) error
	Finalize(result *ImportRunResult) error
}

// doneEntry builds the terminal sentinel carrying the run result.
func doneEntry(result *ImportRunResult) (ImportLogEntry, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return ImportLogEntry{}, fmt.Errorf("encode import result: %w", err)
	}
	status := LogSuccess
	if !result.Completed() {
		status = LogError
	}
	return ImportLogEntry{Step: DoneStep, Status: status, Message: string(payload)}, nil
}

// BufferedLogSink keeps every entry in memory for a single response.
type BufferedLogSink struct {
	mu      sync.Mutex
	entries []ImportLogEntry
	result  *ImportRunResult
}

func NewBufferedLogSink() *BufferedLogSink {
	return &BufferedLogSink{entries: []ImportLogEntry{}}
}

func (s *BufferedLogSink) Append(entry ImportLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *BufferedLogSink) Finalize(result *ImportRunResult) error {
	done, err := doneEntry(result)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, done)
	s.result = result
	return nil
}

// Entries returns a copy of the collected entries, sentinel included.
func (s *BufferedLogSink) Entries() []ImportLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ImportLogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *BufferedLogSink) Result() *ImportRunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// NDJSONLogSink writes one JSON object per line and flushes after each one
// when the writer supports it. After the first write error every further
// call returns that error.
type NDJSONLogSink struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	err     error
}

func NewNDJSONLogSink(w io.Writer) *NDJSONLogSink {
	sink := &NDJSONLogSink{w: w}
	if f, ok := w.(http.Flusher); ok {
		sink.flusher = f
	}
	return sink
}

func (s *NDJSONLogSink) Append(entry ImportLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode import log entry: %w", err)
	}
	line = append(line, '\n')
	if _, err := s.w.Write(line); err != nil {
		s.err = err
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

func (s *NDJSONLogSink) Finalize(result *ImportRunResult) error {
	done, err := doneEntry(result)
	if err != nil {
		return err
	}
	return s.Append(done)
}

// Err returns the first write error, if any.
func (s *NDJSONLogSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
