// Package store persists search traces as JSON lines.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

// Record kinds.
const (
	KindTrace  = "trace"
	KindResult = "result"
)

// Record is one line of a trace file. Trace lines carry Entry; the line
// closing a run carries Result without its trace.
type Record struct {
	Kind   string                   `json:"kind"`
	Trial  int                      `json:"trial"`
	Seed   uint64                   `json:"seed"`
	Entry  *optimization.TraceEntry `json:"entry,omitempty"`
	Result *optimization.Result     `json:"result,omitempty"`
}

// TraceWriter writes records to a JSONL stream.
// It uses buffered I/O and is safe for concurrent use.
type TraceWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *bufio.Writer
	path   string
}

// NewTraceWriter writes to w. Close flushes but does not close w.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{writer: bufio.NewWriterSize(w, 64*1024)}
}

// CreateTraceFile creates (or truncates) the file at path, creating parent
// directories as needed.
func CreateTraceFile(path string) (*TraceWriter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	return &TraceWriter{
		closer: file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
	}, nil
}

// Path returns the file path, or "" for writers created by NewTraceWriter.
func (tw *TraceWriter) Path() string { return tw.path }

// WriteRun writes every trace entry of res followed by its result line.
func (tw *TraceWriter) WriteRun(trial int, seed uint64, res *optimization.Result) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	for i := range res.Trace {
		if err := tw.write(Record{Kind: KindTrace, Trial: trial, Seed: seed, Entry: &res.Trace[i]}); err != nil {
			return err
		}
	}
	summary := *res
	summary.Trace = nil
	return tw.write(Record{Kind: KindResult, Trial: trial, Seed: seed, Result: &summary})
}

func (tw *TraceWriter) write(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal trace record: %w", err)
	}
	if _, err := tw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write trace record: %w", err)
	}
	if err := tw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Flush writes any buffered data.
func (tw *TraceWriter) Flush() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush trace writer: %w", err)
	}
	return nil
}

// Close flushes buffered data and closes the file, if any.
func (tw *TraceWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if err := tw.writer.Flush(); err != nil {
		if tw.closer != nil {
			tw.closer.Close()
		}
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if tw.closer != nil {
		if err := tw.closer.Close(); err != nil {
			return fmt.Errorf("failed to close trace file: %w", err)
		}
	}
	return nil
}

// ReadRecords reads every record of a JSONL stream.
func ReadRecords(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var records []Record
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trace record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan trace: %w", err)
	}
	return records, nil
}
