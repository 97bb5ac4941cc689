// Package jsonl streams line-delimited document records. Malformed lines
// are counted and skipped with a warning; they never abort the stream.
package jsonl

import (
	"bufio"
	"io"
	"log"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/mohammad-safakhou/corpusfilter/internal/record"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxLineBytes bounds a single record line. Web documents run long; 64 MiB
// is far above anything the extractor produces.
const maxLineBytes = 64 << 20

// Reader yields one record per input line.
type Reader struct {
	scanner *bufio.Scanner
	logger  *log.Logger
	line    int
	skipped int
}

// NewReader wraps r. logger may be nil to silence skip warnings.
func NewReader(r io.Reader, logger *log.Logger) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return &Reader{scanner: sc, logger: logger}
}

// Next returns the next well-formed record, skipping malformed lines.
// It returns io.EOF when the stream is exhausted.
func (r *Reader) Next() (*record.Document, error) {
	for r.scanner.Scan() {
		r.line++
		raw := r.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var doc record.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			r.skipped++
			if r.logger != nil {
				r.logger.Printf("warn: skipping malformed record at line %d: %v", r.line, err)
			}
			continue
		}
		return &doc, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Skipped reports how many malformed lines were dropped so far.
func (r *Reader) Skipped() int { return r.skipped }

// Writer appends records as JSON lines. Safe for concurrent use; the
// worker pool funnels output through one Writer.
type Writer struct {
	mu  sync.Mutex
	w   *bufio.Writer
	n   int
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one record. After the first error every call returns it.
func (w *Writer) Write(doc *record.Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	buf, err := json.Marshal(doc)
	if err != nil {
		w.err = err
		return err
	}
	if _, err := w.w.Write(buf); err != nil {
		w.err = err
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = err
		return err
	}
	w.n++
	return nil
}

// Count reports how many records were written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Flush drains the buffer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}
