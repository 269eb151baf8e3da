// Package stream provides streaming validation of large collections of
// Flockwave messages, such as recorded message logs.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"unicode"

	fw "github.com/collmot/flockwave-spec"
)

// Validator validates a single decoded message.
type Validator interface {
	Validate(candidate any) error
}

// MessageResult represents the validation result for a single message.
type MessageResult struct {
	// Index is the position of the message in the stream, or -1 for
	// errors that concern the stream as a whole
	Index int

	// ID is the id of the message (if present)
	ID string

	// CorrelationID is the correlationId of a response (if present)
	CorrelationID string

	// Type is the type of the message body (if present)
	Type string

	// Err is the validation error of the message, or the error that
	// prevented it from being decoded
	Err error
}

// Valid returns true if the message conforms to the schema.
func (r *MessageResult) Valid() bool {
	return r.Err == nil
}

// MessageValidator validates messages in a streaming fashion.
type MessageValidator struct {
	validator Validator

	// bufferSize is the channel buffer size
	bufferSize int

	// workerCount is the number of parallel workers
	workerCount int
}

// NewMessageValidator creates a new streaming message validator. The
// worker count is taken from opts.
func NewMessageValidator(v Validator, opts ...fw.Option) *MessageValidator {
	o := fw.Apply(opts...)
	return &MessageValidator{
		validator:   v,
		bufferSize:  100,
		workerCount: o.WorkerCount,
	}
}

// WithBufferSize sets the channel buffer size.
func (v *MessageValidator) WithBufferSize(size int) *MessageValidator {
	if size > 0 {
		v.bufferSize = size
	}
	return v
}

// WithWorkerCount sets the number of parallel workers.
func (v *MessageValidator) WithWorkerCount(count int) *MessageValidator {
	if count > 0 {
		v.workerCount = count
	}
	return v
}

type item struct {
	index int
	msg   any
}

// decode reads the stream and calls emit for every message, in order. A
// top-level JSON array is a sequence of messages; any other value is a
// single message. Decoding stops at the first malformed message since the
// rest of the stream cannot be located reliably.
func decode(ctx context.Context, r io.Reader, emit func(item) bool, fail func(*MessageResult)) {
	br := bufio.NewReader(r)
	first, err := peekValue(br)
	if err != nil {
		fail(&MessageResult{Index: -1, Err: fmt.Errorf("failed to read messages: %w", err)})
		return
	}

	decoder := json.NewDecoder(br)
	decoder.UseNumber()

	if first != '[' {
		var msg any
		if err := decoder.Decode(&msg); err != nil {
			fail(&MessageResult{Index: 0, Err: fmt.Errorf("failed to decode message 0: %w", err)})
			return
		}
		emit(item{index: 0, msg: msg})
		return
	}

	if _, err := decoder.Token(); err != nil {
		fail(&MessageResult{Index: -1, Err: fmt.Errorf("failed to read message array: %w", err)})
		return
	}
	for index := 0; decoder.More(); index++ {
		if err := ctx.Err(); err != nil {
			fail(&MessageResult{Index: index, Err: err})
			return
		}
		var msg any
		if err := decoder.Decode(&msg); err != nil {
			fail(&MessageResult{Index: index, Err: fmt.Errorf("failed to decode message %d: %w", index, err)})
			return
		}
		if !emit(item{index: index, msg: msg}) {
			fail(&MessageResult{Index: index, Err: ctx.Err()})
			return
		}
	}
	if _, err := decoder.Token(); err != nil {
		fail(&MessageResult{Index: -1, Err: fmt.Errorf("unterminated message array: %w", err)})
	}
}

// peekValue returns the first non-space byte of the stream without
// consuming it.
func peekValue(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, errors.New("no messages")
			}
			return 0, err
		}
		if !unicode.IsSpace(rune(b[0])) {
			return b[0], nil
		}
		if _, err := br.ReadByte(); err != nil {
			return 0, err
		}
	}
}

// check validates a single decoded message.
func (v *MessageValidator) check(it item) *MessageResult {
	result := &MessageResult{Index: it.index}

	if msg, ok := it.msg.(map[string]any); ok {
		result.ID, _ = msg["id"].(string)
		result.CorrelationID, _ = msg["correlationId"].(string)
		if body, ok := msg["body"].(map[string]any); ok {
			result.Type, _ = body["type"].(string)
		}
	}

	if err := v.validator.Validate(it.msg); err != nil {
		result.Err = fmt.Errorf("message %d: %w", it.index, err)
	}
	return result
}

// ValidateStream validates messages from an io.Reader one at a time,
// emitting results as messages are processed.
func (v *MessageValidator) ValidateStream(ctx context.Context, r io.Reader) <-chan *MessageResult {
	results := make(chan *MessageResult, v.bufferSize)

	go func() {
		defer close(results)
		decode(ctx, r,
			func(it item) bool {
				select {
				case results <- v.check(it):
					return true
				case <-ctx.Done():
					return false
				}
			},
			func(res *MessageResult) { results <- res })
	}()

	return results
}

// ValidateStreamParallel validates messages in parallel while preserving
// their order in the output. Messages are decoded incrementally, so the
// stream is never held in memory as a whole.
func (v *MessageValidator) ValidateStreamParallel(ctx context.Context, r io.Reader) <-chan *MessageResult {
	results := make(chan *MessageResult, v.bufferSize)

	go func() {
		defer close(results)

		workChan := make(chan item, v.bufferSize)
		resultChan := make(chan *MessageResult, v.bufferSize)

		// Start workers
		var wg sync.WaitGroup
		for i := 0; i < v.workerCount; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for it := range workChan {
					resultChan <- v.check(it)
				}
			}()
		}

		// Decode and collect in separate goroutines
		go func() {
			decode(ctx, r,
				func(it item) bool {
					select {
					case workChan <- it:
						return true
					case <-ctx.Done():
						return false
					}
				},
				func(res *MessageResult) { resultChan <- res })
			close(workChan)
			wg.Wait()
			close(resultChan)
		}()

		// Collect results and reorder. Stream level errors are emitted
		// after every message that precedes them.
		pending := make(map[int]*MessageResult)
		var trailing []*MessageResult
		nextIndex := 0

		for result := range resultChan {
			if result.Index < 0 {
				trailing = append(trailing, result)
				continue
			}
			pending[result.Index] = result
			for {
				r, ok := pending[nextIndex]
				if !ok {
					break
				}
				results <- r
				delete(pending, nextIndex)
				nextIndex++
			}
		}
		for _, r := range trailing {
			results <- r
		}
	}()

	return results
}

// StreamResult aggregates results from streaming validation.
type StreamResult struct {
	// TotalMessages is the number of messages validated
	TotalMessages int

	// InvalidMessages is the count of messages that did not conform
	InvalidMessages int

	// ByType counts the validated messages per body type
	ByType map[string]int

	// Failures maps the index of each invalid message to its error
	Failures map[int]error

	// ProcessingErrors are errors that occurred while reading the stream
	// (not validation errors)
	ProcessingErrors []error
}

// Aggregate collects all results from a streaming validation.
func Aggregate(results <-chan *MessageResult) *StreamResult {
	agg := &StreamResult{
		ByType:   make(map[string]int),
		Failures: make(map[int]error),
	}

	for result := range results {
		if result.Err != nil && !fw.IsValidationError(result.Err) {
			agg.ProcessingErrors = append(agg.ProcessingErrors, result.Err)
			continue
		}

		agg.TotalMessages++
		if result.Type != "" {
			agg.ByType[result.Type]++
		}
		if result.Err != nil {
			agg.InvalidMessages++
			agg.Failures[result.Index] = result.Err
		}
	}

	return agg
}

// HasErrors returns true if any message was invalid or the stream could
// not be read to the end.
func (r *StreamResult) HasErrors() bool {
	return r.InvalidMessages > 0 || len(r.ProcessingErrors) > 0
}

// Summary returns a human-readable summary of the validation.
func (r *StreamResult) Summary() string {
	return fmt.Sprintf(
		"Validated %d messages: %d invalid, %d processing errors",
		r.TotalMessages,
		r.InvalidMessages,
		len(r.ProcessingErrors),
	)
}
