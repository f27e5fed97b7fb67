package behavioral

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/teachtree/internal/models"
)

// Transcript is a parsed, ordered list of raw events
type Transcript struct {
	Name    string            // File name without extension, used as the state key
	Events  []models.RawEvent // Events in file order
	Skipped []LineError       // Lines that could not be parsed
}

// LineError records a transcript line that was skipped
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// ParseTranscriptFile reads a transcript from a JSONL file (one event per
// line) or a JSON array file.
func ParseTranscriptFile(path string) (*Transcript, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript file: %w", err)
	}
	defer file.Close()

	transcript, err := ParseTranscript(file)
	if err != nil {
		return nil, err
	}
	transcript.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return transcript, nil
}

// ParseTranscript reads events from r. Malformed or incomplete lines are
// skipped and recorded in Skipped rather than failing the whole transcript.
func ParseTranscript(r io.Reader) (*Transcript, error) {
	reader := bufio.NewReader(r)

	peek, skippedLines, err := peekFirstNonSpace(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading transcript: %w", err)
	}
	if peek == '[' {
		return parseTranscriptArray(reader)
	}

	transcript := &Transcript{Events: make([]models.RawEvent, 0)}

	scanner := bufio.NewScanner(reader)
	// Dialogue lines can be long
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)
	lineNum := skippedLines

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event models.RawEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			transcript.Skipped = append(transcript.Skipped, LineError{Line: lineNum, Err: err})
			continue
		}
		if err := event.Validate(); err != nil {
			transcript.Skipped = append(transcript.Skipped, LineError{Line: lineNum, Err: err})
			continue
		}
		transcript.Events = append(transcript.Events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading transcript: %w", err)
	}

	return transcript, nil
}

func parseTranscriptArray(r io.Reader) (*Transcript, error) {
	var events []models.RawEvent
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to parse transcript array: %w", err)
	}

	transcript := &Transcript{Events: make([]models.RawEvent, 0, len(events))}
	for i, event := range events {
		if err := event.Validate(); err != nil {
			transcript.Skipped = append(transcript.Skipped, LineError{Line: i + 1, Err: err})
			continue
		}
		transcript.Events = append(transcript.Events, event)
	}
	return transcript, nil
}

// peekFirstNonSpace returns the first non-whitespace byte without consuming
// it, and the number of newlines consumed before it. An empty reader yields 0.
func peekFirstNonSpace(r *bufio.Reader) (byte, int, error) {
	newlines := 0
	for {
		b, err := r.Peek(1)
		if err == io.EOF {
			return 0, newlines, nil
		}
		if err != nil {
			return 0, newlines, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			return b[0], newlines, nil
		}
		if b[0] == '\n' {
			newlines++
		}
		if _, err := r.ReadByte(); err != nil {
			return 0, newlines, err
		}
	}
}
