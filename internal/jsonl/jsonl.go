// Package jsonl reads and writes newline-delimited JSON records.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxLineSize bounds a single record.
const maxLineSize = 4 << 20

// Read reads a JSONL file and returns each non-empty, parseable line as a
// json.RawMessage. Malformed lines are skipped.
func Read(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// Decode returns each non-empty, parseable line of r.
func Decode(r io.Reader) ([]json.RawMessage, error) {
	var records []json.RawMessage
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Write atomically writes records to path using the temp-file, fsync,
// rename pattern.
func Write(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Encode writes one record per line.
func Encode(w io.Writer, records []json.RawMessage) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := bw.Write(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing buffer: %w", err)
	}
	return nil
}

// Marshal encodes each record as one JSON line.
func Marshal(records []map[string]any) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(records))
	for i, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Unmarshal decodes JSON objects into maps. Numbers stay json.Number so
// integer ids keep their exact text.
func Unmarshal(lines []json.RawMessage) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(lines))
	for i, line := range lines {
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
