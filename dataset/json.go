package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
)

// ============================================================================
// JSON HELPER — Parses JSON exports into []Case
// ============================================================================
// Accepts an array of objects (pandas to_json(orient="records")) or
// line-delimited objects. Malformed array elements and NDJSON lines are skipped;
// an array that is not valid JSON at all fails the load.
// ============================================================================

// DecodeJSON reads cases from an array of objects or from NDJSON.
func DecodeJSON(r io.Reader) ([]Case, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	if first == '[' {
		return decodeArray(br)
	}
	return decodeLines(br)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

func decodeArray(r io.Reader) ([]Case, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON array: %w", err)
	}

	cases := make([]Case, 0, len(raw))
	skipped := 0
	for _, elem := range raw {
		var c Case
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) || json.Unmarshal(elem, &c) != nil {
			skipped++
			continue
		}
		cases = append(cases, c)
	}
	if skipped > 0 {
		log.Printf("⚠️ Skipped %d malformed JSON array elements", skipped)
	}
	return cases, nil
}

func decodeLines(r io.Reader) ([]Case, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var cases []Case
	skipped := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var c Case
		if err := json.Unmarshal(line, &c); err != nil {
			skipped++
			continue
		}
		cases = append(cases, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read NDJSON: %w", err)
	}
	if skipped > 0 {
		log.Printf("⚠️ Skipped %d malformed NDJSON lines", skipped)
	}
	return cases, nil
}
