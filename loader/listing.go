package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseListing reads a relocatable word listing. Each non-empty line holds
// one word as hexadecimal digits, optionally prefixed by "0x" or by an
// "ADDR:" column. A line of the form [XXXX] holds an address relative to
// the start of the program; base is added to it. Text after the first
// field, and lines starting with ';' or '#', are ignored.
func ParseListing(r io.Reader, base uint64) ([]uint64, error) {
	var words []uint64

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' || line[0] == '#' {
			continue
		}

		if strings.HasPrefix(line, "[") {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				return nil, fmt.Errorf("line %d: unterminated relocation %q", lineNo, line)
			}
			rel, err := strconv.ParseUint(strings.TrimSpace(line[1:end]), 16, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid relocation %q: %w", lineNo, line, err)
			}
			words = append(words, base+rel)
			continue
		}

		if idx := strings.IndexByte(line, ':'); idx >= 0 {
			line = strings.TrimSpace(line[idx+1:])
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, fmt.Errorf("line %d: missing word", lineNo)
		}
		field := strings.TrimPrefix(strings.TrimPrefix(fields[0], "0x"), "0X")
		word, err := strconv.ParseUint(field, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid word %q: %w", lineNo, fields[0], err)
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// ParseDump reads the bytes of a memory text dump. Comment and blank lines
// are skipped and an "AAAA:" column is ignored; the bytes are returned in
// file order starting at address 0.
func ParseDump(r io.Reader) ([]byte, error) {
	var data []byte

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.IndexByte(line, ':'); idx >= 0 {
			line = line[idx+1:]
		}
		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseUint(field, 16, 8)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid byte %q: %w", lineNo, field, err)
			}
			data = append(data, byte(v))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data, nil
}
