// Package docs reads batch input documents and writes processed results.
package docs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cognicore/textprep/internal/logging"
	"github.com/cognicore/textprep/pkg/textprep/internalerr"
	"github.com/cognicore/textprep/pkg/textprep/normalize"
)

// Format is a batch input layout.
type Format string

const (
	FormatJSONL Format = "jsonl" // one {"id","text"} object per line
	FormatLines Format = "lines" // one text per line
	FormatHTML  Format = "html"  // one HTML document per file
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSONL, FormatLines, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("unknown input format %q: %w", s, internalerr.ErrInvalidInput)
}

// Item is one input document.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Result is one processed document.
type Result struct {
	ID     string `json:"id"`
	Output string `json:"output"`
}

// Load reads items from path in the given format.
func Load(path string, f Format, log logging.Logger) ([]Item, error) {
	switch f {
	case FormatJSONL:
		return LoadFromJSONL(path, log)
	case FormatLines:
		return LoadLines(path)
	case FormatHTML:
		return LoadHTML(path)
	}
	return nil, fmt.Errorf("unknown input format %q: %w", f, internalerr.ErrInvalidInput)
}

// LoadFromJSONL loads items from a JSONL file. Malformed lines are logged
// and skipped; an item without an id gets its line number.
func LoadFromJSONL(path string, log logging.Logger) ([]Item, error) {
	if log == nil {
		log = logging.Nop{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var items []Item
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			log.Warn("skipping malformed JSON", "path", path, "line", i+1, "error", err.Error())
			continue
		}
		if item.ID == "" {
			item.ID = strconv.Itoa(i + 1)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found in %s: %w", path, internalerr.ErrNotFound)
	}

	return items, nil
}

// LoadLines treats every non-blank line as a document identified by its
// line number.
func LoadLines(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLines(f)
}

// ReadLines is LoadLines over a reader.
func ReadLines(r io.Reader) ([]Item, error) {
	return readLines(r, false)
}

// ReadAllLines is ReadLines without skipping blank lines, so item i is
// always line i+1.
func ReadAllLines(r io.Reader) ([]Item, error) {
	return readLines(r, true)
}

func readLines(r io.Reader, keepBlank bool) ([]Item, error) {
	var items []Item
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 64*1024), 16*1024*1024)
	n := 0
	for scan.Scan() {
		n++
		line := scan.Text()
		if !keepBlank && strings.TrimSpace(line) == "" {
			continue
		}
		items = append(items, Item{ID: strconv.Itoa(n), Text: line})
	}
	return items, scan.Err()
}

// LoadHTML reads an HTML file as one document holding its visible text.
func LoadHTML(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	return []Item{{
		ID:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Text: normalize.StripHTML(string(data)),
	}}, nil
}

// Texts returns the text of each item, in order.
func Texts(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

// WriteJSONL writes one result object per line.
func WriteJSONL(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
