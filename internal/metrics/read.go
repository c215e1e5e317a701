package metrics

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ReadFunc decodes one scorer output stream into a table.
type ReadFunc func(r io.Reader) (*Table, error)

// readers maps file extensions to their decoders. Every scorer collaborator
// is consumed through the same name-keyed contract, only the container
// format differs.
var readers = map[string]ReadFunc{
	".csv":   func(r io.Reader) (*Table, error) { return readDelimited(r, ',') },
	".tsv":   func(r io.Reader) (*Table, error) { return readDelimited(r, '\t') },
	".jsonl": readJSONL,
}

// Extensions returns the registered scorer file extensions, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(readers))
	for ext := range readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ReadFile decodes a scorer output file, choosing the decoder by extension.
func ReadFile(path string) (*Table, error) {
	read, ok := readers[filepath.Ext(path)]
	if !ok {
		return nil, fmt.Errorf("no metrics reader for %s: unsupported extension %q", path, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scorer output: %w", err)
	}
	defer f.Close()
	t, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("read scorer output %s: %w", path, err)
	}
	return t, nil
}

// parseCell interprets a delimited-file field: empty means missing, numeric
// text becomes a number, anything else stays text.
func parseCell(field string) cty.Value {
	field = strings.TrimSpace(field)
	if field == "" || field == "NA" {
		return cty.NilVal
	}
	if n, err := cty.ParseNumberVal(field); err == nil {
		return n
	}
	return cty.StringVal(field)
}

func readDelimited(r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table")
	}
	if err != nil {
		return nil, err
	}
	nameIdx := -1
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
		if header[i] == "name" {
			nameIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("no %q column in header %v", "name", header)
	}

	t := NewTable()
	for i, col := range header {
		if i != nameIdx {
			t.addColumn(col)
		}
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if nameIdx >= len(rec) {
			return nil, fmt.Errorf("record %v has no name field", rec)
		}
		row := t.Ensure(strings.TrimSpace(rec[nameIdx]))
		for i, field := range rec {
			if i == nameIdx || i >= len(header) {
				continue
			}
			row.Set(header[i], parseCell(field))
		}
	}
	return t, nil
}

// readJSONL decodes one flat JSON object per line, each carrying a "name"
// key. Nested values are rejected: scorer records are flat by contract.
func readJSONL(r io.Reader) (*Table, error) {
	t := NewTable()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		var record map[string]any
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		name, ok := record["name"].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("line %d: record has no %q key", line, "name")
		}
		cols := make([]string, 0, len(record))
		for col := range record {
			if col != "name" {
				cols = append(cols, col)
			}
		}
		sort.Strings(cols)
		row := t.Ensure(name)
		for _, col := range cols {
			v, err := jsonCell(record[col])
			if err != nil {
				return nil, fmt.Errorf("line %d: column %q: %w", line, col, err)
			}
			t.addColumn(col)
			row.Set(col, v)
		}
	}
	return t, sc.Err()
}

func jsonCell(v any) (cty.Value, error) {
	switch val := v.(type) {
	case nil:
		return cty.NilVal, nil
	case json.Number:
		n, err := cty.ParseNumberVal(val.String())
		if err != nil {
			return cty.NilVal, err
		}
		return n, nil
	case string:
		return cty.StringVal(val), nil
	case bool:
		if val {
			return cty.StringVal("true"), nil
		}
		return cty.StringVal("false"), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported nested value %T", v)
	}
}
