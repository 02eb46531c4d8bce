package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadJSONL reads a newline-delimited JSON file of examples, preserving
// file order and skipping blank lines. It fails softly: any read or parse
// problem is reported on diag and an empty slice comes back, so callers
// treat "nothing to evaluate" and "file broken" the same way.
func LoadJSONL(path string, diag io.Writer) []Example {
	if diag == nil {
		diag = io.Discard
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(diag, "dataset: cannot open %q: %v\n", path, err)
		return nil
	}
	defer f.Close()

	var examples []Example
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var ex Example
		if err := json.Unmarshal([]byte(line), &ex); err != nil {
			fmt.Fprintf(diag, "dataset: %s:%d: malformed JSON: %v\n", path, lineNum, err)
			return nil
		}
		if ex.Inputs == nil {
			fmt.Fprintf(diag, "dataset: %s:%d: record has no inputs\n", path, lineNum)
			return nil
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(diag, "dataset: reading %q: %v\n", path, err)
		return nil
	}

	return examples
}
