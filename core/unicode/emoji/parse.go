package emoji

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/emojitext/core"
)

// Parsing of `emoji-test.txt`, the Unicode emoji data file
// (https://unicode.org/Public/emoji/latest/emoji-test.txt).
//
// Line format:
//
//    code points ; status # emoji EX.Y name
//
// Comment lines carry group/subgroup headings:
//
//    # group: Smileys & Emotion
//    # subgroup: face-smiling

// ParseTestFile reads an emoji data file and returns its entries in source
// order. Malformed lines are skipped, never fatal; parse failure of the
// reader itself is the only error condition.
func ParseTestFile(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var group, subgroup string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if g, ok := heading(line, "group:"); ok {
				group = g
			} else if sg, ok := heading(line, "subgroup:"); ok {
				subgroup = sg
			}
			continue
		}
		entry, ok := parseLine(line)
		if !ok {
			tracer().Debugf("emoji data line %d unparseable, skipped", lineno)
			continue
		}
		entry.Group, entry.Subgroup, entry.Line = group, subgroup, lineno
		if len(entry.Sequence) > 1 && !IsPictographic(entry.Sequence[0]) {
			// '#', '*' and '0'–'9' legitimately start keycap sequences
			if Classify(entry.Sequence) != SequenceKeycap {
				tracer().Debugf("line %d: sequence %v does not start with an emoji-classed code-point",
					lineno, entry.Sequence)
			}
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return entries, core.WrapError(err, core.EINVALID, "cannot read emoji data file")
	}
	tracer().Infof("parsed %d emoji data entries", len(entries))
	return entries, nil
}

// LoadTestFile reads entries from a file located at path.
func LoadTestFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "emoji data file not found: %s", path)
	}
	defer f.Close()
	return ParseTestFile(f)
}

// heading extracts a group/subgroup heading from a comment line.
func heading(line, key string) (string, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	if !strings.HasPrefix(rest, key) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(rest, key)), true
}

// parseLine parses a single data line. ok is false if the line does not
// follow the documented format.
func parseLine(line string) (entry Entry, ok bool) {
	cps, rest, found := strings.Cut(line, ";")
	if !found {
		return entry, false
	}
	statusField, comment, found := strings.Cut(rest, "#")
	if !found {
		return entry, false
	}
	status, ok := parseStatus(strings.TrimSpace(statusField))
	if !ok {
		return entry, false
	}
	// comment part is "<emoji> EX.Y <name>"
	parts := strings.SplitN(strings.TrimSpace(comment), " ", 3)
	if len(parts) < 3 {
		return entry, false
	}
	for _, cp := range strings.Fields(cps) {
		n, err := strconv.ParseUint(cp, 16, 32)
		if err != nil {
			return entry, false
		}
		entry.Sequence = append(entry.Sequence, rune(n))
	}
	if len(entry.Sequence) == 0 {
		return entry, false
	}
	entry.Status = status
	entry.Version = parts[1]
	entry.Name = parts[2]
	return entry, true
}
