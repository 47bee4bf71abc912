package fir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// TableFormat selects the text layout written by [WriteTaps].
type TableFormat int

const (
	// FormatC writes a C++ constexpr float array, four taps per line.
	FormatC TableFormat = iota
	// FormatGo writes a Go array literal.
	FormatGo
	// FormatPlain writes one value per line with full precision.
	FormatPlain
)

const tapsPerLine = 4

var tableFormatNames = map[string]TableFormat{
	"c":     FormatC,
	"cpp":   FormatC,
	"go":    FormatGo,
	"plain": FormatPlain,
}

// String returns the canonical name of the format.
func (tf TableFormat) String() string {
	switch tf {
	case FormatC:
		return "c"
	case FormatGo:
		return "go"
	case FormatPlain:
		return "plain"
	default:
		return fmt.Sprintf("TableFormat(%d)", int(tf))
	}
}

// ParseTableFormat resolves a format name such as "c", "go" or "plain".
func ParseTableFormat(name string) (TableFormat, error) {
	tf, ok := tableFormatNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("fir: unknown table format %q", name)
	}
	return tf, nil
}

// ParseTaps reads a coefficient table from r.
//
// Values are separated by whitespace or commas. When the input contains a
// brace-delimited array literal (C, C++ or Go), only the text between the
// first '{' and the last '}' is read, so declarations like
// "constexpr float FIR_TAPS[64] = {" are skipped. JSON arrays, '//' and '#'
// line comments and a trailing single-precision 'f' suffix are accepted.
func ParseTaps(r io.Reader) (*Taps, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fir: read taps: %w", err)
	}

	text := stripLineComments(string(data))
	if open := strings.IndexByte(text, '{'); open >= 0 {
		end := strings.LastIndexByte(text, '}')
		if end < open {
			return nil, fmt.Errorf("%w: unterminated array literal", ErrInvalidConfiguration)
		}
		text = text[open+1 : end]
	}

	fields := strings.FieldsFunc(text, func(c rune) bool {
		return unicode.IsSpace(c) || c == ',' || c == '[' || c == ']' || c == ';'
	})

	coeffs := make([]float64, 0, len(fields))
	for _, tok := range fields {
		v, err := strconv.ParseFloat(strings.TrimRight(tok, "fF"), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad coefficient %q", ErrInvalidConfiguration, tok)
		}
		coeffs = append(coeffs, v)
	}

	return NewTaps(coeffs)
}

func stripLineComments(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if j := strings.Index(line, "//"); j >= 0 {
			line = line[:j]
		}
		if j := strings.IndexByte(line, '#'); j >= 0 {
			line = line[:j]
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// WriteTaps writes t to w in the given format. name is the array identifier
// for FormatC and FormatGo; an empty name selects FIR_TAPS or firTaps.
func WriteTaps(w io.Writer, t *Taps, format TableFormat, name string) error {
	if t == nil {
		return fmt.Errorf("%w: nil coefficient table", ErrInvalidConfiguration)
	}

	var sb strings.Builder
	switch format {
	case FormatC:
		if name == "" {
			name = "FIR_TAPS"
		}
		fmt.Fprintf(&sb, "constexpr float %s[%d] = {\n", name, t.Len())
		writeRows(&sb, t.coeffs, "    ", func(v float64) string {
			return fmt.Sprintf("%13.10ff", v)
		})
		sb.WriteString("};\n")
	case FormatGo:
		if name == "" {
			name = "firTaps"
		}
		fmt.Fprintf(&sb, "var %s = [%d]float32{\n", name, t.Len())
		writeRows(&sb, t.coeffs, "\t", func(v float64) string {
			return fmt.Sprintf("%.10f", v)
		})
		sb.WriteString("}\n")
	case FormatPlain:
		for _, v := range t.coeffs {
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
			sb.WriteByte('\n')
		}
	default:
		return fmt.Errorf("fir: unknown table format %v", format)
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("fir: write taps: %w", err)
	}
	return nil
}

func writeRows(sb *strings.Builder, coeffs []float64, indent string, format func(float64) string) {
	for i := 0; i < len(coeffs); i += tapsPerLine {
		end := min(i+tapsPerLine, len(coeffs))
		row := make([]string, 0, end-i)
		for _, v := range coeffs[i:end] {
			row = append(row, format(v))
		}
		sb.WriteString(indent)
		sb.WriteString(strings.Join(row, ", "))
		sb.WriteString(",\n")
	}
}
