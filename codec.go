package enum

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// Match is the outcome of resolving text against a catalog.
type Match struct {
	Ordinal int
	// Legacy reports the hit came from the underbar-to-space fallback, i.e. the
	// record was written by an older encoder and should be rewritten canonical.
	Legacy bool
}

// Format returns the canonical name of the entry at ordinal i.
func (c *Catalog[T]) Format(i int) (string, error) {
	return c.Name(i)
}

// Parse returns the ordinal named by text. See Resolve for the lookup rules.
func (c *Catalog[T]) Parse(text string) (int, error) {
	m, err := c.Resolve(text)
	if err != nil {
		return 0, err
	}
	return m.Ordinal, nil
}

// Resolve looks text up verbatim first. Only when that fails is a second
// candidate built by replacing every underbar with a space, since older
// records stored blanks as underbars. A canonical name containing an underbar
// therefore always resolves to itself.
func (c *Catalog[T]) Resolve(text string) (Match, error) {
	if i, ok := c.lookupLiteral(text); ok {
		return Match{Ordinal: i}, nil
	}
	if candidate, ok := legacyCandidate(text); ok {
		if i, ok := c.lookupLiteral(candidate); ok {
			return Match{Ordinal: i, Legacy: true}, nil
		}
	}
	return Match{}, &ValueError{Type: c.typeName, Input: text}
}

func (c *Catalog[T]) lookupLiteral(text string) (int, bool) {
	i, ok := c.byName[text]
	return i, ok
}

// legacyCandidate returns text with underbars replaced by spaces. ok is false
// when text has no underbar, as the candidate would repeat the literal lookup.
func legacyCandidate(text string) (string, bool) {
	if !strings.Contains(text, "_") {
		return "", false
	}
	return strings.ReplaceAll(text, "_", " "), true
}

// ReadRecord reads one newline-delimited record. Blanks inside the record are
// kept because canonical names may contain spaces; a trailing carriage return
// is dropped. A final record without a newline is returned with a nil error
// and the next call reports io.EOF.
func ReadRecord(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSuffix(line, "\r"), nil
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// Decoder reads values from a stream of records.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a decoder reading records from r.
func NewDecoder(r io.Reader) *Decoder {
	if br, ok := r.(*bufio.Reader); ok {
		return &Decoder{r: br}
	}
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the next record into target. On failure target is unchanged.
func (d *Decoder) Decode(target interface{ UnmarshalText([]byte) error }) error {
	record, err := ReadRecord(d.r)
	if err != nil {
		return err
	}
	return target.UnmarshalText([]byte(record))
}

// Encoder writes values as newline-terminated canonical names.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the canonical name of v followed by a newline.
func (e *Encoder) Encode(v interface{ MarshalText() ([]byte, error) }) error {
	text, err := v.MarshalText()
	if err != nil {
		return err
	}
	record := make([]byte, 0, len(text)+1)
	record = append(record, text...)
	record = append(record, '\n')
	_, err = e.w.Write(record)
	return err
}
