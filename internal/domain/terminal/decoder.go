package terminal

import (
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
)

// Decoder splits a byte stream on UTF-8 boundaries. A multi-byte sequence
// cut by a read boundary is held back until the rest arrives, so every
// chunk it returns decodes on its own. The zero value is ready to use.
type Decoder struct {
	pending [utf8.UTFMax]byte
	n       int
}

// Decode prepends any held-back bytes to p and returns the longest prefix
// that does not end inside a sequence. A non-nil *DecodeError means the
// returned bytes contain malformed UTF-8; they are still returned.
func (d *Decoder) Decode(p []byte) ([]byte, error) {
	buf := make([]byte, 0, d.n+len(p))
	buf = append(buf, d.pending[:d.n]...)
	buf = append(buf, p...)

	cut := completePrefix(buf)
	d.n = copy(d.pending[:], buf[cut:])
	out := buf[:cut]
	return out, validate(out)
}

// Buffered returns the number of held-back bytes.
func (d *Decoder) Buffered() int { return d.n }

// Flush returns whatever is held back. Those bytes are an incomplete
// sequence, so a non-empty result always comes with a *DecodeError.
func (d *Decoder) Flush() ([]byte, error) {
	if d.n == 0 {
		return nil, nil
	}
	out := append([]byte(nil), d.pending[:d.n]...)
	d.n = 0
	return out, validate(out)
}

// completePrefix returns the length of b minus a trailing incomplete
// sequence. Only the last UTFMax bytes can hold one.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}

func validate(b []byte) error {
	if utf8.Valid(b) {
		return nil
	}
	offset := 0
	for offset < len(b) {
		r, size := utf8.DecodeRune(b[offset:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		offset += size
	}
	return &DecodeError{Offset: offset, Charset: detectCharset(b)}
}

func detectCharset(b []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil || result == nil {
		return ""
	}
	return strings.ToLower(result.Charset)
}

// sanitize replaces malformed sequences with U+FFFD.
func sanitize(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
