package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"github.com/stlalpha/cpdisp/internal/decode"
	"github.com/stlalpha/cpdisp/internal/logging"
	"github.com/stlalpha/cpdisp/internal/ucd"
)

var errClosed = errors.New("backend already closed")

// allEncodings is every encoding the charset engine can open by display name.
var allEncodings = func() []encoding.Encoding {
	var all []encoding.Encoding
	for _, group := range [][]encoding.Encoding{
		charmap.All,
		japanese.All,
		korean.All,
		simplifiedchinese.All,
		traditionalchinese.All,
		unicode.All,
		utf32.All,
	} {
		all = append(all, group...)
	}
	return all
}()

// charsetBackend decodes through a golang.org/x/text encoding.
type charsetBackend struct {
	name    string
	enc     encoding.Encoding
	decoder *encoding.Decoder
	closed  bool
}

func openCharset(ident string, opts Options) (Backend, error) {
	if opts.DataPath != "" {
		if path, ok := findMappingFile(opts.DataPath, ident); ok {
			logging.Debug("charset %s resolved to mapping file %s", ident, path)
			return openMapFile(path)
		}
	}
	enc, name, err := lookupEncoding(ident)
	if err != nil {
		return nil, err
	}
	logging.Debug("charset %s resolved to %s", ident, name)
	return &charsetBackend{name: name, enc: enc, decoder: enc.NewDecoder()}, nil
}

// lookupEncoding resolves an identifier by IANA name, MIME name, WHATWG
// label, then by the display name of any built-in encoding.
func lookupEncoding(ident string) (encoding.Encoding, string, error) {
	for _, index := range []*ianaindex.Index{ianaindex.IANA, ianaindex.MIME} {
		enc, err := index.Encoding(ident)
		if err == nil && enc != nil {
			return enc, encodingName(enc, ident), nil
		}
	}
	if enc, err := htmlindex.Get(ident); err == nil && enc != nil {
		return enc, encodingName(enc, ident), nil
	}
	want := normalizeName(ident)
	for _, enc := range allEncodings {
		if normalizeName(displayName(enc)) == want {
			return enc, encodingName(enc, ident), nil
		}
		if name, err := ianaindex.IANA.Name(enc); err == nil && normalizeName(name) == want {
			return enc, name, nil
		}
	}
	return nil, "", fmt.Errorf("%w: no encoding named %q", ErrNotFound, ident)
}

func encodingName(enc encoding.Encoding, fallback string) string {
	if name, err := ianaindex.IANA.Name(enc); err == nil && name != "" {
		return name
	}
	if name := displayName(enc); name != "" {
		return name
	}
	return fallback
}

func displayName(enc encoding.Encoding) string {
	if s, ok := enc.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}

// normalizeName folds case and drops punctuation so "Shift_JIS",
// "shift-jis" and "SHIFTJIS" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LookupEncoding resolves a charset name the way the charset engine does.
func LookupEncoding(name string) (encoding.Encoding, error) {
	enc, _, err := lookupEncoding(name)
	return enc, err
}

// findMappingFile looks ident up as a mapping file inside dir.
func findMappingFile(dir, ident string) (string, bool) {
	if ident == "" || filepath.Base(ident) != ident {
		return "", false
	}
	for _, suffix := range []string{"", ".txt", ".map", ".ucm"} {
		for _, name := range []string{ident + suffix, strings.ToLower(ident) + suffix} {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, true
			}
		}
	}
	return "", false
}

// Names lists the encodings the charset engine knows, sorted.
func Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, enc := range allEncodings {
		name := encodingName(enc, "")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *charsetBackend) Name() string { return b.name }

func (b *charsetBackend) Fallback(r rune) string { return ucd.Label(r) }

func (b *charsetBackend) Decode(probe []byte) decode.Outcome {
	b.decoder.Reset()
	return transformDecode(b.decoder, probe)
}

func (b *charsetBackend) Close() error {
	if b.closed {
		return errClosed
	}
	b.closed = true
	return nil
}

// transformDecode runs a whole probe through t with a fixed output window.
// A probe that ends inside a character is Incomplete even when characters
// before it decoded.
func transformDecode(t transform.Transformer, src []byte) decode.Outcome {
	var dst [OutputCapacity]byte
	nDst, nSrc, err := t.Transform(dst[:], src, false)
	switch {
	case errors.Is(err, transform.ErrShortDst):
		return decode.Failed(decode.CodeBufferOverflow)
	case errors.Is(err, transform.ErrShortSrc):
		return decode.Incomplete()
	case err != nil:
		logging.Debug("transform of % x failed: %v", src, err)
		return decode.Failed(decode.CodeInternal)
	}
	return runesOf(dst[:nDst], nSrc)
}

// runesOf turns decoder output into an outcome. The x/text decoders
// substitute U+FFFD for bytes that map to nothing.
func runesOf(text []byte, consumed int) decode.Outcome {
	if len(text) == 0 {
		return decode.Invalid()
	}
	runes := make([]rune, 0, utf8.RuneCount(text))
	for len(text) > 0 {
		r, size := utf8.DecodeRune(text)
		if r == utf8.RuneError {
			return decode.Invalid()
		}
		runes = append(runes, r)
		text = text[size:]
	}
	return decode.Decoded(runes, consumed)
}
