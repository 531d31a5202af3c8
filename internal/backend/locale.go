package backend

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"

	"github.com/stlalpha/cpdisp/internal/decode"
	"github.com/stlalpha/cpdisp/internal/mapfile"
	"github.com/stlalpha/cpdisp/internal/ucd"
)

// language[_territory][.codeset][@modifier]
var localePattern = regexp.MustCompile(`^([A-Za-z]{2,3})(?:_([A-Za-z]{2}|[0-9]{3}))?(?:\.([A-Za-z0-9_.:-]+))?(?:@[A-Za-z0-9]+)?$`)

// codesetAliases maps glibc codeset spellings, already normalized, onto
// names the charset lookup understands.
var codesetAliases = map[string]string{
	"utf8":        "UTF-8",
	"eucjp":       "EUC-JP",
	"euckr":       "EUC-KR",
	"euccn":       "GB2312",
	"euctw":       "Big5",
	"sjis":        "Shift_JIS",
	"shiftjis":    "Shift_JIS",
	"gbk":         "GBK",
	"gb2312":      "GB2312",
	"gb18030":     "GB18030",
	"big5":        "Big5",
	"big5hkscs":   "Big5",
	"koi8r":       "KOI8-R",
	"koi8u":       "KOI8-U",
	"tis620":      "TIS-620",
	"ansix341968": "US-ASCII",
	"usascii":     "US-ASCII",
	"iso2022jp":   "ISO-2022-JP",
	"cp1251":      "windows-1251",
	"cp1252":      "windows-1252",
	"cp1255":      "windows-1255",
	"cp437":       "IBM437",
	"cp850":       "IBM850",
	"cp866":       "IBM866",
	"iso885915":   "ISO-8859-15",
	"iso88591":    "ISO-8859-1",
	"iso88592":    "ISO-8859-2",
	"iso88595":    "ISO-8859-5",
	"iso88597":    "ISO-8859-7",
	"iso88599":    "ISO-8859-9",
	"georgianps":  "GEORGIAN-PS",
	"armscii8":    "ARMSCII-8",
	"iso885913":   "ISO-8859-13",
	"iso885914":   "ISO-8859-14",
	"iso885916":   "ISO-8859-16",
	"iso88593":    "ISO-8859-3",
	"iso88594":    "ISO-8859-4",
	"iso88596":    "ISO-8859-6",
	"iso88598":    "ISO-8859-8",
	"iso885910":   "ISO-8859-10",
}

// localeBackend decodes one character at a time through the codeset of a
// POSIX locale, stopping at the first invalid or truncated character.
type localeBackend struct {
	locale string
	name   string
	enc    encoding.Encoding
	ascii  *mapfile.Table
	closed bool
}

func openLocale(locale string) (Backend, error) {
	codeset, err := localeCodeset(locale)
	if err != nil {
		return nil, err
	}
	b := &localeBackend{locale: locale, name: codeset}
	if codeset == "US-ASCII" {
		b.ascii = asciiTable()
		return b, nil
	}
	enc, name, err := lookupEncoding(codeset)
	if err != nil {
		return nil, err
	}
	b.enc, b.name = enc, name
	return b, nil
}

// localeCodeset extracts and canonicalizes the codeset part of a locale
// name. C and POSIX use ASCII unless a codeset is given; any other locale
// must name a known language and territory, and defaults to UTF-8.
func localeCodeset(locale string) (string, error) {
	codeset := "UTF-8"
	switch {
	case locale == "C", locale == "POSIX":
		return "US-ASCII", nil
	case strings.HasPrefix(locale, "C."), strings.HasPrefix(locale, "POSIX."):
		_, codeset, _ = strings.Cut(locale, ".")
		if i := strings.IndexByte(codeset, '@'); i >= 0 {
			codeset = codeset[:i]
		}
		if codeset == "" {
			return "", fmt.Errorf("%w: empty codeset in %q", ErrNotFound, locale)
		}
	default:
		m := localePattern.FindStringSubmatch(locale)
		if m == nil {
			return "", fmt.Errorf("%w: malformed locale name %q", ErrNotFound, locale)
		}
		if err := checkLanguage(m[1], m[2]); err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrNotFound, locale, err)
		}
		if m[3] != "" {
			codeset = m[3]
		}
	}
	if alias, ok := codesetAliases[normalizeName(codeset)]; ok {
		return alias, nil
	}
	return codeset, nil
}

// checkLanguage accepts ISO 639 languages and ISO 3166 or UN M.49
// territories that CLDR knows about.
func checkLanguage(lang, territory string) error {
	base, err := language.ParseBase(lang)
	if err != nil {
		return err
	}
	if base.String() == "und" {
		return fmt.Errorf("undetermined language %q", lang)
	}
	if territory == "" {
		return nil
	}
	region, err := language.ParseRegion(territory)
	if err != nil {
		return err
	}
	if !region.IsCountry() && !region.IsGroup() {
		return fmt.Errorf("unknown territory %q", territory)
	}
	return nil
}

func asciiTable() *mapfile.Table {
	t := mapfile.New()
	for b := 0; b < utf8.RuneSelf; b++ {
		// cannot fail: sources are unique single bytes
		_ = t.Add(mapfile.Entry{Source: []byte{byte(b)}, Target: []rune{rune(b)}})
	}
	return t
}

func (b *localeBackend) Name() string { return b.locale + " (" + b.name + ")" }

func (b *localeBackend) Fallback(r rune) string { return ucd.Label(r) }

func (b *localeBackend) Decode(probe []byte) decode.Outcome {
	if b.ascii != nil {
		return b.ascii.Decode(probe, OutputCapacity)
	}

	dec := b.enc.NewDecoder()
	var (
		runes []rune
		size  int
		pos   int
		dst   [utf8.UTFMax]byte
	)
	for pos < len(probe) {
		nDst, nSrc, err := dec.Transform(dst[:], probe[pos:], false)
		if nSrc == 0 {
			switch {
			case errors.Is(err, transform.ErrShortSrc):
				return decode.Incomplete()
			case errors.Is(err, transform.ErrShortDst):
				return decode.Failed(decode.CodeBufferOverflow)
			default:
				return decode.Invalid()
			}
		}
		pos += nSrc
		step := runesOf(dst[:nDst], nSrc)
		switch {
		case nDst == 0:
			// shift sequence, no character yet
			continue
		case !step.OK():
			return step
		}
		size += nDst
		if size > OutputCapacity {
			return decode.Failed(decode.CodeBufferOverflow)
		}
		runes = append(runes, step.Runes...)
	}
	if len(runes) == 0 {
		return decode.Invalid()
	}
	return decode.Decoded(runes, pos)
}

func (b *localeBackend) Close() error {
	if b.closed {
		return errClosed
	}
	b.closed = true
	return nil
}
