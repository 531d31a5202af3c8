// Package probe builds the byte sequence decoded for each chart cell.
package probe

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxProbe is the longest probe, prefix and table bytes together.
const MaxProbe = 4

// MaxPrefix bounds the fixed prefix on its own. Wide charts leave one byte
// less, see MaxPrefixLen.
const MaxPrefix = MaxProbe - 1

// MaxPrefixLen returns how many prefix bytes fit in front of the table
// bytes of a narrow or wide chart.
func MaxPrefixLen(wide bool) int {
	if wide {
		return MaxProbe - 2
	}
	return MaxProbe - 1
}

// Prefix is the fixed byte sequence placed in front of every probe.
// It is filled while the command line is parsed and read-only afterwards.
type Prefix struct {
	buf []byte
}

// ParsePrefix parses colon separated hex bytes such as "1b:24:42".
func ParsePrefix(s string) (Prefix, error) {
	var p Prefix
	if s == "" {
		return p, nil
	}
	for _, field := range strings.Split(s, ":") {
		field = strings.TrimPrefix(strings.TrimPrefix(field, "0x"), "0X")
		if field == "" {
			return Prefix{}, fmt.Errorf("empty byte in prefix %q", s)
		}
		v, err := strconv.ParseUint(field, 16, 8)
		if err != nil {
			return Prefix{}, fmt.Errorf("invalid hex byte %q in prefix: %w", field, err)
		}
		if err := p.Append(byte(v)); err != nil {
			return Prefix{}, err
		}
	}
	return p, nil
}

// Append adds one byte to the prefix.
func (p *Prefix) Append(b byte) error {
	if len(p.buf) >= MaxPrefix {
		return fmt.Errorf("prefix longer than %d bytes", MaxPrefix)
	}
	p.buf = append(p.buf, b)
	return nil
}

// Len returns the number of prefix bytes.
func (p Prefix) Len() int { return len(p.buf) }

// At returns the i-th prefix byte.
func (p Prefix) At(i int) byte { return p.buf[i] }

// Bytes returns a copy of the prefix.
func (p Prefix) Bytes() []byte {
	return append([]byte(nil), p.buf...)
}

func (p Prefix) String() string {
	parts := make([]string, len(p.buf))
	for i, b := range p.buf {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}

// Build returns the probe for one cell: prefix, then the table byte in
// wide mode, then row*16+col.
func Build(prefix Prefix, table, row, col int, wide bool) []byte {
	n := prefix.Len() + 1
	if wide {
		n++
	}
	out := make([]byte, 0, n)
	out = append(out, prefix.buf...)
	if wide {
		out = append(out, byte(table))
	}
	return append(out, byte(row*16+col))
}
