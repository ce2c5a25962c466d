// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Framer turns arbitrarily chunked input into trimmed, non-empty text lines.
// Lines end at CR or LF; a CR/LF or LF/CR pair counts as one terminator.
// Anything after the last terminator stays buffered until the next Feed.
type Framer struct {
	buf []byte
}

// Feed appends chunk and returns every line it completed.
func (f *Framer) Feed(chunk []byte) (lines []string) {
	f.buf = append(f.buf, chunk...)

	for {
		i := bytes.IndexAny(f.buf, "\r\n")
		if i == -1 {
			break
		}

		line := strings.TrimSpace(decode(f.buf[:i]))

		drop := 1
		if i+1 < len(f.buf) && isPair(f.buf[i], f.buf[i+1]) {
			drop = 2
		}
		f.buf = f.buf[:copy(f.buf, f.buf[i+drop:])]

		if line != "" {
			lines = append(lines, line)
		}
	}
	return
}

// Buffered returns the number of bytes waiting for a terminator.
func (f *Framer) Buffered() int {
	return len(f.buf)
}

func isPair(a, b byte) bool {
	return (a == '\r' && b == '\n') || (a == '\n' && b == '\r')
}

// decode substitutes U+FFFD for every byte that is not valid UTF-8.
func decode(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
