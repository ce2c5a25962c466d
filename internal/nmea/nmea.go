// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"fmt"
	"strings"
)

// Sentence is a single NMEA 0183 sentence split into its talker, type and
// fields. Fields holds everything after the "$<talker><type>" token, up to
// the checksum, undecoded.
type Sentence struct {
	Talker     string
	Type       string
	Fields     []string
	ChecksumOK bool
}

func checksum(s string) string {
	var sum uint8
	for i := 0; i < len(s); i++ {
		sum ^= s[i]
	}

	return fmt.Sprintf("%02X", sum)
}

// ChecksumOK reports whether line is "$<data>*<HH>" with HH equal to the XOR
// of every byte of <data>.
func ChecksumOK(line string) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return false
	}
	star := strings.IndexByte(line, '*')
	if star == -1 {
		return false
	}

	cs := line[star+1:]
	if len(cs) < 2 {
		return false
	}

	return strings.ToUpper(cs[:2]) == checksum(line[1:star])
}

// Parse never fails: a line that does not look like a sentence yields an
// empty Talker, Type and Fields, with ChecksumOK still computed.
func Parse(line string) (s Sentence) {
	s.ChecksumOK = ChecksumOK(line)

	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return
	}

	body := line[1:]
	if star := strings.IndexByte(body, '*'); star >= 0 {
		body = body[:star]
	}

	parts := strings.Split(body, ",")
	if len(parts[0]) < 5 {
		return
	}

	s.Talker = parts[0][:2]
	s.Type = parts[0][2:]
	s.Fields = parts[1:]
	return
}
