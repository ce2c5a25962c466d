// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gnss

import (
	"io"
	"time"
)

// Source is the raw byte stream of a receiver. Read blocks for at most the
// source's read timeout and may return 0 bytes with a nil error.
type Source interface {
	io.Reader
	io.Closer
}

// Opener opens a Source. Reader calls it once per Run.
type Opener func() (Source, error)

// Event is an item on the Reader's log channel: either a raw line received
// from the device or a message about the reader itself. Sentence is set for
// lines starting with '$'; other device lines are not checksum tagged.
type Event struct {
	Time       time.Time `json:"time"`
	Text       string    `json:"text"`
	Sentence   bool      `json:"sentence"`
	ChecksumOK bool      `json:"checksum_ok"`
}

// Good reports whether the event should be shown as healthy: only NMEA
// sentences with an invalid checksum are not.
func (e Event) Good() bool {
	return !e.Sentence || e.ChecksumOK
}
