// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nav

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Snapshot is an immutable copy of State taken at a point in time, along
// with the heading filter settings in effect.
type Snapshot struct {
	Taken time.Time `json:"taken"`

	UTC        *string  `json:"utc,omitempty"`
	Date       *string  `json:"date,omitempty"`
	Talker     *string  `json:"talker,omitempty"`
	FixQuality *int     `json:"fix_quality,omitempty"`
	SatsUsed   *int     `json:"sats_used,omitempty"`
	SatsInView *int     `json:"sats_in_view,omitempty"`
	PDOP       *float64 `json:"pdop,omitempty"`
	HDOP       *float64 `json:"hdop,omitempty"`
	VDOP       *float64 `json:"vdop,omitempty"`
	AltitudeM  *float64 `json:"altitude_m,omitempty"`
	HeadingT   *float64 `json:"heading_t,omitempty"`

	ChecksumOK  uint64 `json:"checksum_ok"`
	ChecksumBad uint64 `json:"checksum_bad"`

	FilteredHeading *float64 `json:"filtered_heading,omitempty"`
	OffsetDeg       float64  `json:"offset_deg"`
	Window          int      `json:"window"`
}

// Field is one labelled, display-formatted snapshot value.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var fixLabels = map[int]string{
	0: "No fix",
	1: "GPS",
	2: "DGPS",
	4: "RTK Fixed",
	5: "RTK Float",
	6: "Dead reckoning",
}

// FixLabel names a GGA fix quality code; unknown codes render as the number.
func FixLabel(q int) string {
	if l, ok := fixLabels[q]; ok {
		return l
	}
	return strconv.Itoa(q)
}

func (st *State) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		Taken:           now,
		UTC:             clone(st.UTC),
		Date:            clone(st.Date),
		Talker:          clone(st.LastTalker),
		FixQuality:      clone(st.FixQuality),
		SatsUsed:        clone(st.SatsUsed),
		SatsInView:      clone(st.SatsInView),
		PDOP:            clone(st.PDOP),
		HDOP:            clone(st.HDOP),
		VDOP:            clone(st.VDOP),
		AltitudeM:       clone(st.AltitudeM),
		HeadingT:        clone(st.HeadingT),
		ChecksumOK:      st.ChecksumOK,
		ChecksumBad:     st.ChecksumBad,
		FilteredHeading: clone(st.Filtered),
		OffsetDeg:       st.Offset,
		Window:          st.Filter().Window(),
	}
}

// Display returns the snapshot as ordered label/value pairs for a status
// panel. Unknown values use placeholders.
func (s Snapshot) Display() []Field {
	return []Field{
		{"UTC", orString(s.UTC, "--:--:--")},
		{"Date", orString(s.Date, "--------")},
		{"Talker", orString(s.Talker, "--")},
		{"Fix", s.Fix()},
		{"Sats Used", orInt(s.SatsUsed)},
		{"In View", orInt(s.SatsInView)},
		{"PDOP", orFloat(s.PDOP)},
		{"HDOP", orFloat(s.HDOP)},
		{"VDOP", orFloat(s.VDOP)},
		{"Altitude", s.Altitude()},
		{"Heading", s.Heading()},
		{"Checksums", s.Checksums()},
	}
}

func (s Snapshot) Fix() string {
	if s.FixQuality == nil {
		return "?"
	}
	return FixLabel(*s.FixQuality)
}

func (s Snapshot) Altitude() string {
	if s.AltitudeM == nil {
		return "?"
	}
	return fmt.Sprintf("%.1f m", *s.AltitudeM)
}

func (s Snapshot) Heading() string {
	if s.HeadingT == nil {
		return "?"
	}
	return fmt.Sprintf("%.1f°T", *s.HeadingT)
}

func (s Snapshot) Checksums() string {
	return fmt.Sprintf("OK:%d Bad:%d", s.ChecksumOK, s.ChecksumBad)
}

// Filtered formats the filtered heading, "--.-°T" when there is none.
func (s Snapshot) Filtered() string {
	if s.FilteredHeading == nil {
		return "--.-°T"
	}
	return fmt.Sprintf("%.1f°T", *s.FilteredHeading)
}

// FilterLine describes the raw heading and the filter settings, e.g.
// "raw: 12.0°T    FIR: 15    offset: 0.0°".
func (s Snapshot) FilterLine() string {
	raw := "--.-°T"
	if s.HeadingT != nil {
		raw = fmt.Sprintf("%.1f°T", *s.HeadingT)
	}
	return fmt.Sprintf("raw: %s    FIR: %d    offset: %.1f°", raw, s.Window, s.OffsetDeg)
}

// Status renders the three line terminal status.
func (s Snapshot) Status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "UTC %s  Date %s  Talker %s  %s\n",
		orString(s.UTC, "--:--:--"), orString(s.Date, "--------"), orString(s.Talker, "--"), s.Checksums())
	fmt.Fprintf(&b, "Fix %s  Used %s  InView %s  PDOP %s  HDOP %s  VDOP %s\n",
		s.Fix(), orInt(s.SatsUsed), orInt(s.SatsInView), orFloat(s.PDOP), orFloat(s.HDOP), orFloat(s.VDOP))
	fmt.Fprintf(&b, "Alt %s  Heading %s  Filtered %s", s.Altitude(), s.Heading(), s.Filtered())
	return b.String()
}

func orString(v *string, placeholder string) string {
	if v == nil {
		return placeholder
	}
	return *v
}

func orInt(v *int) string {
	if v == nil {
		return "?"
	}
	return strconv.Itoa(*v)
}

// orFloat prints the shortest representation, always with a decimal point.
func orFloat(v *float64) string {
	if v == nil {
		return "?"
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
