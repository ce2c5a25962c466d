// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package nav folds parsed NMEA sentences into a live navigation state.
package nav

import (
	"fmt"
	"strings"

	"gitlab.com/postmarketOS/gnss_status/internal/heading"
	"gitlab.com/postmarketOS/gnss_status/internal/nmea"
)

// State is the latest known value of every navigation attribute. A nil field
// has not been reported yet; once set, a field only changes when a sentence
// carries a new decodable value.
type State struct {
	UTC        *string
	Date       *string
	FixQuality *int
	SatsUsed   *int
	SatsInView *int
	PDOP       *float64
	HDOP       *float64
	VDOP       *float64
	AltitudeM  *float64
	// HeadingT is the last true heading, normalized to [0, 360).
	HeadingT   *float64
	LastTalker *string

	ChecksumOK  uint64
	ChecksumBad uint64

	// Filtered is the smoothed heading with Offset applied, as of the last
	// HDT sentence.
	Filtered *float64
	Offset   float64

	filter *heading.Filter
}

func New(window int, offset float64) *State {
	return &State{
		Offset: offset,
		filter: heading.New(window),
	}
}

// Filter returns the heading filter fed by HDT sentences.
func (st *State) Filter() *heading.Filter {
	if st.filter == nil {
		st.filter = heading.New(heading.DefaultWindow)
	}
	return st.filter
}

// Apply updates the state from one sentence. Sentences of unknown type or
// with too few fields only touch the checksum counters and the talker.
func (st *State) Apply(s nmea.Sentence) {
	if s.ChecksumOK {
		st.ChecksumOK++
	} else {
		// still parsed: some receivers drop the checksum under load
		st.ChecksumBad++
	}
	if s.Talker != "" {
		st.LastTalker = ptr(s.Talker)
	}

	f := s.Fields
	switch s.Type {
	case "GGA":
		st.applyGGA(f)
	case "GSA":
		st.applyGSA(f)
	case "GSV":
		st.applyGSV(f)
	case "ZDA":
		st.applyZDA(f)
	case "HDT":
		st.applyHDT(f)
	}
}

// GGA: Global Positioning System Fix Data
//
//	0: time (hhmmss.ss)
//	1-4: latitude, N/S, longitude, E/W
//	5: fix quality
//	6: number of satellites in use
//	7: HDOP
//	8: altitude (meters)
//	9-13: units, geoid separation, units, DGPS age, DGPS station
func (st *State) applyGGA(f []string) {
	if len(f) < 14 {
		return
	}
	st.setTime(f[0])

	q, _ := nmea.ParseInt(f[5])
	st.FixQuality = ptr(q)

	if n, ok := nmea.ParseInt(f[6]); ok {
		st.SatsUsed = ptr(n)
	}
	if v, ok := nmea.ParseFloat(f[7]); ok {
		st.HDOP = ptr(v)
	}
	if v, ok := nmea.ParseFloat(f[8]); ok {
		st.AltitudeM = ptr(v)
	}
}

// GSA: GNSS DOP and Active Satellites
//
//	0: mode (M/A)
//	1: fix type (1/2/3)
//	2-13: PRNs of satellites used
//	14: PDOP
//	15: HDOP
//	16: VDOP
func (st *State) applyGSA(f []string) {
	if len(f) < 17 {
		return
	}
	used := 0
	for _, prn := range f[2:14] {
		if strings.TrimSpace(prn) != "" {
			used++
		}
	}
	if used > 0 {
		st.SatsUsed = ptr(used)
	}

	if v, ok := nmea.ParseFloat(f[14]); ok {
		st.PDOP = ptr(v)
	}
	if v, ok := nmea.ParseFloat(f[15]); ok {
		st.HDOP = ptr(v)
	}
	if v, ok := nmea.ParseFloat(f[16]); ok {
		st.VDOP = ptr(v)
	}
}

// GSV: GNSS Satellites in View
//
//	0: total number of messages
//	1: message number
//	2: satellites in view
func (st *State) applyGSV(f []string) {
	if len(f) < 4 {
		return
	}
	if n, ok := nmea.ParseInt(f[2]); ok {
		st.SatsInView = ptr(n)
	}
}

// ZDA: Time & Date
//
//	0: time (hhmmss.ss)
//	1: day
//	2: month
//	3: year
//	4-5: local zone hours, minutes
func (st *State) applyZDA(f []string) {
	if len(f) < 6 {
		return
	}
	st.setTime(f[0])

	day, _ := nmea.ParseInt(f[1])
	month, _ := nmea.ParseInt(f[2])
	year, _ := nmea.ParseInt(f[3])
	if day != 0 && month != 0 && year != 0 {
		st.Date = ptr(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
	}
}

// HDT: Heading, True
//
//	0: heading (degrees)
//	1: T
func (st *State) applyHDT(f []string) {
	if len(f) < 2 {
		return
	}
	v, ok := nmea.ParseFloat(f[0])
	if !ok {
		return
	}
	hdg := nmea.Norm360(v)
	st.HeadingT = ptr(hdg)

	// the filter sees raw headings, the offset only applies to its output
	filter := st.Filter()
	filter.Add(hdg)
	if mean, ok := filter.Value(); ok {
		st.Filtered = ptr(nmea.Norm360(mean + st.Offset))
	}
}

func (st *State) setTime(hhmmss string) {
	if len(hhmmss) < 6 {
		return
	}
	st.UTC = ptr(fmt.Sprintf("%s:%s:%s", hhmmss[0:2], hhmmss[2:4], hhmmss[4:6]))
}

func ptr[T any](v T) *T {
	return &v
}
