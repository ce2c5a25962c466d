// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nav

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixLabel(t *testing.T) {
	tables := []struct {
		in       int
		expected string
	}{
		{0, "No fix"},
		{1, "GPS"},
		{2, "DGPS"},
		{3, "3"},
		{4, "RTK Fixed"},
		{5, "RTK Float"},
		{6, "Dead reckoning"},
		{9, "9"},
	}

	for _, table := range tables {
		assert.Equal(t, table.expected, FixLabel(table.in), "FixLabel(%d)", table.in)
	}
}

func TestDisplayPlaceholders(t *testing.T) {
	snap := New(15, 0).Snapshot(time.Time{})

	expected := []Field{
		{"UTC", "--:--:--"},
		{"Date", "--------"},
		{"Talker", "--"},
		{"Fix", "?"},
		{"Sats Used", "?"},
		{"In View", "?"},
		{"PDOP", "?"},
		{"HDOP", "?"},
		{"VDOP", "?"},
		{"Altitude", "?"},
		{"Heading", "?"},
		{"Checksums", "OK:0 Bad:0"},
	}
	assert.Equal(t, expected, snap.Display())
	assert.Equal(t, "--.-°T", snap.Filtered())
	assert.Equal(t, "raw: --.-°T    FIR: 15    offset: 0.0°", snap.FilterLine())
}

func TestDisplayValues(t *testing.T) {
	st := New(4, 1.5)
	apply(st,
		"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47",
		"$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1*39",
		sentence("GPGSV,3,1,11,03,03,111,00"),
		sentence("GPZDA,201530.00,04,07,2002,00,00"),
		sentence("GPGSA,A,3,01,,,,,,,,,,,,1,2,3"),
		sentence("GPHDT,274.07,T"),
	)
	snap := st.Snapshot(time.Time{})

	expected := []Field{
		{"UTC", "20:15:30"},
		{"Date", "2002-07-04"},
		{"Talker", "GP"},
		{"Fix", "GPS"},
		{"Sats Used", "1"},
		{"In View", "11"},
		{"PDOP", "1.0"},
		{"HDOP", "2.0"},
		{"VDOP", "3.0"},
		{"Altitude", "545.4 m"},
		{"Heading", "274.1°T"},
		{"Checksums", "OK:6 Bad:0"},
	}
	assert.Equal(t, expected, snap.Display())
	assert.Equal(t, "275.6°T", snap.Filtered())
	assert.Equal(t, "raw: 274.1°T    FIR: 4    offset: 1.5°", snap.FilterLine())

	status := snap.Status()
	assert.Contains(t, status, "UTC 20:15:30  Date 2002-07-04  Talker GP  OK:6 Bad:0\n")
	assert.Contains(t, status, "Fix GPS  Used 1  InView 11  PDOP 1.0  HDOP 2.0  VDOP 3.0\n")
	assert.Contains(t, status, "Alt 545.4 m  Heading 274.1°T  Filtered 275.6°T")
}

func TestSnapshotIsACopy(t *testing.T) {
	st := New(15, 0)
	apply(st, sentence("GPGSV,3,1,11,03"))
	snap := st.Snapshot(time.Time{})

	apply(st, sentence("GPGSV,3,1,12,03"))
	*st.SatsInView = 99

	require.NotNil(t, snap.SatsInView)
	assert.Equal(t, 11, *snap.SatsInView)
}

func TestSnapshotJSON(t *testing.T) {
	st := New(15, 0)
	apply(st, sentence("GPGSV,3,1,0,03"))
	taken := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

	out, err := json.Marshal(st.Snapshot(taken))
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Equal(t, "2021-06-01T12:00:00Z", m["taken"])
	assert.Equal(t, float64(0), m["sats_in_view"])
	assert.Equal(t, float64(15), m["window"])
	assert.Equal(t, "GP", m["talker"])
	assert.NotContains(t, m, "utc")
	assert.NotContains(t, m, "filtered_heading")
}
