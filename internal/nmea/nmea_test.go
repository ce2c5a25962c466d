// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"fmt"
	"reflect"
	"testing"
)

func line(payload string) string {
	return fmt.Sprintf("$%s*%s", payload, checksum(payload))
}

// Test sentence checksumming
func TestChecksum(t *testing.T) {
	tables := []struct {
		in       string
		expected string
	}{
		{"GPGLL,0000.00000,N,00000.00000,E,070254.000,V,N", "45"},
		{"GNGSA,A,1,,,,,,,,,,,,,99.0,99.0,99.0", "1E"},
		{"PSTMDUMPEPHEMS,", "3C"},
		{"GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,", "47"},
	}

	for _, table := range tables {
		out := checksum(table.in)
		if out != table.expected {
			t.Errorf("%q expected: %q, got: %q", table.in, table.expected, out)
		}
	}
}

func TestChecksumOK(t *testing.T) {
	tables := []struct {
		in       string
		expected bool
	}{
		{"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47", true},
		{"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*48", false},
		{"$GNGSA,A,1,,,,,,,,,,,,,99.0,99.0,99.0*1e", true},
		{"  $GNGSA,A,1,,,,,,,,,,,,,99.0,99.0,99.0*1E\r\n", true},
		{"$GNGSA,A,1,,,,,,,,,,,,,99.0,99.0,99.0*1E7", true},
		{"GNGSA,A,1,,,,,,,,,,,,,99.0,99.0,99.0*1E", false},
		{"$GNGSA,A,1,,,,,,,,,,,,,99.0,99.0,99.0", false},
		{"$GNGSA,A,1,,,,,,,,,,,,,99.0,99.0,99.0*1", false},
		{"$GNGSA,A,1,,,,,,,,,,,,,99.0,99.0,99.0*ZZ", false},
		{line("GPHDT,1.0,T"), true},
		{line("GPZDA,201530.00,04,07,2002,00,00") + "\r\n", true},
		{"$*00", true},
		{"", false},
	}

	for _, table := range tables {
		out := ChecksumOK(table.in)
		if out != table.expected {
			t.Errorf("%q expected: %v, got: %v", table.in, table.expected, out)
		}
	}
}

func TestParse(t *testing.T) {
	tables := []struct {
		in       string
		expected Sentence
	}{
		{
			"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47",
			Sentence{
				Talker:     "GP",
				Type:       "GGA",
				Fields:     []string{"123519", "4807.038", "N", "01131.000", "E", "1", "08", "0.9", "545.4", "M", "46.9", "M", "", ""},
				ChecksumOK: true,
			},
		},
		{
			"$GPHDT,274.07,T",
			Sentence{Talker: "GP", Type: "HDT", Fields: []string{"274.07", "T"}},
		},
		{
			"$PSTMGPSSUSPEND,*38",
			Sentence{Talker: "PS", Type: "TMGPSSUSPEND", Fields: []string{""}, ChecksumOK: true},
		},
		{
			"$GPHD,1*00",
			Sentence{},
		},
		{
			"GPHDT,274.07,T*00",
			Sentence{},
		},
		{
			"$",
			Sentence{},
		},
		{
			"$*00",
			Sentence{ChecksumOK: true},
		},
	}

	for _, table := range tables {
		out := Parse(table.in)
		if !reflect.DeepEqual(out, table.expected) {
			t.Errorf("%q expected: %+v, got: %+v", table.in, table.expected, out)
		}
	}
}

func TestParseChecksumMatchesManualXOR(t *testing.T) {
	payloads := []string{
		"GPHDT,359.0,T",
		"GPHDT,1.0,T",
		"GPZDA,201530.00,04,07,2002,00,00",
		"GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00",
	}

	for _, p := range payloads {
		var x byte
		for i := 0; i < len(p); i++ {
			x ^= p[i]
		}
		good := fmt.Sprintf("$%s*%02X", p, x)
		bad := fmt.Sprintf("$%s*%02X", p, x^0x01)

		if s := Parse(good); !s.ChecksumOK {
			t.Errorf("%q expected checksum ok", good)
		}
		if s := Parse(bad); s.ChecksumOK {
			t.Errorf("%q expected checksum bad", bad)
		}
		if !reflect.DeepEqual(Parse(good).Fields, Parse(bad).Fields) {
			t.Errorf("%q fields differ between good and bad checksum", p)
		}
	}
}
