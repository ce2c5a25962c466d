// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"math"
	"testing"
)

func TestParseInt(t *testing.T) {
	tables := []struct {
		in string
		v  int
		ok bool
	}{
		{"08", 8, true},
		{" 12 ", 12, true},
		{"-3", -3, true},
		{"0", 0, true},
		{"", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
	}

	for _, table := range tables {
		v, ok := ParseInt(table.in)
		if v != table.v || ok != table.ok {
			t.Errorf("%q expected: (%d, %v), got: (%d, %v)", table.in, table.v, table.ok, v, ok)
		}
	}
}

func TestParseFloat(t *testing.T) {
	tables := []struct {
		in string
		v  float64
		ok bool
	}{
		{"0.9", 0.9, true},
		{"545.4", 545.4, true},
		{"-12", -12, true},
		{"", 0, false},
		{"M", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, table := range tables {
		v, ok := ParseFloat(table.in)
		if v != table.v || ok != table.ok {
			t.Errorf("%q expected: (%v, %v), got: (%v, %v)", table.in, table.v, table.ok, v, ok)
		}
	}
}

func TestNorm360(t *testing.T) {
	tables := []struct {
		in       float64
		expected float64
	}{
		{0, 0},
		{360, 0},
		{-1, 359},
		{721.5, 1.5},
		{-720, 0},
		{359.9, 359.9},
		{-1e-20, 0},
	}

	for _, table := range tables {
		out := Norm360(table.in)
		if math.Abs(out-table.expected) > 1e-9 {
			t.Errorf("%v expected: %v, got: %v", table.in, table.expected, out)
		}
	}
}

func TestNorm360Periodic(t *testing.T) {
	for _, x := range []float64{0, 1.25, 90, 179.5, 359.75, -45, -400.5} {
		base := Norm360(x)
		for k := -3; k <= 3; k++ {
			out := Norm360(x + 360*float64(k))
			if out < 0 || out >= 360 {
				t.Errorf("Norm360(%v) out of range: %v", x+360*float64(k), out)
			}
			if math.Abs(out-base) > 1e-9 {
				t.Errorf("Norm360(%v) = %v, expected %v", x+360*float64(k), out, base)
			}
		}
	}
}
