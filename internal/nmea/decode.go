// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package nmea

import (
	"math"
	"strconv"
	"strings"
)

// ParseInt returns ok=false for an empty or non-integer field.
func ParseInt(s string) (v int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseFloat returns ok=false for an empty, non-numeric or non-finite field.
func ParseFloat(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Norm360 maps any angle in degrees into [0, 360).
func Norm360(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}
