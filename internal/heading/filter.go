// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package heading smooths a circular heading signal.
//
// A plain average of angles breaks across north (the mean of 359° and 1°
// is 0°, not 180°), so samples are summed as unit vectors and the mean is
// taken from the direction of the resulting vector. Running sums keep Add
// and eviction O(1).
package heading

import (
	"math"

	"gitlab.com/postmarketOS/gnss_status/internal/nmea"
)

const DefaultWindow = 15

// Filter is a moving average over the last Window() headings. It is not safe
// for concurrent use.
type Filter struct {
	window int
	angles []float64 // radians, oldest first
	sumSin float64
	sumCos float64
}

func New(window int) *Filter {
	f := &Filter{}
	f.SetWindow(window)
	return f
}

// Add appends a heading in degrees, evicting the oldest sample if the window
// is full.
func (f *Filter) Add(deg float64) {
	rad := nmea.Norm360(deg) * math.Pi / 180
	f.angles = append(f.angles, rad)
	f.sumSin += math.Sin(rad)
	f.sumCos += math.Cos(rad)
	f.trim()
}

// Value returns the circular mean in [0, 360), or ok=false when the filter
// holds no samples.
func (f *Filter) Value() (deg float64, ok bool) {
	if len(f.angles) == 0 {
		return 0, false
	}
	mean := math.Atan2(f.sumSin, f.sumCos) * 180 / math.Pi
	return nmea.Norm360(mean), true
}

// SetWindow resizes the filter to at least one sample, dropping the oldest
// samples that no longer fit.
func (f *Filter) SetWindow(n int) {
	if n < 1 {
		n = 1
	}
	f.window = n
	f.trim()
}

func (f *Filter) Window() int {
	return f.window
}

// Len returns the number of samples currently held.
func (f *Filter) Len() int {
	return len(f.angles)
}

func (f *Filter) Reset() {
	f.angles = f.angles[:0]
	f.sumSin = 0
	f.sumCos = 0
}

func (f *Filter) trim() {
	for len(f.angles) > f.window {
		old := f.angles[0]
		f.angles = f.angles[1:]
		f.sumSin -= math.Sin(old)
		f.sumCos -= math.Cos(old)
	}
	if len(f.angles) == 0 {
		// drop accumulated rounding error
		f.sumSin = 0
		f.sumCos = 0
	}
}
