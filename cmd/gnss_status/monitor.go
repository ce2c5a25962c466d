// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"gitlab.com/postmarketOS/gnss_status/internal/gnss"
	"gitlab.com/postmarketOS/gnss_status/internal/nav"
)

// monitor is the consumer side of a gnss.Reader. It drains the reader's
// queues, fans snapshots out to the sinks, forwards raw sentences and logs
// a status summary every statusInterval.
type monitor struct {
	reader *gnss.Reader
	log    *logrus.Entry

	statusInterval time.Duration
	// Raw sentences are sent here, newline terminated. May be nil.
	broadcast chan<- []byte
	sinks     []func(nav.Snapshot)

	latest *nav.Snapshot
}

// run consumes until readerDone is closed, then drains what is left. The
// reader stops on the same ctx, so ctx only stops the status ticker; the
// reader's final snapshot and events still get through.
func (m *monitor) run(ctx context.Context, readerDone <-chan struct{}) {
	var tick <-chan time.Time
	if m.statusInterval > 0 {
		ticker := time.NewTicker(m.statusInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	stop := ctx.Done()
	for {
		select {
		case <-stop:
			stop = nil
			tick = nil
		case <-readerDone:
			m.drain()
			m.logStatus()
			return
		case <-m.reader.Snapshots.Ready():
			m.drainSnapshots()
		case <-m.reader.Lines.Ready():
			m.drainLines()
		case <-tick:
			m.logStatus()
		}
	}
}

func (m *monitor) drain() {
	m.drainLines()
	m.drainSnapshots()
}

func (m *monitor) drainSnapshots() {
	for _, snap := range m.reader.Snapshots.Drain() {
		m.latest = &snap
		for _, sink := range m.sinks {
			sink(snap)
		}
	}
}

func (m *monitor) drainLines() {
	for _, ev := range m.reader.Lines.Drain() {
		if !ev.Sentence {
			m.log.Info(ev.Text)
			continue
		}

		if ev.Good() {
			m.log.WithField("checksum", "OK").Debug(ev.Text)
		} else {
			m.log.WithField("checksum", "BAD").Warn(ev.Text)
		}

		if m.broadcast == nil {
			continue
		}
		select {
		case m.broadcast <- []byte(ev.Text + "\n"):
		default:
			m.log.Debug("socket broadcast queue full, sentence dropped")
		}
	}
}

func (m *monitor) logStatus() {
	if m.latest == nil {
		return
	}
	m.log.WithField("window", m.latest.Window).Info(m.latest.Status())
}
