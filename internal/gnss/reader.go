// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gnss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"gitlab.com/postmarketOS/gnss_status/internal/heading"
	"gitlab.com/postmarketOS/gnss_status/internal/nav"
	"gitlab.com/postmarketOS/gnss_status/internal/nmea"
	"gitlab.com/postmarketOS/gnss_status/internal/queue"
)

const readSize = 4096

type ReaderConfig struct {
	// Name identifies the source in log messages, e.g. the device path.
	Name string
	Baud int

	Window    int
	OffsetDeg float64

	// SnapshotInterval is the minimum time between published snapshots.
	SnapshotInterval time.Duration
}

// Reader runs the receive pipeline: bytes from a Source are framed into
// lines, parsed and folded into a navigation state. Run is the only writer
// of that state; consumers see it through the Snapshots and Lines queues.
type Reader struct {
	cfg  ReaderConfig
	open Opener
	log  *logrus.Entry

	Snapshots *queue.Queue[nav.Snapshot]
	Lines     *queue.Queue[Event]

	ctl controls
	now func() time.Time
}

func NewReader(cfg ReaderConfig, open Opener, log *logrus.Entry) *Reader {
	if cfg.Window == 0 {
		cfg.Window = heading.DefaultWindow
	}
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = 200 * time.Millisecond
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Reader{
		cfg:       cfg,
		open:      open,
		log:       log.WithField("source", cfg.Name),
		Snapshots: queue.New[nav.Snapshot](),
		Lines:     queue.New[Event](),
		now:       time.Now,
	}
}

// SetWindow changes the heading filter length. Safe to call from any
// goroutine; applied before the next chunk of input is processed.
func (r *Reader) SetWindow(n int) {
	r.ctl.mu.Lock()
	r.ctl.window = &n
	r.ctl.mu.Unlock()
}

// SetOffset changes the offset added to the filtered heading. It is applied
// from the next HDT sentence on.
func (r *Reader) SetOffset(deg float64) {
	r.ctl.mu.Lock()
	r.ctl.offset = &deg
	r.ctl.mu.Unlock()
}

// ResetFilter discards all heading samples.
func (r *Reader) ResetFilter() {
	r.ctl.mu.Lock()
	r.ctl.reset = true
	r.ctl.mu.Unlock()
}

// Run opens the source and processes it until ctx is done, the source ends
// or a read fails. An open or read failure is reported once on Lines and
// returned.
func (r *Reader) Run(ctx context.Context) (err error) {
	src, err := r.open()
	if err != nil {
		r.event(fmt.Sprintf("ERROR opening %s: %v", r.cfg.Name, err))
		r.log.WithError(err).Error("open failed")
		return fmt.Errorf("gnss/Reader.Run: %w", err)
	}
	r.event(fmt.Sprintf("Opened %s at %d 8N1", r.cfg.Name, r.cfg.Baud))
	r.log.WithField("baud", r.cfg.Baud).Info("source opened")

	st := nav.New(r.cfg.Window, r.cfg.OffsetDeg)
	defer func() {
		r.publish(st)
		if cerr := src.Close(); cerr != nil {
			r.log.WithError(cerr).Warn("close failed")
		}
		r.event("Serial closed.")
		r.log.Info("source closed")
	}()

	var framer nmea.Framer
	buf := make([]byte, readSize)
	last := r.now()
	r.publish(st)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, rerr := src.Read(buf)
		r.ctl.apply(st)

		for _, line := range framer.Feed(buf[:n]) {
			s := nmea.Parse(line)
			st.Apply(s)
			r.Lines.Push(Event{
				Time:       r.now(),
				Text:       line,
				Sentence:   strings.HasPrefix(line, "$"),
				ChecksumOK: s.ChecksumOK,
			})
		}

		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				r.log.Info("end of stream")
				return nil
			}
			r.event(fmt.Sprintf("ERROR reading %s: %v", r.cfg.Name, rerr))
			r.log.WithError(rerr).Error("read failed")
			return fmt.Errorf("gnss/Reader.Run: %w", rerr)
		}

		if now := r.now(); now.Sub(last) >= r.cfg.SnapshotInterval {
			r.publish(st)
			last = now
		}
	}
}

func (r *Reader) publish(st *nav.State) {
	r.Snapshots.Push(st.Snapshot(r.now()))
}

func (r *Reader) event(msg string) {
	r.Lines.Push(Event{Time: r.now(), Text: msg})
}

// controls holds filter changes requested by other goroutines until the
// Run loop picks them up.
type controls struct {
	mu     sync.Mutex
	window *int
	offset *float64
	reset  bool
}

func (c *controls) apply(st *nav.State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reset {
		st.Filter().Reset()
		st.Filtered = nil
		c.reset = false
	}
	if c.window != nil {
		st.Filter().SetWindow(*c.window)
		c.window = nil
	}
	if c.offset != nil {
		st.Offset = *c.offset
		c.offset = nil
	}
}
