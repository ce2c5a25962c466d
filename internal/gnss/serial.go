// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package gnss

import (
	"fmt"
	"os"
	"time"

	"go.bug.st/serial"
)

// OpenSerial opens a serial device as 8N1 at the given baud rate, with reads
// returning after at most timeout.
func OpenSerial(path string, baud int, timeout time.Duration) (src Source, err error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		err = fmt.Errorf("gnss.OpenSerial(): %w", err)
		return
	}

	if err = port.SetReadTimeout(timeout); err != nil {
		port.Close()
		err = fmt.Errorf("gnss.OpenSerial(): %w", err)
		return
	}

	src = port
	return
}

func SerialOpener(path string, baud int, timeout time.Duration) Opener {
	return func() (Source, error) {
		return OpenSerial(path, baud, timeout)
	}
}

// FileOpener replays a captured NMEA log. The Reader stops at end of file.
func FileOpener(path string) Opener {
	return func() (Source, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("gnss.FileOpener(): %w", err)
		}
		return f, nil
	}
}
