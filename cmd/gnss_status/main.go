// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"

	"gitlab.com/postmarketOS/gnss_status/internal/config"
	"gitlab.com/postmarketOS/gnss_status/internal/gnss"
	"gitlab.com/postmarketOS/gnss_status/internal/logging"
	"gitlab.com/postmarketOS/gnss_status/internal/mqtt"
	"gitlab.com/postmarketOS/gnss_status/internal/nav"
	"gitlab.com/postmarketOS/gnss_status/internal/pool"
	"gitlab.com/postmarketOS/gnss_status/internal/server"
	"gitlab.com/postmarketOS/gnss_status/internal/web"
)

func usage() {
	flag.CommandLine.Usage()
}

func main() {
	var confFile string
	flag.StringVar(&confFile, "c", "/etc/gnss_status.conf", "Configuration file to use.")
	var replay string
	flag.StringVar(&replay, "r", "", "Replay NMEA sentences from a file instead of the serial device.")
	var help bool
	flag.BoolVar(&help, "h", false, "Print help and quit.")

	flag.Usage = func() {
		fmt.Println("usage: gnss_status [OPTION...]")
		fmt.Println("Options:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if help {
		usage()
		return
	}
	if flag.NArg() > 0 {
		fmt.Printf("Unknown argument: %q\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	conf, err := config.Parse(confFile)
	if err != nil {
		logrus.Fatal(err)
	}
	if err := conf.Validate(replay == ""); err != nil {
		logrus.Fatal(err)
	}

	logger := logging.New(os.Stderr, conf.LogLevel, conf.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, conf, replay, logger)
	cancel()
	if err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, conf *config.Config, replay string, logger *logrus.Logger) error {
	name, open := conf.DevicePath, gnss.SerialOpener(conf.DevicePath, conf.BaudRate, conf.ReadTimeout)
	if replay != "" {
		name, open = replay, gnss.FileOpener(replay)
	}

	reader := gnss.NewReader(gnss.ReaderConfig{
		Name:             name,
		Baud:             conf.BaudRate,
		Window:           conf.FIRWindow,
		OffsetDeg:        conf.HeadingOffsetDeg,
		SnapshotInterval: conf.SnapshotInterval,
	}, open, logging.Component(logger, "reader"))

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		wg.Wait()
	}()

	mon := &monitor{
		reader:         reader,
		log:            logging.Component(logger, "monitor"),
		statusInterval: conf.StatusInterval,
	}

	if conf.Socket != "" {
		connPool := pool.New()
		srv := server.New(conf.Socket, conf.OwnerGroup, connPool, logging.Component(logger, "server"))
		if err := srv.Listen(); err != nil {
			return fmt.Errorf("run(): %w", err)
		}

		wg.Add(2)
		go func() {
			defer wg.Done()
			connPool.Start(ctx)
		}()
		go func() {
			defer wg.Done()
			if err := srv.Serve(ctx); err != nil {
				logger.WithError(err).Error("socket server stopped")
				cancel()
			}
		}()
		mon.broadcast = connPool.Broadcast
	}

	if conf.HTTPListen != "" {
		webSrv := web.NewServer(conf.HTTPListen, reader, logging.Component(logger, "web"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := webSrv.Start(ctx); err != nil {
				logger.WithError(err).Error("HTTP server stopped")
				cancel()
			}
		}()
		mon.sinks = append(mon.sinks, webSrv.Publish)
	}

	if conf.MQTTBroker != "" {
		pub, err := mqtt.Connect(conf.MQTTBroker, conf.MQTTClientID, conf.MQTTTopic, logging.Component(logger, "mqtt"))
		if err != nil {
			return fmt.Errorf("run(): %w", err)
		}
		defer pub.Close()

		mqttLog := logging.Component(logger, "mqtt")
		mon.sinks = append(mon.sinks, func(snap nav.Snapshot) {
			if err := pub.Publish(snap); err != nil {
				mqttLog.WithError(err).Warn("publish failed")
			}
		})
	}

	readerDone := make(chan struct{})
	var readerErr error
	go func() {
		defer close(readerDone)
		readerErr = reader.Run(ctx)
	}()

	mon.run(ctx, readerDone)
	return readerErr
}
