// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"gitlab.com/postmarketOS/gnss_status/internal/nav"
)

const publishTimeout = 2 * time.Second

// Publisher sends snapshots as retained JSON messages, so a subscriber
// always gets the latest one on connect.
type Publisher struct {
	client paho.Client
	topic  string
	log    *logrus.Entry
}

func Connect(broker, clientID, topic string, log *logrus.Entry) (*Publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt.Connect(): %w", token.Error())
	}

	p := newPublisher(client, topic, log)
	p.log.Info("connected to MQTT broker")
	return p, nil
}

func newPublisher(client paho.Client, topic string, log *logrus.Entry) *Publisher {
	return &Publisher{
		client: client,
		topic:  topic,
		log:    log.WithField("topic", topic),
	}
}

func (p *Publisher) Publish(snap nav.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("mqtt/Publisher.Publish: %w", err)
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt/Publisher.Publish: timed out after %s", publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt/Publisher.Publish: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
	p.log.Info("disconnected from MQTT broker")
}
