// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/postmarketOS/gnss_status/internal/nav"
	"gitlab.com/postmarketOS/gnss_status/internal/nmea"
)

type fakeToken struct {
	done bool
	err  error
}

func (t *fakeToken) Wait() bool                       { return t.done }
func (t *fakeToken) WaitTimeout(_ time.Duration) bool { return t.done }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.done {
		close(ch)
	}
	return ch
}
func (t *fakeToken) Error() error { return t.err }

// fakeClient records publishes; every other method panics via the nil
// embedded interface.
type fakeClient struct {
	paho.Client

	topic        string
	qos          byte
	retained     bool
	payload      []byte
	token        *fakeToken
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.topic = topic
	c.qos = qos
	c.retained = retained
	c.payload = payload.([]byte)
	return c.token
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.disconnected = true
}

func newTestPublisher(token *fakeToken) (*Publisher, *fakeClient) {
	logger, _ := test.NewNullLogger()
	client := &fakeClient{token: token}
	return newPublisher(client, "gnss/status", logrus.NewEntry(logger)), client
}

func TestPublish(t *testing.T) {
	p, client := newTestPublisher(&fakeToken{done: true})

	st := nav.New(15, 0)
	st.Apply(nmea.Parse("$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47"))
	require.NoError(t, p.Publish(st.Snapshot(time.Time{})))

	assert.Equal(t, "gnss/status", client.topic)
	assert.Equal(t, byte(0), client.qos)
	assert.True(t, client.retained)

	var snap nav.Snapshot
	require.NoError(t, json.Unmarshal(client.payload, &snap))
	require.NotNil(t, snap.UTC)
	assert.Equal(t, "12:35:19", *snap.UTC)
	assert.Equal(t, 8, *snap.SatsUsed)
	assert.Equal(t, 15, snap.Window)

	p.Close()
	assert.True(t, client.disconnected)
}

func TestPublishErrors(t *testing.T) {
	p, _ := newTestPublisher(&fakeToken{done: false})
	assert.Error(t, p.Publish(nav.Snapshot{}))

	brokerErr := errors.New("not connected")
	p, _ = newTestPublisher(&fakeToken{done: true, err: brokerErr})
	assert.ErrorIs(t, p.Publish(nav.Snapshot{}), brokerErr)
}
