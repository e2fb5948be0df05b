// Package tele publishes sensor telemetry to MQTT. Optional; with
// Enable=false every method is a cheap no-op so callers never branch.
package tele

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/temoto/roomba/helpers"
	"github.com/temoto/roomba/log2"
	"github.com/temoto/roomba/oi"
)

const defaultNetworkTimeoutSec = 30

type Config struct {
	Enable            bool   `hcl:"enable"`
	Broker            string `hcl:"broker"`
	ClientID          string `hcl:"client_id"`
	Password          string `hcl:"password"`
	TopicPrefix       string `hcl:"topic_prefix"`
	KeepaliveSec      int    `hcl:"keepalive_sec"`
	NetworkTimeoutSec int    `hcl:"network_timeout_sec"`
	LogDebug          bool   `hcl:"log_debug"`
}

type Tele struct {
	log     *log2.Log
	conf    Config
	m       mqtt.Client
	mopt    *mqtt.ClientOptions
	enabled bool

	topicState     string
	topicTelemetry string
}

func (self *Tele) Init(log *log2.Log, conf Config) error {
	self.log = log
	self.conf = conf
	if !conf.Enable {
		return nil
	}
	if conf.Broker == "" {
		return errors.NotValidf("tele broker")
	}
	clientID := conf.ClientID
	if clientID == "" {
		clientID = "roomba"
	}
	topicPrefix := conf.TopicPrefix
	if topicPrefix == "" {
		topicPrefix = clientID
	}
	self.topicState = fmt.Sprintf("%s/w/1s", topicPrefix)
	self.topicTelemetry = fmt.Sprintf("%s/w/1t", topicPrefix)

	mqttLog := self.log.Clone(log2.LDebug)
	mqtt.CRITICAL = mqttLog
	mqtt.ERROR = mqttLog
	mqtt.WARN = mqttLog
	if conf.LogDebug {
		mqtt.DEBUG = mqttLog
	}

	networkTimeout := helpers.IntSecondDefault(conf.NetworkTimeoutSec, defaultNetworkTimeoutSec*time.Second)
	if networkTimeout < 1*time.Second {
		networkTimeout = 1 * time.Second
	}
	connectTimeout := networkTimeout * 3
	keepalive := helpers.IntSecondDefault(conf.KeepaliveSec, networkTimeout/2)
	credFun := func() (string, string) { return clientID, conf.Password }

	self.mopt = mqtt.NewClientOptions().
		AddBroker(conf.Broker).
		SetAutoReconnect(true).
		SetBinaryWill(self.topicState, []byte{0}, 1, true).
		SetCleanSession(false).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetCredentialsProvider(credFun).
		SetKeepAlive(keepalive).
		SetMaxReconnectInterval(connectTimeout).
		SetOrderMatters(false).
		SetPingTimeout(networkTimeout).
		SetWriteTimeout(networkTimeout)
	self.m = mqtt.NewClient(self.mopt)

	if err := self.tokenWait(self.m.Connect(), "connect"); err != nil {
		return errors.Trace(err)
	}
	self.enabled = true
	return self.SendState([]byte{1})
}

func (self *Tele) Close() {
	if !self.enabled {
		return
	}
	_ = self.SendState([]byte{0})
	self.m.Disconnect(uint(self.mopt.PingTimeout / time.Millisecond))
	self.enabled = false
}

func (self *Tele) SendState(payload []byte) error {
	if !self.enabled {
		return nil
	}
	t := self.m.Publish(self.topicState, 1, true, payload)
	return self.tokenWait(t, "publish state")
}

// SendRecord publishes one decoded sensor record as its text form.
func (self *Tele) SendRecord(r *oi.Record) error {
	if !self.enabled {
		return nil
	}
	t := self.m.Publish(self.topicTelemetry, 1, false, []byte(r.String()))
	return self.tokenWait(t, "publish telemetry")
}

func (self *Tele) tokenWait(t mqtt.Token, tag string) error {
	if !t.WaitTimeout(self.mopt.ConnectTimeout) {
		err := errors.Timeoutf("tele %s", tag)
		self.log.Errorf("tele: MQTT %s", err.Error())
		return err
	}
	if err := t.Error(); err != nil {
		err = errors.Annotate(err, tag)
		self.log.Errorf("tele: MQTT %s", err.Error())
		return err
	}
	return nil
}
