package mqtt

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

var ErrPublishTimeout = errors.New("mqtt publish timed out")

type Config struct {
	Broker               string
	ClientID             string
	Username             string
	Password             string
	CleanSession         bool
	KeepAlive            time.Duration
	ConnectTimeout       time.Duration
	PublishTimeout       time.Duration
	AutoReconnect        bool
	MaxReconnectInterval time.Duration
}

// Client is a thin publish-side wrapper around the paho client.
type Client struct {
	client mqtt.Client
	config *Config
	log    *zap.Logger
}

func NewClient(config *Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetUsername(config.Username)
	opts.SetPassword(config.Password)
	opts.SetCleanSession(config.CleanSession)
	opts.SetKeepAlive(config.KeepAlive)
	opts.SetConnectTimeout(config.ConnectTimeout)
	opts.SetAutoReconnect(config.AutoReconnect)
	opts.SetMaxReconnectInterval(config.MaxReconnectInterval)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("MQTT client connected", zap.String("broker", config.Broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("MQTT connection lost", zap.Error(err))
	})
	opts.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		log.Info("Reconnecting to MQTT broker", zap.String("broker", config.Broker))
	})

	return &Client{
		client: mqtt.NewClient(opts),
		config: config,
		log:    log,
	}
}

func (c *Client) Connect() error {
	token := c.client.Connect()
	if !token.WaitTimeout(c.config.ConnectTimeout) {
		return fmt.Errorf("failed to connect to MQTT broker %s: timeout", c.config.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return nil
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(c.config.PublishTimeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

func (c *Client) Disconnect() {
	c.client.Disconnect(250)
	c.log.Info("Disconnected from MQTT broker")
}

func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}
