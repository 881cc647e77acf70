package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"sunstrip/internal/sun"
)

type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	enabled     bool
}

type PublisherConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	Enabled     bool
}

func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			log.Println("MQTT connected")
		})

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Publisher{
		client:      client,
		topicPrefix: cfg.TopicPrefix,
		enabled:     true,
	}, nil
}

// PublishSun publishes one day's sun data: individual value topics plus a
// retained JSON status.
func (p *Publisher) PublishSun(data *sun.Data) error {
	if !p.enabled {
		return nil
	}

	topics := map[string]interface{}{
		"sunrise":            sun.FormatMinutes(data.SunriseMinutes),
		"sunset":             sun.FormatMinutes(data.SunsetMinutes),
		"solar_noon":         sun.FormatMinutes(data.SolarNoonMinutes),
		"sunrise_minutes":    data.SunriseMinutes,
		"sunset_minutes":     data.SunsetMinutes,
		"solar_noon_minutes": data.SolarNoonMinutes,
		"day_length":         data.DayLengthSeconds,
		"provider":           data.Provider,
	}

	for name, value := range topics {
		topic := fmt.Sprintf("%s/sun/%s", p.topicPrefix, name)
		payload := fmt.Sprintf("%v", value)
		token := p.client.Publish(topic, 0, false, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("Failed to publish to %s: %v", topic, token.Error())
		}
	}

	statusJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal sun data: %w", err)
	}

	statusTopic := fmt.Sprintf("%s/sun/status", p.topicPrefix)
	token := p.client.Publish(statusTopic, 0, true, statusJSON)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish sun status: %w", token.Error())
	}

	return nil
}

// PublishPixel publishes the current-time pixel whenever it moves.
func (p *Publisher) PublishPixel(pixel int) error {
	if !p.enabled {
		return nil
	}

	topic := fmt.Sprintf("%s/clock/pixel", p.topicPrefix)
	token := p.client.Publish(topic, 0, true, strconv.Itoa(pixel))
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish pixel: %w", token.Error())
	}
	return nil
}

func (p *Publisher) Close() {
	if p.enabled && p.client != nil {
		p.client.Disconnect(250)
	}
}
