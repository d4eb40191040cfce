package mqtt

import (
	"fmt"
	"os"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Mavwarf/imaging/internal/config"
)

const timeout = 5 * time.Second

// DefaultClientID is used when the config leaves client_id empty.
const DefaultClientID = "imaging"

// Publish connects to the configured broker, publishes message and
// disconnects. Each call uses a fresh connection, matching the webhook
// pattern. Username and password are expanded with os.ExpandEnv.
func Publish(cfg config.MQTT, message []byte) error {
	if cfg.Broker == "" || cfg.Topic == "" {
		return fmt.Errorf("mqtt: broker and topic are required")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = DefaultClientID
	}
	opts := pahomqtt.NewClientOptions().
		AddBroker(os.ExpandEnv(cfg.Broker)).
		SetClientID(clientID).
		SetConnectTimeout(timeout).
		SetAutoReconnect(false)

	if cfg.Username != "" {
		opts.SetUsername(os.ExpandEnv(cfg.Username))
	}
	if cfg.Password != "" {
		opts.SetPassword(os.ExpandEnv(cfg.Password))
	}

	client := pahomqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: connect timeout")
	}
	if tok.Error() != nil {
		return fmt.Errorf("mqtt: connect: %w", tok.Error())
	}
	defer client.Disconnect(250)

	pub := client.Publish(cfg.Topic, cfg.QoS, cfg.Retain, message)
	if !pub.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if pub.Error() != nil {
		return fmt.Errorf("mqtt: publish: %w", pub.Error())
	}
	return nil
}
