package mqtt

// Client publishes messages to an MQTT broker.
type Client interface {
	// Publish sends payload to topic and returns once the broker accepted it
	// according to the configured QoS.
	Publish(topic string, payload []byte) error

	// Disconnect closes the connection.
	Disconnect()
}
