package mqtt

import (
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/isnet/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// Message is a payload recorded by MockClient.
type Message struct {
	Topic   string
	Payload []byte
}

// MockClient records published messages in memory.
type MockClient struct {
	Messages     []Message
	FailTopics   map[string]bool
	Disconnected bool
	mu           sync.Mutex
}

// NewMockClient creates a new MockClient.
func NewMockClient() *MockClient {
	return &MockClient{FailTopics: make(map[string]bool)}
}

// Publish records the message or returns an error if the topic is set to fail.
func (m *MockClient) Publish(topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTopics[topic] {
		return fmt.Errorf("publish failed")
	}
	m.Messages = append(m.Messages, Message{Topic: topic, Payload: append([]byte(nil), payload...)})
	return nil
}

// Disconnect marks the client as closed.
func (m *MockClient) Disconnect() {
	m.mu.Lock()
	m.Disconnected = true
	m.mu.Unlock()
}
