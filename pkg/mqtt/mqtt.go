// Package mqtt publishes messages to a mqtt broker.
package mqtt

import (
	"sync"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

const (
	// quiesce is the specified number of milliseconds to wait for existing work to be completed.
	quiesce = 250
	// queueSize is the number of messages buffered for Service.
	queueSize = 16
	// clientID identifies the client at the broker.
	clientID = "segcount"
)

// Handler contains the handler of the mqtt broker.
type Handler struct {
	handler mqttlib.Client
	// c is the queue of messages to send, it is serviced by Service.
	c    chan Message
	once sync.Once
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New generate a new mqtt broker client.
func New() *Handler {
	return &Handler{
		c: make(chan Message, queueSize),
	}
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt message are send.
func (m *Handler) Connect(broker string) error {
	if broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().AddBroker(broker).SetClientID(clientID).SetAutoReconnect(true)
	m.handler = mqttlib.NewClient(opts)
	return m.ReConnect()
}

// ReConnect reconnects to the defined mqtt broker.
func (m *Handler) ReConnect() error {
	t := m.handler.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect will end the connection to the broker and stops Service.
func (m *Handler) Disconnect() error {
	m.once.Do(func() { close(m.c) })

	if m.handler == nil {
		return nil
	}

	m.handler.Disconnect(quiesce)
	return nil
}

// Publish queues the message for Service without blocking.
// If the queue is full, the message is dropped.
func (m *Handler) Publish(msg Message) {
	if m.handler == nil || msg.Topic == "" {
		return
	}

	select {
	case m.c <- msg:
	default:
		debug.ErrorLog.Printf("mqtt queue is full, drop message to topic %v", msg.Topic)
	}
}

// Service listen to a message on the queue and send the message to mqtt.
// If no handler is defined, the message will be ignored.
func (m *Handler) Service() {
	for msg := range m.c {
		if m.handler == nil {
			continue
		}

		if !m.handler.IsConnected() {
			debug.DebugLog.Printf("mqtt broker isn't connected, reconnect it")

			if err := m.ReConnect(); err != nil {
				debug.ErrorLog.Printf("can't reconnect to mqtt broker %v", err)
				continue
			}
		}

		debug.DebugLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
		t := m.handler.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)

		// the asynchronous nature of this library makes it easy to forget to check for errors.
		go func(topic string) {
			<-t.Done()
			if err := t.Error(); err != nil {
				debug.ErrorLog.Printf("publishing topic %v: %v", topic, err)
			}
		}(msg.Topic)
	}
}
