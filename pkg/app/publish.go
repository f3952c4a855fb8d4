package app

import (
	"encoding/json"

	"segcount/pkg/mqtt"

	"github.com/womat/debug"
)

// update saves the shown state for the web services and sends it to the mqtt broker.
func (app *App) update(s Snapshot) {
	app.display.Lock()
	app.display.data = s
	app.display.Unlock()

	if app.config.MQTT.Topic != "" {
		app.sendMQTT(app.config.MQTT.Topic, s)
	}
}

// Display returns the last state shown on the display.
func (app *App) Display() Snapshot {
	app.display.RLock()
	defer app.display.RUnlock()
	return app.display.data
}

// sendMQTT send message struct to the mqtt broker.
func (app *App) sendMQTT(topic string, message interface{}) {
	debug.TraceLog.Printf("prepare mqtt message %v %v", topic, message)

	b, err := json.Marshal(message)
	if err != nil {
		debug.ErrorLog.Printf("sendMQTT marshal: %v", err)
		return
	}

	app.mqtt.Publish(mqtt.Message{
		Qos:      0,
		Retained: true,
		Topic:    topic,
		Payload:  b,
	})
}
