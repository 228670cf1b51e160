package events

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/taskhive/go-tasks/models"
)

var client mqtt.Client

func connect(clientId string, uri *url.URL) (mqtt.Client, error) {
	opts := createClientOptions(clientId, uri)
	c := mqtt.NewClient(opts)
	token := c.Connect()
	for !token.WaitTimeout(3 * time.Second) {
	}
	if err := token.Error(); err != nil {
		return nil, err
	}
	return c, nil
}

func createClientOptions(clientId string, uri *url.URL) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", uri.Host))
	opts.SetClientID(clientId)
	return opts
}

// InitMQTTPublisher kết nối tới MQTT broker nếu MQTT_URL được thiết lập.
// Kết nối thất bại chỉ tắt publisher, không làm hỏng request nào.
func InitMQTTPublisher() {
	mqttURL := os.Getenv("MQTT_URL")
	if mqttURL == "" {
		return
	}

	uri, err := url.Parse(mqttURL)
	if err != nil {
		log.Printf("Invalid MQTT_URL: %v", err)
		return
	}

	c, err := connect("pub", uri)
	if err != nil {
		log.Printf("Cannot connect to MQTT broker: %v", err)
		return
	}

	client = c
	log.Println("Connected to MQTT broker")
}

// publishMQTT gửi sự kiện dưới dạng JSON tới topic "tasks/<loại sự kiện>"
func publishMQTT(event models.Event) {
	if client == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error encoding event: %v", err)
		return
	}

	client.Publish("tasks/"+event.Type, 0, false, payload)
}
