//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gadget-registry/internal/gadget"
)

// Integration tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func TestIntegration_ConnectAndClose(t *testing.T) {
	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestIntegration_EventRoundtrip(t *testing.T) {
	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	opts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL(testConfig())).
		SetClientID("gadgetd-test-subscriber")
	sub := pahomqtt.NewClient(opts)
	if token := sub.Connect(); !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		t.Fatalf("subscriber connect failed: %v", token.Error())
	}
	defer sub.Disconnect(250)

	received := make(chan []byte, 1)
	token := sub.Subscribe(Topics{}.AllGadgetEvents(), 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		received <- msg.Payload()
	})
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		t.Fatalf("subscribe failed: %v", token.Error())
	}

	events := NewEventPublisher(client)
	err = events.Publish(context.Background(), gadget.Event{
		Type:      gadget.EventDestroyed,
		GadgetID:  "integration-gadget",
		OldStatus: gadget.StatusDeployed,
		NewStatus: gadget.StatusDestroyed,
		At:        time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case payload := <-received:
		var got gadget.Event
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if got.GadgetID != "integration-gadget" || got.NewStatus != gadget.StatusDestroyed {
			t.Errorf("received %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
