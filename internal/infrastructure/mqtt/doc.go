// Package mqtt publishes gadget lifecycle events to an MQTT broker.
//
// Every committed transition is sent as JSON on gadgets/events/{gadget_id}.
// The client also keeps a retained online/offline status on
// gadgets/system/status, with a Last Will so subscribers notice a crash.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	events := mqtt.NewEventPublisher(client)
//	svc := gadget.NewService(gadget.ServiceDeps{Publisher: events, ...})
//
// The broker is optional. When MQTT is disabled in config nothing in the
// registry depends on it.
package mqtt
