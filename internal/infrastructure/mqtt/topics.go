package mqtt

import "fmt"

// Topic prefixes for the gadget registry.
//
//	gadgets/events/{gadget_id}   lifecycle events, not retained
//	gadgets/system/status        registry online/offline, retained
const (
	// TopicPrefix is the root of every registry topic.
	TopicPrefix = "gadgets"

	// TopicPrefixEvents is the base for per-gadget lifecycle events.
	TopicPrefixEvents = TopicPrefix + "/events"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for registry MQTT topics.
//
//	topic := mqtt.Topics{}.GadgetEvent("6f1c...")
//	// Returns: "gadgets/events/6f1c..."
type Topics struct{}

// GadgetEvent returns the topic for lifecycle events of one gadget.
func (Topics) GadgetEvent(gadgetID string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixEvents, gadgetID)
}

// AllGadgetEvents returns a wildcard matching events for every gadget.
func (Topics) AllGadgetEvents() string {
	return TopicPrefixEvents + "/+"
}

// SystemStatus returns the topic carrying the registry's online state.
// The broker publishes the last will here on unexpected disconnect.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
