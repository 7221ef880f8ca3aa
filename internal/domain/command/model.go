// Package command defines the edge gateway and sensor command payloads
// relayed by the command service, and the sensor responses it caches.
package command

// Target locates the Gateway API that should execute a command.
type Target struct {
	URL string `json:"url" validate:"required,gateway_url"`
}

// BLEDevice is an edge sensor reachable over Bluetooth Low Energy.
type BLEDevice struct {
	Name    string `json:"name"`
	Address string `json:"address" validate:"required"`
}

// Model is a machine learning model pushed to a gateway or sensor.
// Data is base64 text and is relayed untouched.
type Model struct {
	Name     string `json:"name" validate:"required"`
	Data     string `json:"data" validate:"required"`
	Checksum string `json:"checksum,omitempty"`
}

// Sensor states.
const (
	StateActive   = "active"
	StateInactive = "inactive"
)

// Inference layers a sensor can delegate inference to.
const (
	LayerSensor  = "sensor"
	LayerGateway = "gateway"
	LayerCloud   = "cloud"
)
