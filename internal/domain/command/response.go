package command

// ResponseMetadata identifies the command a sensor response answers.
type ResponseMetadata struct {
	CommandUUID string  `json:"command_uuid" validate:"required"`
	SensorName  string  `json:"sensor_name,omitempty"`
	GatewayName string  `json:"gateway_name,omitempty"`
	Timestamp   float64 `json:"timestamp,omitempty"`
}

// Response is implemented by every cacheable sensor response.
type Response interface {
	CommandUUID() string
}

// SensorStateResponse answers GetSensorState.
type SensorStateResponse struct {
	Metadata ResponseMetadata `json:"metadata"`
	State    string           `json:"state" validate:"required,oneof=active inactive"`
}

// CommandUUID implements Response.
func (r SensorStateResponse) CommandUUID() string { return r.Metadata.CommandUUID }

// InferenceLayerResponse answers GetInferenceLayer.
type InferenceLayerResponse struct {
	Metadata       ResponseMetadata `json:"metadata"`
	InferenceLayer string           `json:"inference_layer" validate:"required,oneof=sensor gateway cloud"`
}

// CommandUUID implements Response.
func (r InferenceLayerResponse) CommandUUID() string { return r.Metadata.CommandUUID }

// SensorConfigResponse answers GetSensorConfig.
type SensorConfigResponse struct {
	Metadata ResponseMetadata `json:"metadata"`
	Config   map[string]any   `json:"config" validate:"required"`
}

// CommandUUID implements Response.
func (r SensorConfigResponse) CommandUUID() string { return r.Metadata.CommandUUID }
