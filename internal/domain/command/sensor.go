package command

// SensorCommand is the part shared by every sensor command.
type SensorCommand struct {
	Target  Target      `json:"target"`
	Devices []BLEDevice `json:"devices" validate:"required,min=1,dive"`
}

// GatewayTarget implements Command for every embedding sensor command.
func (c SensorCommand) GatewayTarget() Target { return c.Target }

// SetSensorState switches sensors between active and inactive.
// Sensors only collect data and run inference while active.
type SetSensorState struct {
	SensorCommand
	State string `json:"state" validate:"required,oneof=active inactive"`
}

// GetSensorState requests the current state; answers arrive asynchronously.
type GetSensorState struct {
	SensorCommand
}

// SetInferenceLayer moves inference to the sensor, gateway or cloud.
type SetInferenceLayer struct {
	SensorCommand
	InferenceLayer string `json:"inference_layer" validate:"required,oneof=sensor gateway cloud"`
}

// GetInferenceLayer requests the current inference layer.
type GetInferenceLayer struct {
	SensorCommand
}

// SetSensorConfig replaces the sensor configuration.
type SetSensorConfig struct {
	SensorCommand
	Config map[string]any `json:"config" validate:"required,min=1"`
}

// GetSensorConfig requests the current sensor configuration.
type GetSensorConfig struct {
	SensorCommand
}

// SetSensorModel uploads a model to the sensors.
type SetSensorModel struct {
	SensorCommand
	Model Model `json:"model"`
}

// InferenceLatencyBenchmark is experimental. The sensor answers with an
// export carrying the receive time and the latency against SendTimestamp.
type InferenceLatencyBenchmark struct {
	SensorCommand
	ReadingUUID   string  `json:"reading_uuid" validate:"required"`
	SendTimestamp float64 `json:"send_timestamp" validate:"gt=0"`
}
