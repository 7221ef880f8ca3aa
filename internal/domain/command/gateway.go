package command

// GetAvailableSensors asks the gateway for a BLE scan of provisionable sensors.
type GetAvailableSensors struct {
	Target Target `json:"target"`
}

// GetProvisionedSensors asks the gateway for the sensors it has provisioned.
type GetProvisionedSensors struct {
	Target Target `json:"target"`
}

// AddProvisionedSensors provisions sensors found during a scan.
type AddProvisionedSensors struct {
	Target  Target      `json:"target"`
	Devices []BLEDevice `json:"devices" validate:"required,min=1,dive"`
}

// AddRegisteredSensors registers previously provisioned sensors.
type AddRegisteredSensors struct {
	Target  Target      `json:"target"`
	Devices []BLEDevice `json:"devices" validate:"required,min=1,dive"`
}

// SetGatewayModel uploads a model to the gateway filesystem.
type SetGatewayModel struct {
	Target Target `json:"target"`
	Model  Model  `json:"model"`
}

// Command is implemented by every command relayed to a Gateway API.
type Command interface {
	GatewayTarget() Target
}

func (c GetAvailableSensors) GatewayTarget() Target { return c.Target }
func (c GetProvisionedSensors) GatewayTarget() Target { return c.Target }
func (c AddProvisionedSensors) GatewayTarget() Target { return c.Target }
func (c AddRegisteredSensors) GatewayTarget() Target { return c.Target }
func (c SetGatewayModel) GatewayTarget() Target { return c.Target }
