package commandservice

import (
	"net/http"

	"github.com/edgeiot/command_service/internal/domain/command"
)

// =============================================================================
// Route Tables
// =============================================================================

// commandRoute describes one relay endpoint. The Gateway API endpoint path
// equals the route path.
type commandRoute struct {
	path    string
	expect  int
	message string
	reply   replyKind
}

type replyKind int

const (
	// replyMessage answers {"message": ...}.
	replyMessage replyKind = iota
	// replyCommandUUIDs adds the gateway's command_uuids to the message.
	replyCommandUUIDs
	// replyDevices answers the gateway's BLE device list.
	replyDevices
)

var (
	getAvailableSensorsRoute = commandRoute{
		path:   "/gateway/command/get/available-sensors",
		expect: http.StatusOK,
		reply:  replyDevices,
	}
	getProvisionedSensorsRoute = commandRoute{
		path:   "/gateway/command/get/provisioned-sensors",
		expect: http.StatusOK,
		reply:  replyDevices,
	}
	addProvisionedSensorsRoute = commandRoute{
		path:    "/gateway/command/add/provisioned-sensors",
		expect:  http.StatusOK,
		message: "ADD Provisioned Sensors Command Sent to Gateway API",
	}
	addRegisteredSensorsRoute = commandRoute{
		path:    "/gateway/command/add/registered-sensors",
		expect:  http.StatusOK,
		message: "ADD Registered Sensors Command Sent to Gateway API",
	}
	setGatewayModelRoute = commandRoute{
		path:    "/gateway/command/set/gateway-model",
		expect:  http.StatusAccepted,
		message: "SET Gateway Model Command Sent to Gateway API",
	}

	setSensorStateRoute = commandRoute{
		path:    "/sensor/command/set/sensor-state",
		expect:  http.StatusAccepted,
		message: "SET Sensor State Command Sent to Gateway API",
	}
	getSensorStateRoute = commandRoute{
		path:    "/sensor/command/get/sensor-state",
		expect:  http.StatusAccepted,
		message: "GET Sensor State Command Sent to Gateway API",
		reply:   replyCommandUUIDs,
	}
	setInferenceLayerRoute = commandRoute{
		path:    "/sensor/command/set/inference-layer",
		expect:  http.StatusAccepted,
		message: "SET Inference Layer Command Sent to Gateway API",
	}
	getInferenceLayerRoute = commandRoute{
		path:    "/sensor/command/get/inference-layer",
		expect:  http.StatusAccepted,
		message: "GET Inference Layer Command Sent to Gateway API",
		reply:   replyCommandUUIDs,
	}
	setSensorConfigRoute = commandRoute{
		path:    "/sensor/command/set/sensor-config",
		expect:  http.StatusAccepted,
		message: "SET Sensor Configuration Command Sent to Gateway API",
	}
	getSensorConfigRoute = commandRoute{
		path:    "/sensor/command/get/sensor-config",
		expect:  http.StatusAccepted,
		message: "GET Sensor Configuration Command Sent to Gateway API",
		reply:   replyCommandUUIDs,
	}
	setSensorModelRoute = commandRoute{
		path:    "/sensor/command/set/sensor-model",
		expect:  http.StatusAccepted,
		message: "SET Sensor Model Command Sent to Gateway API",
	}
	setInfLatencyBenchRoute = commandRoute{
		path:    "/sensor/command/set/inf-latency-bench",
		expect:  http.StatusAccepted,
		message: "SET Inference Latency Benchmark Command Sent to Gateway API",
	}
)

// responseRoute describes one store/retrieve pair for a sensor response kind.
type responseRoute struct {
	suffix string
	thing  string
}

var (
	sensorStateResponses    = responseRoute{suffix: "sensor-state", thing: "Sensor State"}
	inferenceLayerResponses = responseRoute{suffix: "inference-layer", thing: "Inference Layer"}
	sensorConfigResponses   = responseRoute{suffix: "sensor-config", thing: "Sensor Configuration"}
)

func (r responseRoute) storePath() string { return "/store/sensor/response/get/" + r.suffix }
func (r responseRoute) retrievePath() string { return "/retrieve/sensor/response/get/" + r.suffix }

// =============================================================================
// Route Registration
// =============================================================================

func (s *Service) registerRoutes() {
	router := s.Router()

	// Edge Gateway Commands
	router.HandleFunc(getAvailableSensorsRoute.path, relay[command.GetAvailableSensors](s, getAvailableSensorsRoute)).Methods(http.MethodPost)
	router.HandleFunc(getProvisionedSensorsRoute.path, relay[command.GetProvisionedSensors](s, getProvisionedSensorsRoute)).Methods(http.MethodPost)
	router.HandleFunc(addProvisionedSensorsRoute.path, relay[command.AddProvisionedSensors](s, addProvisionedSensorsRoute)).Methods(http.MethodPost)
	router.HandleFunc(addRegisteredSensorsRoute.path, relay[command.AddRegisteredSensors](s, addRegisteredSensorsRoute)).Methods(http.MethodPost)
	router.HandleFunc(setGatewayModelRoute.path, relay[command.SetGatewayModel](s, setGatewayModelRoute)).Methods(http.MethodPost)

	// Edge Sensor Commands
	router.HandleFunc(setSensorStateRoute.path, relay[command.SetSensorState](s, setSensorStateRoute)).Methods(http.MethodPost)
	router.HandleFunc(getSensorStateRoute.path, relay[command.GetSensorState](s, getSensorStateRoute)).Methods(http.MethodPost)
	router.HandleFunc(setInferenceLayerRoute.path, relay[command.SetInferenceLayer](s, setInferenceLayerRoute)).Methods(http.MethodPost)
	router.HandleFunc(getInferenceLayerRoute.path, relay[command.GetInferenceLayer](s, getInferenceLayerRoute)).Methods(http.MethodPost)
	router.HandleFunc(setSensorConfigRoute.path, relay[command.SetSensorConfig](s, setSensorConfigRoute)).Methods(http.MethodPost)
	router.HandleFunc(getSensorConfigRoute.path, relay[command.GetSensorConfig](s, getSensorConfigRoute)).Methods(http.MethodPost)
	router.HandleFunc(setSensorModelRoute.path, relay[command.SetSensorModel](s, setSensorModelRoute)).Methods(http.MethodPost)
	router.HandleFunc(setInfLatencyBenchRoute.path, relay[command.InferenceLatencyBenchmark](s, setInfLatencyBenchRoute)).Methods(http.MethodPost)

	// Sensor Command Responses
	router.HandleFunc(sensorStateResponses.storePath(), storeResponse[command.SensorStateResponse](s, sensorStateResponses)).Methods(http.MethodPost)
	router.HandleFunc(sensorStateResponses.retrievePath(), retrieveResponses[command.SensorStateResponse](s, sensorStateResponses)).Methods(http.MethodPost)
	router.HandleFunc(inferenceLayerResponses.storePath(), storeResponse[command.InferenceLayerResponse](s, inferenceLayerResponses)).Methods(http.MethodPost)
	router.HandleFunc(inferenceLayerResponses.retrievePath(), retrieveResponses[command.InferenceLayerResponse](s, inferenceLayerResponses)).Methods(http.MethodPost)
	router.HandleFunc(sensorConfigResponses.storePath(), storeResponse[command.SensorConfigResponse](s, sensorConfigResponses)).Methods(http.MethodPost)
	router.HandleFunc(sensorConfigResponses.retrievePath(), retrieveResponses[command.SensorConfigResponse](s, sensorConfigResponses)).Methods(http.MethodPost)
}
