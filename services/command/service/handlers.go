package commandservice

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edgeiot/command_service/internal/domain/command"
	"github.com/edgeiot/command_service/internal/gateway"
	"github.com/edgeiot/command_service/internal/httputil"
	"github.com/edgeiot/command_service/internal/metrics"
)

const cacheUnavailableDetail = "cache unavailable"

// MessageResponse is the acknowledgement returned by relay and store routes.
type MessageResponse struct {
	Message string `json:"message"`
}

// CommandUUIDsResponse acknowledges a GET sensor command. CommandUUIDs is
// copied from the Gateway API reply and is null when the gateway sent none.
type CommandUUIDsResponse struct {
	Message      string          `json:"message"`
	CommandUUIDs json.RawMessage `json:"command_uuids"`
}

// =============================================================================
// Command Relay
// =============================================================================

// relay decodes and validates a command of type T, forwards it to the
// gateway named by its target and answers 202 on the expected gateway status.
func relay[T command.Command](s *Service, route commandRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd T
		if !httputil.DecodeJSON(w, r, &cmd) {
			return
		}
		if !s.validate(w, r, &cmd) {
			return
		}

		ctx := r.Context()
		target := cmd.GatewayTarget().URL
		log := s.Logger().WithContext(ctx).WithFields(logrus.Fields{
			"endpoint": route.path,
			"target":   target,
		})

		start := time.Now()
		resp, err := s.gateway.PostJSON(ctx, target, route.path, cmd)
		elapsed := time.Since(start)
		if err != nil {
			s.recordRelay(route.path, metrics.OutcomeUnreachable, elapsed)
			log.WithError(err).Warn("gateway unreachable")
			httputil.WriteError(w, http.StatusBadGateway, unreachableDetail(err))
			return
		}
		if resp.StatusCode != route.expect {
			s.recordRelay(route.path, metrics.OutcomeRejected, elapsed)
			log.WithField("gateway_status", resp.StatusCode).Warn("gateway rejected command")
			httputil.WriteError(w, resp.StatusCode, resp.JSON())
			return
		}
		s.recordRelay(route.path, metrics.OutcomeAccepted, elapsed)
		log.WithField("duration_ms", elapsed.Milliseconds()).Debug("command relayed")

		switch route.reply {
		case replyDevices:
			var devices []command.BLEDevice
			if err := json.Unmarshal(resp.Body, &devices); err != nil {
				log.WithError(err).Warn("gateway returned an invalid device list")
				httputil.WriteError(w, http.StatusBadGateway, "invalid device list from gateway")
				return
			}
			if devices == nil {
				devices = []command.BLEDevice{}
			}
			httputil.WriteJSON(w, http.StatusAccepted, devices)
		case replyCommandUUIDs:
			httputil.WriteJSON(w, http.StatusAccepted, CommandUUIDsResponse{
				Message:      route.message,
				CommandUUIDs: resp.CommandUUIDs(),
			})
		default:
			httputil.WriteJSON(w, http.StatusAccepted, MessageResponse{Message: route.message})
		}
	}
}

func (s *Service) recordRelay(endpoint, outcome string, elapsed time.Duration) {
	metrics.RecordGatewayCommand(endpoint, outcome, elapsed)
	s.stats.Record(endpoint, elapsed, outcome == metrics.OutcomeAccepted)
}

func unreachableDetail(err error) string {
	if errors.Is(err, gateway.ErrGatewayUnreachable) {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", gateway.ErrGatewayUnreachable, err)
}

// =============================================================================
// Sensor Command Responses
// =============================================================================

// storeResponse caches a sensor response under its command UUID and answers
// 201. A second store for the same UUID overwrites the first.
func storeResponse[T command.Response](s *Service, route responseRoute) http.HandlerFunc {
	message := fmt.Sprintf("GET %s Command Response Stored in Cache Database", route.thing)
	op := "store " + route.suffix

	return func(w http.ResponseWriter, r *http.Request) {
		var resp T
		if !httputil.DecodeJSON(w, r, &resp) {
			return
		}
		if !s.validate(w, r, &resp) {
			return
		}

		raw, err := json.Marshal(resp)
		if err != nil {
			httputil.InternalError(w, "failed to encode response")
			return
		}

		ctx := r.Context()
		start := time.Now()
		if err := s.cache.Put(ctx, resp.CommandUUID(), raw); err != nil {
			metrics.RecordCacheOp("put", metrics.CacheError)
			s.stats.Record(op, time.Since(start), false)
			s.Logger().WithContext(ctx).WithError(err).Error("store sensor response")
			httputil.ServiceUnavailable(w, cacheUnavailableDetail)
			return
		}
		metrics.RecordCacheOp("put", metrics.CacheOK)
		s.stats.Record(op, time.Since(start), true)

		httputil.WriteJSON(w, http.StatusCreated, MessageResponse{Message: message})
	}
}

// retrieveResponses takes the cached responses for a list of command UUIDs.
// Each response is returned at most once; missing UUIDs are skipped.
func retrieveResponses[T command.Response](s *Service, route responseRoute) http.HandlerFunc {
	op := "retrieve " + route.suffix

	return func(w http.ResponseWriter, r *http.Request) {
		var uuids []string
		if !httputil.DecodeJSON(w, r, &uuids) {
			return
		}

		ctx := r.Context()
		log := s.Logger().WithContext(ctx)
		start := time.Now()

		out := make([]T, 0, len(uuids))
		for _, id := range uuids {
			raw, found, err := s.cache.Take(ctx, id)
			if err != nil {
				metrics.RecordCacheOp("take", metrics.CacheError)
				s.stats.Record(op, time.Since(start), false)
				log.WithError(err).WithField("command_uuid", id).Error("retrieve sensor response")
				httputil.ServiceUnavailable(w, cacheUnavailableDetail)
				return
			}
			if !found {
				metrics.RecordCacheOp("take", metrics.CacheMiss)
				continue
			}
			metrics.RecordCacheOp("take", metrics.CacheHit)

			var resp T
			if err := json.Unmarshal(raw, &resp); err != nil {
				log.WithError(err).WithField("command_uuid", id).Warn("dropping undecodable cached response")
				continue
			}
			out = append(out, resp)
		}
		s.stats.Record(op, time.Since(start), true)

		httputil.WriteJSON(w, http.StatusOK, out)
	}
}

// =============================================================================
// Validation
// =============================================================================

// validate answers 422 with the field errors when v is rejected.
func (s *Service) validate(w http.ResponseWriter, r *http.Request, v any) bool {
	err := command.Validate(v)
	if err == nil {
		return true
	}

	var verr *command.ValidationError
	if errors.As(err, &verr) {
		httputil.WriteError(w, http.StatusUnprocessableEntity, verr.Fields)
		return false
	}

	s.Logger().WithContext(r.Context()).WithError(err).Error("validator failure")
	httputil.InternalError(w, "validation failed")
	return false
}
