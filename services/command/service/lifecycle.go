package commandservice

import "context"

// =============================================================================
// Lifecycle
// =============================================================================

// Start starts the command service.
func (s *Service) Start(ctx context.Context) error {
	if err := s.BaseService.Start(ctx); err != nil {
		return err
	}
	s.Logger().WithField("status", s.HealthStatus()).Info("command service started")
	return nil
}

// Stop stops the command service. The cache is owned by the caller.
func (s *Service) Stop() error {
	return s.BaseService.Stop()
}
