// Package session constructs the access point engine for the running platform.
package session

import (
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/api/platforminfo"
	"github.com/darkhz/hotspotctl/engine"
)

// Session holds the single engine instance of the process, and the
// platform resources it depends on.
type Session struct {
	engine   *engine.Engine
	platform platforminfo.PlatformInfo

	openNetwork func(open bool)
	stop        func() error
}

// Engine returns the engine of the session.
func (s *Session) Engine() *engine.Engine {
	return s.engine
}

// Platform returns information about the platform.
func (s *Session) Platform() platforminfo.PlatformInfo {
	return s.platform
}

// BackendName returns the name of the selected backend.
func (s *Session) BackendName() string {
	if s.engine.Capabilities().RequiresCreatorToDisable() {
		return "reservation"
	}

	return "legacy"
}

// UseConfiguration sets the configuration that will be shared by the next enable,
// so that permissions are checked for the matching network type.
func (s *Session) UseConfiguration(cfg hotspot.AccessPointConfig) error {
	if err := s.engine.UseConfiguration(cfg); err != nil {
		return err
	}

	if s.openNetwork != nil {
		s.openNetwork(cfg.IsOpen())
	}

	return nil
}

// Stop closes the engine and releases the platform resources.
func (s *Session) Stop() error {
	s.engine.Close()

	if s.stop != nil {
		return s.stop()
	}

	return nil
}
