// Copyright © 2023 Ory Corp
// SPDX-License-Identifier: Apache-2.0

// Package eventservice is the event emission sink the flow controller
// writes to. It is deliberately a thin capability
// — audit storage, alerting, or metrics derived from these events are a
// concern of whatever EventService implementation a deployment wires in.
package eventservice

import "github.com/ory/x/logrusx"

// Name enumerates the event surface the flow controller can report.
type Name string

const (
	PreLoginSuccess      Name = "PreLoginSuccess"
	PreLoginFailure      Name = "PreLoginFailure"
	LocalLoginSuccess    Name = "LocalLoginSuccess"
	LocalLoginFailure    Name = "LocalLoginFailure"
	ExternalLoginSuccess Name = "ExternalLoginSuccess"
	ExternalLoginFailure Name = "ExternalLoginFailure"
	ExternalLoginError   Name = "ExternalLoginError"
	PartialLoginComplete Name = "PartialLoginComplete"
	Logout               Name = "Logout"
	EndpointFailure      Name = "EndpointFailure"
)

// Fields carries the structured context attached to an event, generalizing
// the flow-level ToLoggerField() convention (a struct's
// `map[string]interface{}{"id": ..., "return_to": ..., ...}`) to the event
// sink rather than just the logger.
type Fields map[string]interface{}

// Service is the capability the flow controller emits events through.
type Service interface {
	Emit(name Name, fields Fields)
}

// LogrusService is the default Service implementation: it threads every
// event through the ambient structured logger rather than inventing a
// second logging path, matching a preference for
// WithField-chained logrus calls over a bespoke telemetry client.
type LogrusService struct {
	l *logrusx.Logger
}

func NewLogrusService(l *logrusx.Logger) *LogrusService {
	return &LogrusService{l: l}
}

func (s *LogrusService) Emit(name Name, fields Fields) {
	entry := s.l.WithField("event", string(name))
	for k, v := range fields {
		entry = entry.WithField(k, v)
	}
	switch name {
	case LocalLoginFailure, ExternalLoginFailure, ExternalLoginError, PreLoginFailure, EndpointFailure:
		entry.Warn("authentication event")
	default:
		entry.Info("authentication event")
	}
}
