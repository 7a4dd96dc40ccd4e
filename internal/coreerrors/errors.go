// Package coreerrors defines the wire-stable error taxonomy returned by the
// core across every façade. Each error carries its own status code so the
// façade layer never has to re-derive one from an error string.
package coreerrors

import (
	"errors"
	"fmt"
)

// Sentinel base errors. Every concrete error type's Unwrap returns the
// matching sentinel, so callers can branch with errors.Is(err,
// coreerrors.ErrMissionNotFound) instead of a type switch.
var (
	ErrInvalidParameters            = errors.New("invalid parameters")
	ErrMissionNotFound              = errors.New("mission not found")
	ErrVictimNotFound               = errors.New("victim not found")
	ErrAgentNotFound                = errors.New("agent not found")
	ErrMissionConflict              = errors.New("mission conflict")
	ErrInvalidMissionState          = errors.New("invalid mission state")
	ErrInvalidExplanationRequest    = errors.New("invalid explanation request")
	ErrExplanationNotImplemented    = errors.New("explanation not implemented")
	ErrPlanningFailure              = errors.New("planning failure")
	ErrMetricsFailure               = errors.New("metrics failure")
	ErrServiceInitializationFailure = errors.New("service initialization failure")
	ErrNoPassableCoordinates        = errors.New("no passable coordinates")
)

// StatusCode is the HTTP-equivalent status a core error maps to. The core
// itself never imports net/http; the façade translates StatusCode into
// whatever transport it speaks.
type StatusCode int

const (
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusConflict            StatusCode = 409
	StatusNotImplemented      StatusCode = 501
	StatusInternalServerError StatusCode = 500
)

// CoreError is implemented by every error this package defines.
type CoreError interface {
	error
	StatusCode() StatusCode
}

// InvalidParametersError reports a request with out-of-range or forbidden
// fields.
type InvalidParametersError struct {
	Reason string
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("invalid parameters: %s", e.Reason)
}

func (e *InvalidParametersError) StatusCode() StatusCode { return StatusBadRequest }
func (e *InvalidParametersError) Unwrap() error          { return ErrInvalidParameters }

// entityNotFoundError is the shared shape behind MissionNotFound,
// VictimNotFound, and AgentNotFound.
type entityNotFoundError struct {
	entityKind string
	EntityID   string
}

func (e *entityNotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.entityKind, e.EntityID)
}

func (e *entityNotFoundError) StatusCode() StatusCode { return StatusNotFound }

// MissionNotFoundError reports a mission lookup by id that found nothing.
type MissionNotFoundError struct{ entityNotFoundError }

// NewMissionNotFoundError builds a MissionNotFoundError for the given id.
func NewMissionNotFoundError(missionID string) *MissionNotFoundError {
	return &MissionNotFoundError{entityNotFoundError{entityKind: "mission", EntityID: missionID}}
}

func (e *MissionNotFoundError) Unwrap() error { return ErrMissionNotFound }

// VictimNotFoundError reports a victim lookup by id that found nothing.
type VictimNotFoundError struct{ entityNotFoundError }

// NewVictimNotFoundError builds a VictimNotFoundError for the given id.
func NewVictimNotFoundError(victimID string) *VictimNotFoundError {
	return &VictimNotFoundError{entityNotFoundError{entityKind: "victim", EntityID: victimID}}
}

func (e *VictimNotFoundError) Unwrap() error { return ErrVictimNotFound }

// AgentNotFoundError reports an agent lookup by id that found nothing.
type AgentNotFoundError struct{ entityNotFoundError }

// NewAgentNotFoundError builds an AgentNotFoundError for the given id.
func NewAgentNotFoundError(agentID string) *AgentNotFoundError {
	return &AgentNotFoundError{entityNotFoundError{entityKind: "agent", EntityID: agentID}}
}

func (e *AgentNotFoundError) Unwrap() error { return ErrAgentNotFound }

// MissionConflictError reports initiate_simulation called with an id that
// is already registered.
type MissionConflictError struct {
	MissionID string
}

func (e *MissionConflictError) Error() string {
	return fmt.Sprintf("mission already registered: %s", e.MissionID)
}

func (e *MissionConflictError) StatusCode() StatusCode { return StatusConflict }
func (e *MissionConflictError) Unwrap() error          { return ErrMissionConflict }

// InvalidMissionStateError reports a planning or mutation attempt against a
// mission that has already reached a terminal state.
type InvalidMissionStateError struct {
	MissionID string
	State     string
}

func (e *InvalidMissionStateError) Error() string {
	return fmt.Sprintf("mission %s is in terminal state %q", e.MissionID, e.State)
}

func (e *InvalidMissionStateError) StatusCode() StatusCode { return StatusBadRequest }
func (e *InvalidMissionStateError) Unwrap() error          { return ErrInvalidMissionState }

// InvalidExplanationRequestError reports a GetExplanation call missing a
// required decision_id or naming an unsupported explanation type.
type InvalidExplanationRequestError struct {
	Reason string
}

func (e *InvalidExplanationRequestError) Error() string {
	return fmt.Sprintf("invalid explanation request: %s", e.Reason)
}

func (e *InvalidExplanationRequestError) StatusCode() StatusCode { return StatusBadRequest }
func (e *InvalidExplanationRequestError) Unwrap() error          { return ErrInvalidExplanationRequest }

// ExplanationNotImplementedError reports a recognized but not-yet-wired
// explanation type.
type ExplanationNotImplementedError struct {
	Kind string
}

func (e *ExplanationNotImplementedError) Error() string {
	return fmt.Sprintf("explanation type not implemented: %s", e.Kind)
}

func (e *ExplanationNotImplementedError) StatusCode() StatusCode { return StatusNotImplemented }
func (e *ExplanationNotImplementedError) Unwrap() error          { return ErrExplanationNotImplemented }

// PlanningFailureError reports an unexpected internal condition during
// plan generation — never raised for "no path found", which is a normal,
// non-error outcome.
type PlanningFailureError struct {
	Reason string
}

func (e *PlanningFailureError) Error() string {
	return fmt.Sprintf("planning failure: %s", e.Reason)
}

func (e *PlanningFailureError) StatusCode() StatusCode { return StatusInternalServerError }
func (e *PlanningFailureError) Unwrap() error          { return ErrPlanningFailure }

// MetricsFailureError reports an unexpected internal condition computing
// mission metrics.
type MetricsFailureError struct {
	Reason string
}

func (e *MetricsFailureError) Error() string {
	return fmt.Sprintf("metrics failure: %s", e.Reason)
}

func (e *MetricsFailureError) StatusCode() StatusCode { return StatusInternalServerError }
func (e *MetricsFailureError) Unwrap() error          { return ErrMetricsFailure }

// ServiceInitializationFailureError reports a failure bringing up a
// mission's environment or subsystems.
type ServiceInitializationFailureError struct {
	Reason string
}

func (e *ServiceInitializationFailureError) Error() string {
	return fmt.Sprintf("service initialization failure: %s", e.Reason)
}

func (e *ServiceInitializationFailureError) StatusCode() StatusCode {
	return StatusInternalServerError
}

func (e *ServiceInitializationFailureError) Unwrap() error { return ErrServiceInitializationFailure }

// NoPassableCoordinatesError reports that random_passable_coordinate found
// no passable cell on the grid — every node is blocked.
type NoPassableCoordinatesError struct{}

func (e *NoPassableCoordinatesError) Error() string {
	return "no passable coordinates available on the grid"
}

func (e *NoPassableCoordinatesError) StatusCode() StatusCode { return StatusInternalServerError }
func (e *NoPassableCoordinatesError) Unwrap() error          { return ErrNoPassableCoordinates }
