// Package kernelerr defines the typed error taxonomy the simulation core
// raises. Every fallible operation in the kernel returns one of these
// concrete types (never a bare errors.New string) so that callers at the
// outermost driver can distinguish a configuration mistake from a run-time
// invariant violation without string matching.
package kernelerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// BadProperty reports a configuration value out of range, or a
// constructor/setter contract violation. It is always raised before any
// mutation takes place, so kernel state stays valid after a BadProperty.
type BadProperty struct {
	Component string // model, mask, layer, connection spec, ...
	Field     string
	Reason    string
}

func (e *BadProperty) Error() string {
	return fmt.Sprintf("bad property on %s.%s: %s", e.Component, e.Field, e.Reason)
}

// NewBadProperty builds a BadProperty error.
func NewBadProperty(component, field, reason string) *BadProperty {
	return &BadProperty{Component: component, Field: field, Reason: reason}
}

// IllegalConnection reports an attempted connection the topology or model
// refuses outright (device as spatial target, unsupported secondary event
// type, receptor range violation that predates the connection attempt).
type IllegalConnection struct {
	Source string
	Target string
	Reason string
}

func (e *IllegalConnection) Error() string {
	return fmt.Sprintf("illegal connection %s -> %s: %s", e.Source, e.Target, e.Reason)
}

// NewIllegalConnection builds an IllegalConnection error.
func NewIllegalConnection(source, target, reason string) *IllegalConnection {
	return &IllegalConnection{Source: source, Target: target, Reason: reason}
}

// KernelException reports a run-time invariant broken after the kernel
// began mutating state: an empty sampling pool, a redraw limit exceeded, an
// inconsistent ntree position, a fixed-indegree target that cannot be
// filled. Callers must treat kernel state as invalid after a
// KernelException other than BadProperty.
type KernelException struct {
	Where  string
	Reason string
}

func (e *KernelException) Error() string {
	return fmt.Sprintf("kernel exception in %s: %s", e.Where, e.Reason)
}

// NewKernelException builds a KernelException error.
func NewKernelException(where, reason string) *KernelException {
	return &KernelException{Where: where, Reason: reason}
}

// SolverFailure reports that an adaptive ODE integrator returned a
// non-success status while advancing a neuron's nonlinear kinetics.
type SolverFailure struct {
	Node   string
	Status string
}

func (e *SolverFailure) Error() string {
	return fmt.Sprintf("solver failure on node %s: status %s", e.Node, e.Status)
}

// NewSolverFailure builds a SolverFailure error.
func NewSolverFailure(node, status string) *SolverFailure {
	return &SolverFailure{Node: node, Status: status}
}

// NumericalInstability reports state that escaped physical bounds, e.g. a
// membrane potential outside +/-10^3 mV.
type NumericalInstability struct {
	Node  string
	Field string
	Value float64
}

func (e *NumericalInstability) Error() string {
	return fmt.Sprintf("numerical instability on node %s: %s = %g", e.Node, e.Field, e.Value)
}

// NewNumericalInstability builds a NumericalInstability error.
func NewNumericalInstability(node, field string, value float64) *NumericalInstability {
	return &NumericalInstability{Node: node, Field: field, Value: value}
}

// IncompatibleReceptorType reports a connection targeting a receptor index
// outside the target model's recognized range.
type IncompatibleReceptorType struct {
	Target   string
	Receptor int
	Max      int
}

func (e *IncompatibleReceptorType) Error() string {
	return fmt.Sprintf("incompatible receptor type on %s: receptor %d exceeds recognized range %d", e.Target, e.Receptor, e.Max)
}

// NewIncompatibleReceptorType builds an IncompatibleReceptorType error.
func NewIncompatibleReceptorType(target string, receptor, max int) *IncompatibleReceptorType {
	return &IncompatibleReceptorType{Target: target, Receptor: receptor, Max: max}
}

// WorkerPanic wraps an error recovered from a parallel worker (neuron
// update region, connection build region) so it can be re-thrown on the
// master goroutine after all workers join, per the kernel's cancellation
// and error model: no partial connect is committed outside the failing
// worker's own contribution, and the error surfaces only after every
// worker has returned.
type WorkerPanic struct {
	WorkerID int
	Cause    error
}

func (e *WorkerPanic) Error() string {
	return fmt.Sprintf("worker %d failed: %v", e.WorkerID, e.Cause)
}

func (e *WorkerPanic) Unwrap() error { return e.Cause }

// NewWorkerPanic wraps a recovered panic value with a stack trace captured
// at the point of recovery, so the re-thrown error on the master goroutine
// still points at the worker frame that failed rather than the join point.
func NewWorkerPanic(workerID int, recovered interface{}) *WorkerPanic {
	return &WorkerPanic{WorkerID: workerID, Cause: errors.WithStack(fmt.Errorf("%v", recovered))}
}
