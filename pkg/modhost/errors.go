package modhost

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Sentinel errors for lifecycle operations.
var (
	// ErrAlreadyLoaded indicates LoadModules was called while modules are loaded.
	ErrAlreadyLoaded = errors.New("modules already loaded")

	// ErrNotLoaded indicates ReloadConfig was called while no modules are loaded.
	ErrNotLoaded = errors.New("modules not loaded")

	// ErrResourcesAlreadyReady indicates ResourcesReady was announced twice.
	ErrResourcesAlreadyReady = errors.New("resources already announced ready")
)

// Sentinel errors for dispatch.
var (
	// ErrDispatchInProgress indicates a dispatch was refused because another
	// dispatch had not returned yet.
	ErrDispatchInProgress = errors.New("dispatch already in progress")
)

// HandlerFault captures a panic raised by a module hook.
// It includes the stack trace for debugging.
type HandlerFault struct {
	// Module is the canonical name of the module that panicked.
	Module string
	// Kind is the event kind or lifecycle step being handled.
	Kind string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *HandlerFault) Error() string {
	return fmt.Sprintf("module %s panicked in %s: %v", e.Module, e.Kind, e.Value)
}

// Unwrap returns the panic value if it was an error.
func (e *HandlerFault) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ModuleError wraps a failure from one module's lifecycle step.
type ModuleError struct {
	// Module is the canonical module name, or the factory position if the
	// module could not be constructed.
	Module string
	// Op is the step that failed ("construct", "load", "reload", "ready").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %s: %s: %v", e.Module, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ModuleError) Unwrap() error {
	return e.Err
}

// protect runs fn, converting a panic into a *HandlerFault.
func protect(module, kind string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerFault{
				Module: module,
				Kind:   kind,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()
	return fn()
}
