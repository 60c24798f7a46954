package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode is wrapped by UnsupportedOpcodeError.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrInjectionDepth is wrapped by InjectionDepthError.
	ErrInjectionDepth = errors.New("injection depth exceeded")
	// ErrUnsupportedRequirement is returned for requirement kinds with no runtime case.
	ErrUnsupportedRequirement = errors.New("unsupported requirement")
)

// UnsupportedOpcodeError reports a step whose name is not an opcode.
// It stops only the recipe instance that contains the step.
type UnsupportedOpcodeError struct {
	Recipe     string
	Step       int
	Name       string
	Suggestion string
}

func (e *UnsupportedOpcodeError) Error() string {
	msg := fmt.Sprintf("recipe %s step %d: %v %q", e.Recipe, e.Step, ErrUnknownOpcode, e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *UnsupportedOpcodeError) Unwrap() error {
	return ErrUnknownOpcode
}

// ArityError reports an opcode called with the wrong number of arguments.
type ArityError struct {
	Recipe   string
	Opcode   string
	Expected string
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("error parsing %s: function %s expected %s arguments and received %d",
		e.Recipe, e.Opcode, e.Expected, e.Actual)
}

// InjectionDepthError reports an injection refused because the prerequisite
// chain grew past the configured limit, which usually means a recipe cycle.
type InjectionDepthError struct {
	Recipe string // recipe that would have been injected
	From   string // recipe being resolved
	Depth  int
	Limit  int
}

func (e *InjectionDepthError) Error() string {
	return fmt.Sprintf("injecting %s from %s at depth %d (limit %d): %v",
		e.Recipe, e.From, e.Depth, e.Limit, ErrInjectionDepth)
}

func (e *InjectionDepthError) Unwrap() error {
	return ErrInjectionDepth
}
