package errors

import "errors"

// State holds the last error reported to it. The zero value holds no error.
//
// Repository operations return their errors directly; State is for callers
// such as the CLI that want to keep an error around after the call returns.
// It is not safe for concurrent use.
type State struct {
	err error
}

// Set records err as the last error. A nil err clears the state.
func (s *State) Set(err error) {
	s.err = err
}

// SetInnermost records the deepest error in err's Unwrap chain.
func (s *State) SetInnermost(err error) {
	s.err = Innermost(err)
}

// SetMessage records a plain message as the last error. An empty message
// clears the state.
func (s *State) SetMessage(msg string) {
	if msg == "" {
		s.err = nil
		return
	}
	s.err = errors.New(msg)
}

// Clear removes any recorded error.
func (s *State) Clear() {
	s.err = nil
}

// Err returns the recorded error, or nil.
func (s *State) Err() error {
	return s.err
}

// HasError reports whether an error is recorded.
func (s *State) HasError() bool {
	return s.err != nil
}

// Message returns the recorded error's message, or "" when there is none.
func (s *State) Message() string {
	return Message(s.err)
}

func (s *State) String() string {
	if s.err == nil {
		return ""
	}
	return "Error: " + s.Message()
}
