// Package fake provides fake implementations for interfaces commonly
// used in the repository. The implementations offer configuration to
// return errors when it is needed by the unit tests, and it is also
// possible to record the calls of functions of an object in some cases.
package fake

import "golang.org/x/xerrors"

var fakeErr = xerrors.New("fake error")

// GetError returns the fake error.
func GetError() error {
	return fakeErr
}

// Err returns the expected format of a wrapped fake error.
func Err(msg string) string {
	return msg + ": fake error"
}

// Call is a tool to keep track of function calls.
type Call struct {
	calls [][]interface{}
}

// Get returns the nth call ith parameter.
func (c *Call) Get(n, i int) interface{} {
	return c.calls[n][i]
}

// Len returns the number of calls.
func (c *Call) Len() int {
	return len(c.calls)
}

// Add adds a call to the list.
func (c *Call) Add(args ...interface{}) {
	c.calls = append(c.calls, args)
}
