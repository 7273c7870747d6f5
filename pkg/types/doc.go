// Package types defines the Command model, the Backend interface, the
// Result shape, and standard error types shared by every CAMAC execution
// backend and the dispatcher.
package types
