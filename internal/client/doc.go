// Package client implements the headless sync agent runtime.
//
// It wires client services and the background synchronization job into a
// single process lifecycle: an initial full sync on startup, a periodic
// sync loop, and shutdown on termination signals.
package client
