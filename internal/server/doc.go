// Package server wires and runs the application's transport server and
// background workers.
//
// It provides orchestration for the HTTP server lifecycle, including
// startup, signal handling, and graceful shutdown, and runs the background
// workers for the same lifetime.
package server
