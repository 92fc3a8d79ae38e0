// Package trace records capture runs durably.
//
// A run is one scenario execution: every capture attempt becomes a
// frame row with its resolved state and range, and every emitted
// element becomes an emission row keyed by stream and emission order.
// Storage is SQLite in WAL mode with a single writer; frame payloads
// are serialized as canonical JSON so identical runs produce
// byte-identical rows and golden files.
package trace
