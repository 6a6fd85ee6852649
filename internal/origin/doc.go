// Package origin defines the Backend capability the proxy endpoint dispatches
// to, the Registry that resolves backends by name, and HTTPOrigin, the
// Backend implementation that forwards to a balanced pool of upstream hosts.
//
// Connection handling, host selection, timeouts and circuit breaking all live
// here; the endpoint only sees Submit.
package origin
