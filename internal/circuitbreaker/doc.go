// Package circuitbreaker keeps failing upstream hosts out of rotation.
//
// The proxy endpoint never retries or trips circuits itself; breakers belong
// to the HTTP origin, which consults them while reserving a host and reports
// the outcome of every round trip:
//
//   - CLOSED: requests pass through
//   - OPEN: the host failed threshold times in a row and is skipped
//   - HALF-OPEN: the reset timeout elapsed, traffic probes the host again
//
// Usage:
//
//	breakers := circuitbreaker.NewRegistry(5, 30*time.Second)
//	cb := breakers.GetBreaker("http://10.0.0.7:8080")
//	if cb.Allow() {
//	    if err != nil {
//	        cb.RecordFailure()
//	    } else {
//	        cb.RecordSuccess()
//	    }
//	}
package circuitbreaker
