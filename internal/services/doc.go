// Package services runs the network sub-services that only make sense while the
// radio is active, as a single lifecycle unit.
//
// The fixed set, in start order, is:
//
//  1. filesystem: mounts the data directory served by the HTTP front end
//  2. mdns: announces the hostname over multicast DNS (station mode only)
//  3. http: the HTTP front end (static files, /status, /metrics, /ws console)
//  4. update: receives update images over the network
//
// Any member may be compiled out by leaving it nil in Set. The Orchestrator starts
// them in that order on Begin, stops them in reverse order on End, and polls them on
// Handle. Begin may block on network calls and is only invoked from configuration
// commands; Handle is invoked once per event-loop iteration and never blocks.
//
// # Failure Policy
//
// Begin returns false only when a critical member (http, update) fails to start.
// A failed name-resolution start is reported but does not affect the result. A failed
// filesystem mount is reported as a distinct warning: the HTTP front end still starts
// and answers file requests with 503 until the filesystem is mounted.
package services
