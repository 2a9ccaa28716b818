// Package remote talks to a running wifid device over its HTTP front end.
//
// Exec sends one command line over the /ws console and returns the status
// lines; Status fetches the /status document. Connection failures are retried
// with exponential backoff. A command line is never resent once it has been
// written to the socket.
package remote
