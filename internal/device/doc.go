// Package device assembles the wifid runtime and drives its event loop.
//
// New wires one settings store, one radio driver, the compiled-in sub-services,
// the mode controller and the command dispatcher from a config.Config. Run applies
// the persisted radio mode and then loops: every iteration polls the sub-services
// once and executes any command lines queued from the console or from websocket
// clients. Commands run only on the loop goroutine, so handlers never race with
// each other or with the poll.
package device
