// Package discovery finds wifid devices on the local network.
//
// Devices in station mode announce their hostname as an "_http._tcp" mDNS
// service pointing at the HTTP front end. The announcement carries a "mode"
// TXT record holding the live radio mode, which is what tells a wifid device
// apart from any other HTTP service on the network.
//
// Usage:
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 3 * time.Second
//	devices, err := scanner.Scan(ctx)
//	for _, d := range devices {
//	    fmt.Println(d.Instance, d.ConsoleURL())
//	}
package discovery
