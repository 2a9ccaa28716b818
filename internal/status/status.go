// Package status defines the device status document served on the HTTP front
// end's /status route. It has no dependencies so that remote clients can decode
// the document without linking the daemon.
package status

// Status is the live state of one device.
type Status struct {
	Hostname    string       `json:"hostname"`
	Mode        string       `json:"mode"`
	DesiredMode string       `json:"desired_mode"`
	Services    []Service    `json:"services"`
	Station     *Station     `json:"station,omitempty"`
	AccessPoint *AccessPoint `json:"access_point,omitempty"`
	Version     string       `json:"version"`
}

// Service is the live state of one sub-service.
type Service struct {
	Name    string `json:"name"`
	Running bool   `json:"running"`
}

// Station is the live station interface state.
type Station struct {
	SSID      string `json:"ssid"`
	Connected bool   `json:"connected"`
	Signal    int    `json:"signal"`
	IP        string `json:"ip,omitempty"`
}

// AccessPoint is the live access-point interface state.
type AccessPoint struct {
	SSID string `json:"ssid"`
	IP   string `json:"ip,omitempty"`
}
