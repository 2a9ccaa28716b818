package settings

// Defaults is the factory configuration substituted for keys that were never written.
type Defaults struct {
	Hostname string `yaml:"hostname"`

	HTTPEnabled bool   `yaml:"http_enabled"`
	HTTPPort    uint16 `yaml:"http_port"`

	StationSSID       string `yaml:"station_ssid"`
	StationPassphrase string `yaml:"station_passphrase"`
	StationIP         string `yaml:"station_ip"`
	StationGateway    string `yaml:"station_gateway"`
	StationNetmask    string `yaml:"station_netmask"`

	APSSID       string `yaml:"ap_ssid"`
	APPassphrase string `yaml:"ap_passphrase"`
	APIP         string `yaml:"ap_ip"`
	APNetmask    string `yaml:"ap_netmask"`
	APChannel    int8   `yaml:"ap_channel"`

	// RadioMode is the desired mode on a device that was never configured.
	RadioMode int8 `yaml:"radio_mode"`
}

// FactoryDefaults returns the built-in factory configuration.
func FactoryDefaults() Defaults {
	return Defaults{
		Hostname:          "wifid",
		HTTPEnabled:       true,
		HTTPPort:          80,
		StationSSID:       "WIFID",
		StationPassphrase: "",
		StationIP:         "0.0.0.0",
		StationGateway:    "0.0.0.0",
		StationNetmask:    "0.0.0.0",
		APSSID:            "WIFID_AP",
		APPassphrase:      "12345678",
		APIP:              "192.168.0.1",
		APNetmask:         "255.255.255.0",
		APChannel:         11,
		RadioMode:         2,
	}
}

// HTTPEnabledFlag returns the stored form of HTTPEnabled.
func (d Defaults) HTTPEnabledFlag() int8 {
	if d.HTTPEnabled {
		return 1
	}
	return 0
}
