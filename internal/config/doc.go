// Package config loads the wifid daemon configuration.
//
// The configuration is a YAML file holding where the daemon keeps its data, which
// sub-services are compiled in, and the factory defaults substituted for settings
// that were never written. A missing file yields Default.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/wifid/config.yaml or $HOME/.config/wifid/config.yaml
//   - macOS: $HOME/.config/wifid/config.yaml
//   - Windows: %LOCALAPPDATA%\wifid\config.yaml
//
// Device settings written by configuration commands are NOT stored here; they live
// in the settings database under the data directory.
//
// # Example
//
//	version: 1
//	data_dir: /var/lib/wifid
//	services: [filesystem, mdns, http, update]
//	defaults:
//	  hostname: printer
//	  ap_ssid: PRINTER_AP
//	networks:
//	  - ssid: home
//	    passphrase: correct horse
//	    rssi: -60
package config
