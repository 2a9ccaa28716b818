package settings

import (
	"encoding/binary"
	"net"
)

// PackIPv4 packs a dotted IPv4 literal into the int32 stored form.
// Anything that is not an IPv4 address packs to zero.
func PackIPv4(s string) int32 {
	ip := net.ParseIP(s).To4()
	if ip == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(ip))
}

// UnpackIPv4 converts the stored int32 form back to a dotted literal.
func UnpackIPv4(v int32) string {
	ip := make(net.IP, 4)
	binary.BigEndian.PutUint32(ip, uint32(v))
	return ip.String()
}
