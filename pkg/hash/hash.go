package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// ShortHex returns the first n hex characters of SHA256(input). Used to
// correlate viewers in logs without writing raw identifiers.
func ShortHex(input string, n int) string {
	full := SHA256Hex(input)
	if n > len(full) {
		return full
	}
	return full[:n]
}

// IteratedSHA256 applies SHA256 iteratively n times to produce a derived hash.
func IteratedSHA256(input string, iterations int) string {
	data := []byte(input)
	for range iterations {
		h := sha256.Sum256(data)
		data = h[:]
	}
	return hex.EncodeToString(data)
}

// AnonymousViewerID derives a stable pseudonymous viewer ID from a device
// UUID. The iteration count makes brute-forcing the source UUID impractical.
func AnonymousViewerID(deviceUUID string) string {
	return IteratedSHA256(deviceUUID, 5000)
}
