package commission

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/urmzd/commissioner/pkg/device"
)

// Operator-assigned identities keep their high nibble in [1, 7]. That keeps
// them clear of zero and of the reserved ranges at the top of the 64-bit
// space (0xFFFF_FFFx_xxxx_xxxx and friends).
const (
	operatorNibbleMin = 0x1
	operatorNibbleMax = 0x7
	lowBitsMask       = 0x0FFF_FFFF_FFFF_FFFF
)

// OperatorIdentity forces the high nibble of v into the operator-assigned range.
func OperatorIdentity(v uint64) uint64 {
	nibble := operatorNibbleMin + (v>>60)%(operatorNibbleMax-operatorNibbleMin+1)
	return v&lowBitsMask | nibble<<60
}

// IsOperatorAssigned reports whether v lies in the operator-assigned range.
func IsOperatorAssigned(v uint64) bool {
	n := v >> 60
	return n >= operatorNibbleMin && n <= operatorNibbleMax
}

// FormatIdentity renders v as 16 uppercase hex digits.
func FormatIdentity(v uint64) string {
	return fmt.Sprintf("%016X", v)
}

// GenerateIdentity returns a random operator-assigned identity.
func GenerateIdentity() string {
	return FormatIdentity(OperatorIdentity(randomUint64()))
}

// NormalizeIdentity accepts an identity with or without a 0x prefix, in
// any case, and returns it as 16 uppercase hex digits. Zero is rejected.
func NormalizeIdentity(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" || len(s) > 16 {
		return "", fmt.Errorf("%w: %q", device.ErrInvalidIdentity, s)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil || v == 0 {
		return "", fmt.Errorf("%w: %q", device.ErrInvalidIdentity, s)
	}
	return FormatIdentity(v), nil
}

func randomUint64() uint64 {
	var buf [8]byte
	// crypto/rand.Read does not fail on supported platforms.
	_, _ = rand.Read(buf[:])
	return binary.BigEndian.Uint64(buf[:])
}
