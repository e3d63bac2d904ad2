package domain

import (
	"crypto/md5" //nolint:gosec // compatibility fingerprint, not security
	"encoding/binary"
	"strconv"
)

// Fingerprint computes the 64-bit fingerprint of a string: the first 8
// bytes of its MD5 digest, read big-endian and reinterpreted as a signed
// two's-complement integer. The identifiers derived from it must match
// the ones already published in existing translation bundles, so the exact
// byte order and signedness are load-bearing.
func Fingerprint(s string) int64 {
	sum := md5.Sum([]byte(s)) //nolint:gosec
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// MessageID computes the content-hash identifier for a message from its
// presentable text and optional meaning. With a meaning the two
// fingerprints are combined with wrapping 64-bit arithmetic:
//
//	id = fp(meaning) + (fp(text) << 1) + (1 if fp(text) < 0 else 0)
//
// The sign bit is then cleared, yielding a non-negative 63-bit value
// rendered as a decimal string. Every step, including the wraparound,
// reproduces the legacy tool bit for bit.
func MessageID(presentable, meaning string) string {
	fp := Fingerprint(presentable)
	if meaning != "" {
		var carry int64
		if fp < 0 {
			carry = 1
		}
		fp = Fingerprint(meaning) + (fp << 1) + carry
	}
	return strconv.FormatUint(uint64(fp)&0x7FFFFFFFFFFFFFFF, 10)
}
