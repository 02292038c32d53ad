// Copyright 2025 The go-kromer Authors
// This file is part of go-kromer.
//
// go-kromer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-kromer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-kromer. If not, see <http://www.gnu.org/licenses/>.

// Package crypto implements the Krist v2 address derivation scheme and the
// hashing helpers shared by the authentication path.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Sha256Hex returns the lowercase hex digest of the UTF-8 bytes of s.
func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// DoubleSha256Hex hashes the hex digest of s a second time. Note that the
// second round hashes the 64-character hex string, not the raw digest; this
// matches the Krist reference implementation.
func DoubleSha256Hex(s string) string {
	return Sha256Hex(Sha256Hex(s))
}

// hexToBase36 compresses a byte into the Krist base36 alphabet. Values map in
// runs of seven: 0..9 then a..z, with the 36th bucket aliased to 'e'.
func hexToBase36(b byte) byte {
	switch d := b / 7; {
	case d <= 9:
		return '0' + d
	case d <= 35:
		return 'a' + d - 10
	default:
		return 'e'
	}
}

// MakeV2Address derives the deterministic 10-character address for a private
// key. The derivation is a wire-compatibility point with the Krist ecosystem
// and must stay byte-for-byte stable: nine "protein" bytes are drawn from an
// iterated double-SHA-256 chain, then a nibble walk over the running hash
// picks each protein slot exactly once, rehashing (single SHA-256) on slot
// collisions.
func MakeV2Address(privateKey, prefix string) string {
	var protein [9]byte
	var used [9]bool

	hash := DoubleSha256Hex(privateKey)
	for i := range protein {
		b, _ := strconv.ParseUint(hash[:2], 16, 8)
		protein[i] = byte(b)
		hash = DoubleSha256Hex(hash)
	}

	chain := make([]byte, 0, len(prefix)+9)
	chain = append(chain, prefix...)

	for i := 0; i < 9; {
		b, _ := strconv.ParseUint(hash[2*i:2*i+2], 16, 8)
		index := int(b) % 9
		if used[index] {
			hash = Sha256Hex(hash)
			continue
		}
		chain = append(chain, hexToBase36(protein[index]))
		used[index] = true
		i++
	}
	return string(chain)
}

const passwordCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// RandomPassword returns a 32-character private key drawn from a CSPRNG.
// The charset length is a power of two, so rejection sampling is not needed.
func RandomPassword() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto: csprng failure: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = passwordCharset[int(b)%len(passwordCharset)]
	}
	return string(buf)
}
