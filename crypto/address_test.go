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

package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference vector shared with every Krist-compatible implementation.
func TestMakeV2AddressVector(t *testing.T) {
	require.Equal(t, "krcgbmalxg", MakeV2Address("test123", "k"))
}

func TestMakeV2AddressDeterministic(t *testing.T) {
	a := MakeV2Address("correct horse battery staple", "k")
	b := MakeV2Address("correct horse battery staple", "k")
	assert.Equal(t, a, b)
	assert.Len(t, a, 10)
	assert.True(t, strings.HasPrefix(a, "k"))
}

func TestMakeV2AddressPrefix(t *testing.T) {
	k := MakeV2Address("test123", "k")
	x := MakeV2Address("test123", "x")
	assert.Equal(t, k[1:], x[1:], "prefix must not influence the derived body")
	assert.Equal(t, byte('x'), x[0])
}

func TestSha256Hex(t *testing.T) {
	// sha256("") is a well-known constant.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Sha256Hex(""))
	assert.Equal(t, Sha256Hex(Sha256Hex("abc")), DoubleSha256Hex("abc"))
}

func TestHexToBase36(t *testing.T) {
	assert.Equal(t, byte('0'), hexToBase36(0))
	assert.Equal(t, byte('0'), hexToBase36(6))
	assert.Equal(t, byte('1'), hexToBase36(7))
	assert.Equal(t, byte('9'), hexToBase36(69))
	assert.Equal(t, byte('a'), hexToBase36(70))
	assert.Equal(t, byte('z'), hexToBase36(251))
	assert.Equal(t, byte('e'), hexToBase36(252))
	assert.Equal(t, byte('e'), hexToBase36(255))
}

func TestRandomPassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		pw := RandomPassword()
		require.Len(t, pw, 32)
		for _, c := range pw {
			assert.Contains(t, passwordCharset, string(c))
		}
		assert.False(t, seen[pw], "passwords must not repeat")
		seen[pw] = true
	}
}
