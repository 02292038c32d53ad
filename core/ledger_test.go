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

package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// Amounts are normalized with banker's rounding before any balance check;
// these cases pin the half-even behavior.
func TestAmountRoundingHalfEven(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"40", "40"},
		{"40.005", "40"},
		{"40.015", "40.02"},
		{"0.125", "0.12"},
		{"0.135", "0.14"},
		{"1.004", "1"},
		{"1.006", "1.01"},
	}
	for _, tc := range cases {
		got := decimal.RequireFromString(tc.in).RoundBank(2)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"%s -> %s, want %s", tc.in, got, tc.want)
	}
}

// Both directions of a transfer pair must lock the same row first, or two
// opposite concurrent transfers deadlock.
func TestLockOrder(t *testing.T) {
	a1, b1 := lockOrder("kaaaaaaaaa", "kbbbbbbbbb")
	a2, b2 := lockOrder("kbbbbbbbbb", "kaaaaaaaaa")
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, "kaaaaaaaaa", a1)

	// The literal "name" purchase counterparty participates like any key.
	f, s := lockOrder("name", "kaaaaaaaaa")
	assert.Equal(t, "kaaaaaaaaa", f)
	assert.Equal(t, "name", s)
}

func TestEqualStringPtr(t *testing.T) {
	a := "x"
	b := "x"
	c := "y"
	assert.True(t, equalStringPtr(nil, nil))
	assert.True(t, equalStringPtr(&a, &b))
	assert.False(t, equalStringPtr(&a, &c))
	assert.False(t, equalStringPtr(&a, nil))
	assert.False(t, equalStringPtr(nil, &a))
}
