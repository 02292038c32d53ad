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

package types

import (
	"regexp"
	"strings"
)

const welfareAddress = "serverwelf"

// All patterns are anchored, and the callers pre-lowercase their inputs, so
// case-insensitivity never depends on regexp flags.
var (
	addressRe     = regexp.MustCompile(`^k[a-z0-9]{9}$`)
	addressListRe = regexp.MustCompile(`^(?:k[a-z0-9]{9}|[a-f0-9]{10})(?:,(?:k[a-z0-9]{9}|[a-f0-9]{10}))*$`)
	nameRe        = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)
	nameFetchRe   = regexp.MustCompile(`^(?:xn--)?[a-z0-9_-]{1,64}$`)
	aRecordRe     = regexp.MustCompile(`^[^\s.?#].[^\s]*$`)
	nameMetaRe    = regexp.MustCompile(`^(?:([a-z0-9-_]{1,32})@)?([a-z0-9]{1,64})\.kro$`)
)

// IsValidAddress reports whether s is a well-formed v2 address.
func IsValidAddress(s string) bool {
	return addressRe.MatchString(s)
}

// IsValidAddressList validates a comma-separated address list as used by the
// bulk lookup route. Legacy v1 addresses (10 hex chars) are still accepted.
func IsValidAddressList(s string) bool {
	return addressListRe.MatchString(s)
}

// IsValidName validates a name. When fetching, the punycode xn-- prefix is
// tolerated so existing IDN registrations stay reachable.
func IsValidName(name string, fetching bool) bool {
	name = strings.ToLower(name)
	if name == "" || len(name) > 64 {
		return false
	}
	if fetching {
		return nameFetchRe.MatchString(name)
	}
	return nameRe.MatchString(name)
}

// IsValidARecord validates the data record that can be attached to a name.
func IsValidARecord(a string) bool {
	return a != "" && len(a) <= 255 && aRecordRe.MatchString(a)
}

// IsNameRecipient reports whether a transfer recipient is name-routed
// (name.kro or meta@name.kro) rather than a plain address.
func IsNameRecipient(to string) bool {
	return nameMetaRe.MatchString(to)
}
