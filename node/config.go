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

// Package node assembles the HTTP stack: router, middleware, the Krist and
// internal route handlers, and server lifecycle.
package node

// Config is the runtime configuration resolved by cmd/kromer from flags and
// environment.
type Config struct {
	// ListenAddr is the bind address, e.g. "0.0.0.0:8080".
	ListenAddr string

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string

	// PublicURL is the advertised host used to build gateway URLs and the
	// MOTD, without a scheme.
	PublicURL string

	// InternalKey guards the /api/_internal surface via the Kromer-Key
	// header. Empty disables the internal surface entirely.
	InternalKey string

	// ForceInsecureWS advertises ws:// gateway URLs instead of wss://,
	// for development setups without TLS termination.
	ForceInsecureWS bool

	// Debug enables verbose logging and is reported in the MOTD.
	Debug bool
}

// GatewayScheme returns the advertised WebSocket scheme.
func (c Config) GatewayScheme() string {
	if c.ForceInsecureWS {
		return "ws"
	}
	return "wss"
}
