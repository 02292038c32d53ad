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

// Package params holds the protocol constants advertised by the server.
package params

const (
	// Version is the semantic version of the kromer server build.
	Version = "1.0.0"

	// PackageName is reported in the MOTD package block.
	PackageName = "kromer"
	Author      = "ReconnectedCC Team"
	License     = "GPL-3.0"
	Repository  = "https://github.com/ReconnectedCC/go-kromer"
)

// Currency identity advertised in the MOTD and used for address and name
// validation across the server.
const (
	AddressPrefix  = "k"
	NameSuffix     = "kro"
	CurrencyName   = "Kromer"
	CurrencySymbol = "KRO"
)

// Krist compatibility constants. Mining is permanently disabled, but clients
// written against Krist expect the whole block to be present in the MOTD.
const (
	WalletVersion   = 16
	NonceMaxSize    = 24
	NameCost        = 500
	MinWork         = 1
	MaxWork         = 100000
	WorkFactor      = 0.025
	SecondsPerBlock = 300

	// Work is the static difficulty reported to clients. There is no miner,
	// the value only exists so the hello frame matches the Krist schema.
	Work = 500
)

// WelfareAddress is the reserved mint/sink wallet. Debits from it skip the
// non-negative balance check and it is excluded from supply reporting.
const WelfareAddress = "serverwelf"

// GitCommit is set via -ldflags at build time; empty for local builds.
var GitCommit string
