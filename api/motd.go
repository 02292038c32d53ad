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

package api

import (
	"time"

	"github.com/reconnectedcc/go-kromer/params"
)

// MOTDPackage describes the server build. "licence" keeps the Krist wire
// spelling.
type MOTDPackage struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Author     string `json:"author"`
	Licence    string `json:"licence"`
	Repository string `json:"repository"`
	GitHash    string `json:"git_hash,omitempty"`
}

type MOTDConstants struct {
	WalletVersion   int     `json:"wallet_version"`
	NonceMaxSize    int     `json:"nonce_max_size"`
	NameCost        int     `json:"name_cost"`
	MinWork         int     `json:"min_work"`
	MaxWork         int     `json:"max_work"`
	WorkFactor      float64 `json:"work_factor"`
	SecondsPerBlock int     `json:"seconds_per_block"`
}

type MOTDCurrency struct {
	AddressPrefix  string `json:"address_prefix"`
	NameSuffix     string `json:"name_suffix"`
	CurrencyName   string `json:"currency_name"`
	CurrencySymbol string `json:"currency_symbol"`
}

// DetailedMOTD is the static server descriptor returned by the motd route
// and embedded in the WebSocket hello frame.
type DetailedMOTD struct {
	ServerTime time.Time `json:"server_time"`

	MOTD    string     `json:"motd"`
	Set     *time.Time `json:"set"`
	MOTDSet *time.Time `json:"motd_set"`

	PublicURL   string `json:"public_url"`
	PublicWsURL string `json:"public_ws_url"`

	MiningEnabled       bool `json:"mining_enabled"`
	TransactionsEnabled bool `json:"transactions_enabled"`
	DebugMode           bool `json:"debug_mode"`

	Work      int    `json:"work"`
	LastBlock *Block `json:"last_block,omitempty"`

	Package   MOTDPackage   `json:"package"`
	Constants MOTDConstants `json:"constants"`
	Currency  MOTDCurrency  `json:"currency"`

	Notice string `json:"notice"`
}

// NewDetailedMOTD builds the descriptor. ServerTime is stamped per call; the
// rest is constant for the process lifetime.
func NewDetailedMOTD(publicURL, publicWsURL string, debug bool) *DetailedMOTD {
	return &DetailedMOTD{
		ServerTime:          time.Now().UTC(),
		MOTD:                "Welcome to Kromer!",
		PublicURL:           publicURL,
		PublicWsURL:         publicWsURL,
		MiningEnabled:       false,
		TransactionsEnabled: true,
		DebugMode:           debug,
		Work:                params.Work,
		Package: MOTDPackage{
			Name:       params.PackageName,
			Version:    params.Version,
			Author:     params.Author,
			Licence:    params.License,
			Repository: params.Repository,
			GitHash:    params.GitCommit,
		},
		Constants: MOTDConstants{
			WalletVersion:   params.WalletVersion,
			NonceMaxSize:    params.NonceMaxSize,
			NameCost:        params.NameCost,
			MinWork:         params.MinWork,
			MaxWork:         params.MaxWork,
			WorkFactor:      params.WorkFactor,
			SecondsPerBlock: params.SecondsPerBlock,
		},
		Currency: MOTDCurrency{
			AddressPrefix:  params.AddressPrefix,
			NameSuffix:     params.NameSuffix,
			CurrencyName:   params.CurrencyName,
			CurrencySymbol: params.CurrencySymbol,
		},
		Notice: "Kromer is in no way affiliated with the Krist project.",
	}
}

// MOTDResponse wraps the descriptor for the HTTP route.
type MOTDResponse struct {
	OK
	*DetailedMOTD
}
