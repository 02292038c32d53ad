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
	"time"

	"github.com/shopspring/decimal"
)

// Name is a registered identifier addressable as name.kro. OriginalOwner is
// fixed at registration time and never changes afterwards.
type Name struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Owner           string          `json:"owner"`
	OriginalOwner   string          `json:"original_owner"`
	TimeRegistered  time.Time       `json:"time_registered"`
	LastUpdated     *time.Time      `json:"last_updated,omitempty"`
	LastTransferred *time.Time      `json:"last_transferred,omitempty"`
	Unpaid          decimal.Decimal `json:"unpaid"`
	Metadata        *string         `json:"metadata,omitempty"`
}
