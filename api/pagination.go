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
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// Pagination carries the common list-query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// TransactionQuery extends Pagination with the mined-row filter.
type TransactionQuery struct {
	Pagination
	ExcludeMined bool
}

// ParsePagination reads limit/offset, clamping limit into [1, 1000] and
// offset to >= 0. Unparseable values fall back to the defaults rather than
// erroring.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{Limit: DefaultLimit}
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			p.Limit = v
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			p.Offset = v
		}
	}
	if p.Limit < 1 {
		p.Limit = 1
	} else if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ParseTransactionQuery reads pagination plus the excludeMined flag.
func ParseTransactionQuery(q url.Values) TransactionQuery {
	return TransactionQuery{
		Pagination:   ParsePagination(q),
		ExcludeMined: q.Get("excludeMined") == "true",
	}
}
