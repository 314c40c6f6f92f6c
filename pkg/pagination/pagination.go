// Copyright (c) 2026 Cryptonotify. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination reads ?page= and ?limit= for the admin account listing
// and builds the meta block sent next to the page.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a 1-indexed page request.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before the page starts.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes the page in a list response.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// Meta reports where p sits among total rows.
func (p Params) Meta(total int) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages, HasNext: p.Page < pages}
}

// Parse never fails: unusable values fall back to page 1 and [DefaultLimit],
// and limits above [MaxLimit] are clamped.
func Parse(query url.Values) Params {
	params := Params{Page: 1, Limit: DefaultLimit}

	if page, err := strconv.Atoi(query.Get("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		params.Limit = min(limit, MaxLimit)
	}
	return params
}

// FromRequest is [Parse] applied to the request's query string.
func FromRequest(request *http.Request) Params {
	return Parse(request.URL.Query())
}
