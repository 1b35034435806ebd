// Package controllers holds the HTTP handlers. Controllers decode and
// validate request bodies, call one service method, and write the JSON
// envelope; authorization beyond self-ownership lives in the route gates.
package controllers

import (
	"net/http"
	"strconv"
)

// pagination reads ?page= and ?limit= with sane bounds.
func pagination(r *http.Request) (page, limit int64) {
	page, _ = strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	limit, _ = strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
