/*
Package server implements the HTTP API of the news analytics service.

Routes are registered on a net/http ServeMux using method and wildcard
patterns. Every JSON endpoint also answers in msgpack when the client sends
an Accept header of application/msgpack:

	GET /api/autocomplete/category?prefix=Sp
	Accept: application/msgpack

msgpack bodies are roughly a third smaller than JSON and cheaper to decode,
which matters for autocomplete clients that query on every keystroke.

# Autocomplete

The first completion request for a field loads its distinct values from the
store and builds the prefix index; concurrent first requests share one build.
Later requests are answered from the index, with prefixes of up to three
characters served from a per-field cache:

	{"field":"category","prefix":"Sp","suggestions":["Space","Sports"],"count":2,"ready":true,"time_us":41}

POST /api/autocomplete/refresh rebuilds one field (?field=topic) or both.

# Errors

Errors use one envelope:

	{"error":"news not found","code":"NOT_FOUND","status":404}
*/
package server

import (
	"github.com/newsinsight/newsserve/pkg/suggest"
)

// CompletionResponse is the autocomplete reply.
type CompletionResponse struct {
	Field       string   `json:"field" msgpack:"f"`
	Prefix      string   `json:"prefix" msgpack:"p"`
	Suggestions []string `json:"suggestions" msgpack:"s"`
	Count       int      `json:"count" msgpack:"c"`
	Ready       bool     `json:"ready" msgpack:"r"`
	TimeTaken   int64    `json:"time_us" msgpack:"t"`
}

// RefreshResponse lists the fields rebuilt and their state afterwards.
type RefreshResponse struct {
	Refreshed []string        `json:"refreshed" msgpack:"refreshed"`
	Stats     []suggest.Stats `json:"stats" msgpack:"stats"`
}

// HealthResponse reports liveness of the store and the matchers.
type HealthResponse struct {
	Status   string          `json:"status" msgpack:"status"`
	Store    string          `json:"store" msgpack:"store"`
	Matchers []suggest.Stats `json:"matchers" msgpack:"matchers"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error  string `json:"error" msgpack:"e"`
	Code   string `json:"code" msgpack:"code"`
	Status int    `json:"status" msgpack:"c"`
}
