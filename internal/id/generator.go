// Package id mints short sortable ids for requests and live connections.
package id

import (
	"time"

	fid "github.com/amterp/flexid"
)

// Prefixes by id kind.
const (
	RequestPrefix = "req_"
	ClientPrefix  = "ws_"
)

// RandomChars is the length of the random suffix on every id.
const RandomChars = 8

var generator *fid.Generator

func init() {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	config := fid.NewConfig().
		WithEpoch(epoch).
		WithTickSize(10 * time.Millisecond).
		WithNumRandomChars(RandomChars)

	generator = fid.MustNewGenerator(config)
}

// NewRequestID returns an id for one API request.
func NewRequestID() string {
	return RequestPrefix + generator.MustGenerate()
}

// NewClientID returns an id for one WebSocket connection.
func NewClientID() string {
	return ClientPrefix + generator.MustGenerate()
}
