package domain

import "errors"

// Error classes shared by every layer. Wrap them with fmt.Errorf("...: %w")
// and test with errors.Is.
var (
	// ErrConfiguration: missing API key or unreadable zone dataset.
	ErrConfiguration = errors.New("configuration error")
	// ErrInput: malformed or missing user input. Maps to 400.
	ErrInput = errors.New("invalid input")
	// ErrUpstream: the mapping provider was unreachable or answered non-2xx.
	ErrUpstream = errors.New("upstream error")
	// ErrFormat: the provider answered with a shape we cannot read.
	ErrFormat = errors.New("unexpected provider response")
)
