// Package handlers implements the administrative operations exposed over any
// command surface.
package handlers

import "errors"

// MaxUploadBytes bounds replacement payloads for the prompt and knowledge
// stores.
const MaxUploadBytes = 512 * 1024

var (
	// ErrVersionNotFound is returned for an unknown version id.
	ErrVersionNotFound = errors.New("version not found")

	// ErrPayloadTooLarge is returned when an uploaded payload exceeds
	// MaxUploadBytes.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrWrongContentType is returned when an uploaded payload does not
	// have the shape the store expects.
	ErrWrongContentType = errors.New("wrong content type")

	// ErrNoCandidates is returned when a learn pass finds nothing new.
	ErrNoCandidates = errors.New("no new facts detected")

	// ErrSessionNotFound is returned for an unknown approval session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotInitiator is returned when someone other than the session's
	// initiator tries to decide an item.
	ErrNotInitiator = errors.New("only the initiator may decide this session")
)
