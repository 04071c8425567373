package thinktap

import (
	"errors"
	"strings"
)

var (
	// ErrModelRequired is returned when neither the request nor the
	// config names a model.
	ErrModelRequired = errors.New("thinktap: model must be specified")

	// ErrUnknownProvider is returned for a provider name this layer
	// does not route to a backend.
	ErrUnknownProvider = errors.New("thinktap: unknown provider")

	// ErrThoughtsUnsupported marks a provider rejecting the
	// include-thoughts request parameter. The Google provider recovers
	// from it internally by retrying with a budget-only config; it is
	// exported so fakes and hosts can simulate the condition.
	ErrThoughtsUnsupported = errors.New("thinktap: include_thoughts not accepted by this model version")
)

// thoughtIncompatMarkers are substrings seen in API error payloads when a
// backend's config schema predates the include_thoughts field.
var thoughtIncompatMarkers = []string{
	"include_thoughts",
	"includethoughts",
	"thinking_config",
	"thinkingconfig",
}

// isThoughtsIncompatible reports whether err looks like a
// version-compatibility rejection of the thinking config, as opposed to a
// transport or quota failure. The SDK surfaces schema rejections as plain
// INVALID_ARGUMENT errors, so classification is by message content.
func isThoughtsIncompatible(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrThoughtsUnsupported) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range thoughtIncompatMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
