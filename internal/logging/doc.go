// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package logging provides centralized zerolog-based logging for Rollcall.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Str("station", id).Msg("Station connected")
	logging.Error().Err(err).Msg("Journal write failed")
	logging.Ctx(ctx).Info().Msg("Request processed")

# Adapters

Some libraries bring their own logger interface:

  - NewSlogLogger returns a *slog.Logger for sutureslog
  - NewWatermillAdapter returns a watermill.LoggerAdapter for the event publisher

Both write through the global zerolog logger.

# Best Practices

Always terminate log chains with .Msg() or .Send():

	logging.Info().Str("key", "value").Msg("message")  // Correct
	logging.Info().Str("key", "value")                 // WRONG - log not emitted
*/
package logging
