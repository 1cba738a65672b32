// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package cache provides a thread-safe in-memory TTL cache.

Each cache has a name used as the cache_type label on the hit and miss
Prometheus counters. Expired entries are removed lazily on Get and by a
background sweep that runs until Close is called.

Example:

	events := cache.New[[]models.Event]("events", time.Minute)
	defer events.Close()

	if list, ok := events.Get("all"); ok {
	    return list, nil
	}
*/
package cache
