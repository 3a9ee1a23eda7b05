// Package domain models earthquake proximity lookups.
//
// # Data Source
//
// Seismic events come from the USGS earthquake catalog
// (https://earthquake.usgs.gov/fdsnws/event/1/query), queried per lookup as a
// GeoJSON feature collection filtered to magnitude >= 5.0 and ordered by
// magnitude descending. The ordering is an upstream convention only; the
// proximity scan inspects every candidate regardless of order.
//
// # Wire Conventions
//
// Event timestamps:
//
//	properties.time is epoch milliseconds UTC. Converted to time.Time at the
//	catalog boundary; all user-facing dates render in UTC.
//
// Event coordinates:
//
//	geometry.coordinates is [longitude, latitude, depth]. Note the lon-first
//	order, the reverse of the lat/lon convention used everywhere else here.
//
// Query dates:
//
//	Calendar dates in YYYY-MM-DD form, passed to the catalog untouched.
//	Whether the boundary dates themselves are included is the provider's
//	call, not ours.
//
// # Narratives
//
// Each lookup produces a deterministic one-line summary:
//
//	Result for <city> between <Month DD, YYYY> and <Month DD, YYYY>: The
//	closest earthquake to <city> was an M <mag> - <place> on <Month DD>
//
// or, when the window holds no qualifying events:
//
//	No results found for <city> between <Month DD, YYYY> and <Month DD, YYYY>.
//
// Magnitude is rendered at whatever precision the catalog supplied. A failed
// reverse geocode degrades the place label to "Unknown location" rather than
// failing the lookup.
//
// # Search Records
//
// Every completed lookup (with or without a winner) appends one SearchRecord
// to the history store. Records are never updated or deleted here; retention
// belongs to the store. A persist failure is logged and swallowed so it can
// never turn a successful lookup into an error.
package domain
