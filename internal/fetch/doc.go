// Package fetch decides, per request, how cache and network combine.
//
// Two strategies exist. Static assets use cache-first-with-revalidate:
// a cached value is returned immediately and refreshed in the
// background, and the background refresh has no observable failure
// mode. API requests use network-first-with-fallback: the network
// response wins and overwrites the dynamic cache; a transport failure
// falls back to the cached copy, or to a synthesized Offline error
// when none exists.
//
// Which namespace gets which strategy is configuration, not inference:
// the Selector is constructed with the API prefix and everything else
// is treated as an asset.
package fetch
