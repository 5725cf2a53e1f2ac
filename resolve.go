package laz

import "strings"

// Resolver maps a logical function name onto one of the discovered endpoints.
// The server transmits no authoritative function-to-route mapping, so any
// implementation is a heuristic; keeping it behind an interface lets an
// authoritative mapping replace it without touching the dispatcher.
type Resolver interface {
	// Resolve returns the endpoint path for functionName, or false when no
	// endpoint matches.
	Resolve(functionName string, endpoints []EndpointInfo) (string, bool)
}

// HeuristicResolver matches function names to endpoint URIs by substring and
// fixed path patterns. Scan order and candidate order are fixed so results
// are reproducible:
//
//  1. Endpoints are scanned in list order; the first URI containing the raw
//     function name, the kebab-cased name (underscores to hyphens), or the
//     lower-cased name wins.
//  2. Failing that, the candidates /api/{kebab}, /api/auth/{kebab} and
//     /auth/{kebab} are tried in that order against the endpoint list by
//     exact equality.
type HeuristicResolver struct{}

func (HeuristicResolver) Resolve(functionName string, endpoints []EndpointInfo) (string, bool) {
	kebab := strings.ReplaceAll(functionName, "_", "-")
	lower := strings.ToLower(functionName)

	for _, ep := range endpoints {
		if strings.Contains(ep.URI, functionName) ||
			strings.Contains(ep.URI, kebab) ||
			strings.Contains(ep.URI, lower) {
			return ep.URI, true
		}
	}

	candidates := []string{
		"/api/" + kebab,
		"/api/auth/" + kebab,
		"/auth/" + kebab,
	}
	for _, candidate := range candidates {
		for _, ep := range endpoints {
			if ep.URI == candidate {
				return candidate, true
			}
		}
	}

	return "", false
}
