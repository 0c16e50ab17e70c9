// Package diagnose matches free-text incident descriptions against a keyword-tagged
// knowledge base and returns likely causes, debug steps, a complexity rating and the
// service offering best suited to the problem.
//
// # Matching
//
// All knowledge lives in one ranked rule list, evaluated tier by tier:
//
//	tier 0  curated IssuePatterns   best keyword count wins, ties keep the first rule
//	tier 1  heuristic categories    first rule with any trigger hit wins
//	tier 2  generic fallback        unconditional
//
// Keywords are lowercase substrings checked against the lowercased description, so
// "401" matches inside "401 unauthorized". Curated rules come from the PatternStore
// on every call; heuristic and generic rules are parsed once from an embedded catalog.
//
// # Logging
//
// Every successful Diagnose call writes exactly one DiagnosticLog before returning.
// MatchedPatternID is set only when a tier-0 rule fired. If the log write fails the
// caller gets a PersistenceError and no diagnosis, which keeps the diagRuns and
// patternsMatched counters equal to the diagnoses actually served.
//
// # Usage
//
//	matcher, err := diagnose.NewMatcher(nil) // embedded catalog
//	svc, err := diagnose.NewService(store, store, sanitizer, matcher, logger)
//	result, err := svc.Diagnose(ctx, diagnose.Request{
//	    Description: "Getting CORS error, access-control-allow-origin missing",
//	})
package diagnose
