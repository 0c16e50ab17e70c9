// Package secrets detects and redacts credentials using the gitleaks rule set.
//
// Visitors paste stack traces and error output into the diagnose form; those often
// carry API keys, tokens or connection strings. Everything stored in a diagnostic
// log passes through a Scrubber first. Findings keep the rule ID and line but never
// the secret itself.
package secrets
