// Package rules holds the service rule table and the registry that matches an
// input URL against it. Patterns are compiled once at startup with regexp2
// (several services need lookahead) and the registry is read-only afterwards.
package rules
