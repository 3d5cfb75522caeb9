// Package pairings generates the match sets for tournament rounds. Every
// generator is deterministic and side-effect free: it reads a participant
// snapshot plus the section's match history and returns matches, so a dry
// run and the persisted run always agree.
package pairings
