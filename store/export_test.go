// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

// SetTokenSource replaces the token generator so tests can force collisions.
func (s *Store) SetTokenSource(f func() (string, error)) {
	s.newToken = f
}
