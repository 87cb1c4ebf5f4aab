// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import "github.com/ManuGH/scenecue/internal/domain/session/store"

// ResolveTargets maps an optional client id to the sessions a command applies
// to. An empty id means broadcast: every session known at call time. A
// non-empty id that matches no session resolves to nothing; controllers never
// create sessions implicitly.
func ResolveTargets(st *store.Store, clientID string) []*store.Session {
	if clientID == "" {
		return st.List()
	}
	if sess, ok := st.Lookup(clientID); ok {
		return []*store.Session{sess}
	}
	return nil
}
