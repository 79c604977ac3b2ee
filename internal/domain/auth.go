package domain

// Session is what the session elevator binds to an authenticated request.
type Session struct {
	Email    string
	IsAdmin  bool
	IsEditor bool
}

// SessionFor projects a validated principal onto its session.
func SessionFor(p *Principal) Session {
	return Session{Email: p.Email, IsAdmin: p.IsAdmin, IsEditor: p.IsEditor}
}

// CanEdit reports whether the session may change the announced favorite.
func (s Session) CanEdit() bool {
	return s.IsAdmin || s.IsEditor
}
