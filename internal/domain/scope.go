package domain

// Scope restricts a repository call to a single owner. Every query takes one
// explicitly; there is no ambient per-user filter. The administrative bypass
// is a distinct constructor so cross-user access is visible at the call site
// and checked by the type system rather than keyed by a magic string.
type Scope struct {
	userID int32
	all    bool
}

// UserScope scopes queries to the given owner.
func UserScope(userID int32) Scope {
	return Scope{userID: userID}
}

// AllUsers returns the administrative bypass scope.
func AllUsers() Scope {
	return Scope{all: true}
}

// UserID returns the owner the scope is restricted to (0 for AllUsers).
func (s Scope) UserID() int32 {
	return s.userID
}

// Unrestricted reports whether the scope bypasses owner filtering.
func (s Scope) Unrestricted() bool {
	return s.all
}

// Owns reports whether an entity owned by userID is visible under the scope.
func (s Scope) Owns(userID int32) bool {
	return s.all || s.userID == userID
}
