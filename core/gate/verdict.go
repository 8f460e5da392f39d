package gate

import "encoding/json"

type State int

const (
	// NoIdentity: nobody is signed in; definitionally not an admin.
	NoIdentity State = iota
	// Resolving: signed in, role lookup for this identity not finished.
	Resolving
	NonAdmin
	Admin
)

func (s State) String() string {
	switch s {
	case NoIdentity:
		return "no-identity"
	case Resolving:
		return "resolving"
	case NonAdmin:
		return "non-admin"
	case Admin:
		return "admin"
	}
	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Verdict is the admin-access answer for one session. Err is set when the
// role lookup failed; such a verdict is always NonAdmin.
type Verdict struct {
	State State
	Err   error
}

// Unchecked reports whether no definitive answer exists yet.
func (v Verdict) Unchecked() bool {
	return v.State == NoIdentity || v.State == Resolving
}

func (v Verdict) IsAdmin() bool {
	return v.State == Admin
}

func (v Verdict) LookupFailed() bool {
	return v.Err != nil
}
