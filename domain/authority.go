package domain

// Authority is the permission level attached to an identity.
// Ordering matters: a higher value may do everything a lower value may.
type Authority int

const (
	Guest Authority = iota
	Member
	Admin
)

func (a Authority) String() string {
	switch a {
	case Admin:
		return "admin"
	case Member:
		return "member"
	default:
		return "guest"
	}
}

func ParseAuthority(s string) Authority {
	switch s {
	case "admin":
		return Admin
	case "member":
		return Member
	default:
		return Guest
	}
}

// Identity is what the auth layer resolves a token into.
type Identity struct {
	UserID    string
	Authority Authority
}

func (i Identity) IsAdmin() bool { return i.Authority == Admin }

// CanEdit reports whether the identity may mutate content at all.
// Guests only watch.
func (i Identity) CanEdit() bool { return i.Authority >= Member }
