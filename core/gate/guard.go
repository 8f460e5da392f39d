package gate

type View int

const (
	ViewLoading View = iota
	ViewAuthRequired
	ViewAccessDenied
	ViewContent
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewAuthRequired:
		return "authentication-required"
	case ViewAccessDenied:
		return "access-denied"
	case ViewContent:
		return "content"
	}
	return "unknown"
}

// Guard picks what an admin-only page may show. A denial is only possible
// once the lookup has finished.
func Guard(v Verdict) View {
	switch v.State {
	case Resolving:
		return ViewLoading
	case NoIdentity:
		return ViewAuthRequired
	case Admin:
		return ViewContent
	}
	return ViewAccessDenied
}

type Action string

const (
	ActionSignIn     Action = "sign-in"
	ActionChecking   Action = "checking"
	ActionAdminLinks Action = "admin-links"
	ActionClaimAdmin Action = "claim-admin"
)

type Link struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Panel is the admin login view model.
type Panel struct {
	State         State  `json:"state"`
	Authenticated bool   `json:"authenticated"`
	AuthStatus    string `json:"authStatus"`
	AdminStatus   string `json:"adminStatus"`
	Action        Action `json:"action"`
	Notice        string `json:"notice,omitempty"`
	Links         []Link `json:"links,omitempty"`
}

var adminLinks = []Link{
	{Label: "Manage Products", Path: "/admin/products"},
	{Label: "View Orders", Path: "/admin/orders"},
}

func LoginPanel(v Verdict) Panel {
	p := Panel{
		State:         v.State,
		Authenticated: v.State != NoIdentity,
		AuthStatus:    "Signed In",
	}

	switch v.State {
	case NoIdentity:
		p.AuthStatus = "Signed Out"
		p.AdminStatus = "N/A"
		p.Action = ActionSignIn
	case Resolving:
		p.AdminStatus = "Checking..."
		p.Action = ActionChecking
	case Admin:
		p.AdminStatus = "Admin Confirmed"
		p.Action = ActionAdminLinks
		p.Links = adminLinks
	case NonAdmin:
		p.AdminStatus = "Not an Admin"
		p.Action = ActionClaimAdmin
		if v.LookupFailed() {
			p.Notice = "Unable to confirm admin status"
		}
	}
	return p
}
