package domain

type Role string

const (
	RoleManager Role = "manager"
	RoleWaiter  Role = "waiter"
	RoleKitchen Role = "kitchen"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleManager, RoleWaiter, RoleKitchen:
		return true
	}
	return false
}

// User is a staff account. Role decides which dashboard the user lands
// on after login.
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (u User) EntityID() string { return u.ID }

// HomeRoute is the dashboard path for a role; unknown roles go back to
// the login screen.
func HomeRoute(r Role) string {
	switch r {
	case RoleManager:
		return "/manager"
	case RoleWaiter:
		return "/waiter"
	case RoleKitchen:
		return "/kitchen"
	default:
		return "/login"
	}
}
