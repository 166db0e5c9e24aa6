package actor

// Role names carried in token claims. RoleHRAdmin grants the approver
// capability on requests.
const (
	RoleEmployee = "EMPLOYEE"
	RoleHRAdmin  = "HR_ADMIN"
)

// Actor identifies who is performing an operation. It is passed explicitly
// into every service call; services never read identity from ambient state.
// An empty EmployeeID means the caller is not linked to an employee record.
type Actor struct {
	EmployeeID string
	CompanyID  string
	Roles      []string
}

func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsLinked reports whether the actor resolves to an employee record.
func (a Actor) IsLinked() bool {
	return a.EmployeeID != "" && a.CompanyID != ""
}
