package domain

import (
	"fmt"
	"strings"
	"time"
)

// UserRole — закрытое множество ролей.
type UserRole string

const (
	RoleAdmin         UserRole = "Admin"
	RoleHRTravelAdmin UserRole = "HRTravelAdmin"
	RoleEmployee      UserRole = "Employee"
	RoleManager       UserRole = "Manager"
)

// ParseUserRole разбирает роль на границе системы (JWT-клеймы, тело запроса).
func ParseUserRole(s string) (UserRole, error) {
	for _, r := range []UserRole{RoleAdmin, RoleHRTravelAdmin, RoleEmployee, RoleManager} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("Invalid role %q", s))
}

type User struct {
	ID           string   `json:"id"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"` // никогда не отдаем наружу
	EmployeeCode string   `json:"employee_code"`
	Department   string   `json:"department"`
	Role         UserRole `json:"role"`

	ManagerName *string `json:"manager_name,omitempty"`
	ManagerID   *string `json:"manager_id,omitempty"`

	CreatedDate time.Time `json:"created_date"`
	IsActive    bool      `json:"is_active"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
