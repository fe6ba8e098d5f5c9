package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// HasStaffAccess reports whether the role may use the admin console.
func (r Role) HasStaffAccess() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Profile is a customer or staff account record.
type Profile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	CustomerNo string    `json:"customer_no"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
