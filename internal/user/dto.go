package user

// CreateUserDTO carries the fields for onboarding a staff member. The
// password is the initial credential; the user can rotate it through the
// password-reset flow.
type CreateUserDTO struct {
	FirstName    string  `json:"firstName" validate:"required"`
	LastName     string  `json:"lastName" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Department   string  `json:"department" validate:"required,oneof=SALES PRE_SALES"`
	YearlyTarget float64 `json:"yearlyTarget" validate:"min=0"`
	Password     string  `json:"password" validate:"required,min=8"`
}

// UpdateUserDTO uses pointers so absent fields are left untouched.
type UpdateUserDTO struct {
	FirstName    *string  `json:"firstName,omitempty" validate:"omitempty,min=1"`
	LastName     *string  `json:"lastName,omitempty" validate:"omitempty,min=1"`
	Department   *string  `json:"department,omitempty" validate:"omitempty,oneof=SALES PRE_SALES"`
	YearlyTarget *float64 `json:"yearlyTarget,omitempty" validate:"omitempty,min=0"`
	Status       *string  `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}
