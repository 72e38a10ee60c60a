package customer

type ContactDTO struct {
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}

type CreateCustomerDTO struct {
	Name     string       `json:"name" validate:"required"`
	Contacts []ContactDTO `json:"contacts,omitempty" validate:"omitempty,dive"`
}

type UpdateCustomerDTO struct {
	Name string `json:"name" validate:"required"`
}

// AddContactsDTO appends a batch of contacts to an existing customer.
type AddContactsDTO struct {
	Contacts []ContactDTO `json:"contacts" validate:"required,min=1,dive"`
}

// UpdateContactDTO uses pointers so absent fields are left untouched.
type UpdateContactDTO struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Role  *string `json:"role,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty"`
}
