package admin

// InviteDTO requests an invitation for a new admin. Role defaults to ADMIN
// when omitted.
type InviteDTO struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN SUPER_ADMIN"`
}

type AcceptInviteDTO struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// InviteResponse echoes the pending invitation. The token is included so the
// operator can hand it to the invitee; there is no mail delivery here.
type InviteResponse struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}
