package core

// User is the profile returned by the user endpoints.
type User struct {
	ID          UserID `json:"id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the sign-in response body.
type LoginResult struct {
	Email string `json:"email"`
	JWT   string `json:"jwt"`
	ID    UserID `json:"id"`
}

type Registration struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role,omitempty"`
}

type PasswordReset struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}
