package types

// UserResponse is the public user shape; it never carries the password hash.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
