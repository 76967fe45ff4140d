package models

type User struct {
	ID       int    `json:"id" db:"id" goqu:"skipinsert"`
	Username string `json:"username" db:"username"`
	Password string `json:"-" db:"password"`
}

// UserCreate holds an already hashed password.
type UserCreate struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLogin accepts every credential shape the configured authenticator may
// need: password only, username and password, or email and password.
type AdminLogin struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}
