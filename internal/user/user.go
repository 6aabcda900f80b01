package user

import (
	"strings"
	"time"

	"travelagency/internal/authz"
	"travelagency/internal/listing"
)

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone,omitempty"`
	Role         authz.Role `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var Fields = listing.Fields[User]{
	Status: func(u User) string { return string(u.Role) },
	Date:   func(u User) time.Time { return u.CreatedAt },
	Text:   func(u User) []string { return []string{u.Name, u.Email, u.Phone} },
}

var SortKeys = listing.Keys[User]{
	"createdat": func(a, b User) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"name":      func(a, b User) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	"email":     func(a, b User) int { return strings.Compare(a.Email, b.Email) },
}
