package models

import (
	"encoding/json"
	"strings"
)

// Roles множество ролей пользователя.
type Roles []Role

// Has проверяет наличие роли без учёта регистра и префикса ROLE_.
func (r Roles) Has(role Role) bool {
	want := normalizeRole(string(role))
	for _, have := range r {
		if normalizeRole(string(have)) == want {
			return true
		}
	}
	return false
}

// HasAny true, если есть хотя бы одна из ролей.
func (r Roles) HasAny(roles ...Role) bool {
	for _, role := range roles {
		if r.Has(role) {
			return true
		}
	}
	return false
}

func normalizeRole(raw string) Role {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	return Role(strings.TrimPrefix(raw, "ROLE_"))
}

// User описывает пользователя, полученного при входе.
// API присылает роль то как "role", то как "roles", оба варианта сводятся к Roles.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Roles     Roles  `json:"roles"`
}

// HasRole проверяет роль пользователя.
func (u *User) HasRole(role Role) bool {
	if u == nil {
		return false
	}
	return u.Roles.Has(role)
}

// DisplayName имя для приветствия.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		Role     json.RawMessage `json:"role"`
		RolesRaw json.RawMessage `json:"roles"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = User(raw.plain)
	u.Roles = nil

	seen := make(map[Role]struct{})
	add := func(values ...string) {
		for _, v := range values {
			role := normalizeRole(v)
			if role == "" {
				continue
			}
			if _, ok := seen[role]; ok {
				continue
			}
			seen[role] = struct{}{}
			u.Roles = append(u.Roles, role)
		}
	}

	for _, field := range []json.RawMessage{raw.Role, raw.RolesRaw} {
		if len(field) == 0 || string(field) == "null" {
			continue
		}
		var single string
		if err := json.Unmarshal(field, &single); err == nil {
			add(single)
			continue
		}
		var many []string
		if err := json.Unmarshal(field, &many); err != nil {
			return err
		}
		add(many...)
	}
	return nil
}

// LoginRequest тело запроса входа.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse ответ на вход. Токен приходит в accessToken либо в token.
type LoginResponse struct {
	AccessToken  string `json:"accessToken,omitempty"`
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
	TokenType    string `json:"tokenType,omitempty"`
	User         *User  `json:"user"`
}

// BearerToken возвращает токен независимо от имени поля.
func (r *LoginResponse) BearerToken() string {
	if r == nil {
		return ""
	}
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// RegisterRequest тело запроса регистрации.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      Role   `json:"role" validate:"required,oneof=CLIENT FREELANCER"`
}
