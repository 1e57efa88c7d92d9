package services

import (
	"net/url"
	"strconv"
	"time"
)

// User is a platform user as returned by the users and auth backends.
type User struct {
	ID        string     `json:"id"                  yaml:"id"`
	Name      string     `json:"name"                yaml:"name"`
	Email     string     `json:"email"               yaml:"email"`
	Role      string     `json:"role,omitempty"      yaml:"role,omitempty"`
	Status    string     `json:"status,omitempty"    yaml:"status,omitempty"`
	Avatar    string     `json:"avatar,omitempty"    yaml:"avatar,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updated_at,omitempty"`
}

// Pagination describes one page of a list.
type Pagination struct {
	Page       int `json:"page"       yaml:"page"`
	Limit      int `json:"limit"      yaml:"limit"`
	Total      int `json:"total"      yaml:"total"`
	TotalPages int `json:"totalPages" yaml:"total_pages"`
}

// UserList is the data of a users list response.
type UserList struct {
	Users      []User     `json:"users"      yaml:"users"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// ListParams filters and pages a users list. Zero values are omitted.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// ToValues converts params to query values.
func (p ListParams) ToValues() url.Values {
	values := url.Values{}

	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}

	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}

	if p.Search != "" {
		values.Set("search", p.Search)
	}

	return values
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserRequest is the body of PATCH /users/{id}. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// LoginRequest is the body of both login routes.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	Token        string `json:"token"                  yaml:"token"`
	RefreshToken string `json:"refreshToken,omitempty" yaml:"refresh_token,omitempty"`
	User         *User  `json:"user,omitempty"         yaml:"user,omitempty"`
}

// Activity is one entry of the dashboard activity feed.
type Activity struct {
	ID        string     `json:"id"                  yaml:"id"`
	Type      string     `json:"type"                yaml:"type"`
	Message   string     `json:"message"             yaml:"message"`
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"created_at,omitempty"`
}

// DashboardSummary is the data of GET /dashboard/summary.
type DashboardSummary struct {
	TotalUsers     int        `json:"totalUsers"               yaml:"total_users"`
	ActiveUsers    int        `json:"activeUsers"              yaml:"active_users"`
	NewSignups     int        `json:"newSignups"               yaml:"new_signups"`
	Revenue        float64    `json:"revenue"                  yaml:"revenue"`
	RecentActivity []Activity `json:"recentActivity,omitempty" yaml:"recent_activity,omitempty"`
}

// AdminStats is the data of GET /admin/stats.
type AdminStats struct {
	TotalUsers       int `json:"totalUsers"       yaml:"total_users"`
	TotalAdmins      int `json:"totalAdmins"      yaml:"total_admins"`
	PendingApprovals int `json:"pendingApprovals" yaml:"pending_approvals"`
	ActiveSessions   int `json:"activeSessions"   yaml:"active_sessions"`
}
