package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/apiclient/internal/constants"
	"github.com/fivetwenty-io/apiclient/pkg/apiclient"
)

// UsersService manages platform users.
type UsersService struct {
	client *apiclient.Client
}

func userPath(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", constants.ErrUserIDRequired
	}

	return "/users/" + url.PathEscape(id), nil
}

// List returns one page of users.
func (s *UsersService) List(ctx context.Context, params ListParams) (*UserList, error) {
	env, err := apiclient.For[UserList](s.client).Get(ctx, "/users", params.ToValues(), nil)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return &env.Data, nil
}

// Get returns a single user.
func (s *UsersService) Get(ctx context.Context, id string) (*User, error) {
	path, err := userPath(id)
	if err != nil {
		return nil, err
	}

	env, err := apiclient.For[User](s.client).Get(ctx, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	return &env.Data, nil
}

// Create creates a user. A rejected field comes back as a validation error
// whose FieldErrors name the field.
func (s *UsersService) Create(ctx context.Context, request *CreateUserRequest) (*User, error) {
	env, err := apiclient.For[User](s.client).Post(ctx, "/users", request, nil)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &env.Data, nil
}

// Update changes the given fields of a user.
func (s *UsersService) Update(ctx context.Context, id string, request *UpdateUserRequest) (*User, error) {
	path, err := userPath(id)
	if err != nil {
		return nil, err
	}

	env, err := apiclient.For[User](s.client).Patch(ctx, path, request, nil)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return &env.Data, nil
}

// Delete removes a user.
func (s *UsersService) Delete(ctx context.Context, id string) error {
	path, err := userPath(id)
	if err != nil {
		return err
	}

	_, err = apiclient.For[json.RawMessage](s.client).Delete(ctx, path, nil, nil)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}

// UploadAvatar replaces a user's avatar.
func (s *UsersService) UploadAvatar(ctx context.Context, id, fileName string, content io.Reader) (*User, error) {
	path, err := userPath(id)
	if err != nil {
		return nil, err
	}

	upload := &apiclient.Upload{
		FieldName: "avatar",
		FileName:  fileName,
		Content:   content,
		Fields:    map[string]interface{}{"userId": id},
	}

	env, err := apiclient.For[User](s.client).UploadFileWithPut(ctx, path+"/avatar", upload, nil)
	if err != nil {
		return nil, fmt.Errorf("uploading avatar: %w", err)
	}

	return &env.Data, nil
}

// DashboardService reads dashboard data.
type DashboardService struct {
	client *apiclient.Client
}

// Summary returns the dashboard summary.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	env, err := apiclient.For[DashboardSummary](s.client).Get(ctx, "/dashboard/summary", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("getting dashboard summary: %w", err)
	}

	return &env.Data, nil
}
