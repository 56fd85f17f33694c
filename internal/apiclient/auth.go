package apiclient

import (
	"context"

	"github.com/itchan-dev/tunetag/shared/api"
	"github.com/itchan-dev/tunetag/shared/domain"
)

// Register creates an account and returns the new user's id.
func (c *APIClient) Register(ctx context.Context, username domain.Username, password domain.Password) (domain.UserId, error) {
	var resp api.UserResponse
	err := c.post(ctx, api.RouteRegister, api.CredentialsRequest{Username: username, Password: password}, &resp)
	return resp.User, err
}

// Login checks credentials and returns the user's id.
func (c *APIClient) Login(ctx context.Context, username domain.Username, password domain.Password) (domain.UserId, error) {
	var resp api.UserResponse
	err := c.post(ctx, api.RouteLogin, api.CredentialsRequest{Username: username, Password: password}, &resp)
	return resp.User, err
}

func (c *APIClient) DeleteUser(ctx context.Context, username domain.Username, password domain.Password) error {
	return c.post(ctx, api.RouteDeleteUser, api.CredentialsRequest{Username: username, Password: password}, nil)
}

func (c *APIClient) ChangePassword(ctx context.Context, username domain.Username, oldPassword, newPassword domain.Password) error {
	data := api.ChangePasswordRequest{Username: username, OldPassword: oldPassword, NewPassword: newPassword}
	return c.post(ctx, api.RouteChangePassword, data, nil)
}

func (c *APIClient) GetUserById(ctx context.Context, userId domain.UserId) (domain.Username, error) {
	var resp api.UsernameResponse
	err := c.post(ctx, api.RouteGetUserById, api.GetUserByIdRequest{UserId: userId}, &resp)
	return resp.Username, err
}
