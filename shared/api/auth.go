package api

import "github.com/itchan-dev/tunetag/shared/domain"

const (
	RouteRegister       = "/UserAuthentication/register"
	RouteLogin          = "/UserAuthentication/login"
	RouteDeleteUser     = "/UserAuthentication/deleteUser"
	RouteChangePassword = "/UserAuthentication/changePassword"
	RouteGetUserById    = "/UserAuthentication/_getUserById"
)

// Request DTOs

type CredentialsRequest struct {
	Username domain.Username `json:"username" validate:"required"`
	Password domain.Password `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	Username    domain.Username `json:"username" validate:"required"`
	OldPassword domain.Password `json:"oldPassword" validate:"required"`
	NewPassword domain.Password `json:"newPassword" validate:"required"`
}

type GetUserByIdRequest struct {
	UserId domain.UserId `json:"userId" validate:"required"`
}

// Response DTOs

// UserResponse answers register and login.
type UserResponse struct {
	User domain.UserId `json:"user"`
}

type UsernameResponse struct {
	Username domain.Username `json:"username"`
}
