package apiclient

import (
	"context"
	"net/http"

	"github.com/MarkoPoloResearchLab/storefront/pkg/storefront"
)

// AuthAPI covers login, registration and the "who am I" endpoint.
type AuthAPI struct {
	client *Client
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and the user record.
func (api AuthAPI) Login(ctx context.Context, email string, password string) (storefront.AuthResult, error) {
	var result storefront.AuthResult
	_, err := api.client.do(ctx, call{
		operation: "auth.login",
		method:    http.MethodPost,
		path:      "/api/auth/login",
		body:      loginRequest{Email: email, Password: password},
	}, &result)
	return result, err
}

// Register creates an account and returns its token.
func (api AuthAPI) Register(ctx context.Context, input storefront.RegisterInput) (storefront.AuthResult, error) {
	var result storefront.AuthResult
	_, err := api.client.do(ctx, call{
		operation: "auth.register",
		method:    http.MethodPost,
		path:      "/api/auth/register",
		body:      input,
	}, &result)
	return result, err
}

// Me validates the current token and returns its user.
func (api AuthAPI) Me(ctx context.Context) (storefront.User, error) {
	var user storefront.User
	_, err := api.client.do(ctx, call{
		operation: "auth.me",
		method:    http.MethodGet,
		path:      "/api/auth/me",
	}, &user)
	return user, err
}

// UsersAPI updates the caller's own account.
type UsersAPI struct {
	client *Client
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (api UsersAPI) UpdateProfile(ctx context.Context, input storefront.ProfileInput) (storefront.User, error) {
	var user storefront.User
	_, err := api.client.do(ctx, call{
		operation: "users.update_profile",
		method:    http.MethodPut,
		path:      "/api/users/profile",
		body:      input,
	}, &user)
	return user, err
}

func (api UsersAPI) ChangePassword(ctx context.Context, oldPassword string, newPassword string) error {
	_, err := api.client.do(ctx, call{
		operation: "users.change_password",
		method:    http.MethodPut,
		path:      "/api/users/change-password",
		body:      changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword},
	}, nil)
	return err
}

// AddressesAPI manages saved delivery addresses.
type AddressesAPI struct {
	client *Client
}

func (api AddressesAPI) List(ctx context.Context) ([]storefront.Address, error) {
	addresses := []storefront.Address{}
	_, err := api.client.do(ctx, call{
		operation: "addresses.list",
		method:    http.MethodGet,
		path:      "/api/addresses",
	}, &addresses)
	return addresses, err
}

func (api AddressesAPI) Add(ctx context.Context, input storefront.AddressInput) (storefront.Address, error) {
	var address storefront.Address
	_, err := api.client.do(ctx, call{
		operation: "addresses.add",
		method:    http.MethodPost,
		path:      "/api/addresses",
		body:      input,
	}, &address)
	return address, err
}

func (api AddressesAPI) Delete(ctx context.Context, addressID string) error {
	const operation = "addresses.delete"
	id, err := storefront.NewIdentifier(addressID)
	if err != nil {
		return validationFailure(operation, err)
	}
	_, err = api.client.do(ctx, call{
		operation: operation,
		method:    http.MethodDelete,
		path:      "/api/addresses/" + pathID(id),
	}, nil)
	return err
}

// SetDefault marks one address as the default and clears the flag on the others.
func (api AddressesAPI) SetDefault(ctx context.Context, addressID string) error {
	const operation = "addresses.set_default"
	id, err := storefront.NewIdentifier(addressID)
	if err != nil {
		return validationFailure(operation, err)
	}
	_, err = api.client.do(ctx, call{
		operation: operation,
		method:    http.MethodPut,
		path:      "/api/addresses/" + pathID(id) + "/default",
	}, nil)
	return err
}
