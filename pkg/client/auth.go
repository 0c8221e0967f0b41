package client

import (
	"context"
	"fmt"
	"net/http"
)

type AuthClient struct {
	httpClient *HttpClient
}

func NewAuthClient(httpClient *HttpClient) *AuthClient {
	return &AuthClient{
		httpClient: httpClient,
	}
}

// Login authenticates and stores the returned token on the underlying
// HttpClient so that later calls are authorized.
func (c *AuthClient) Login(ctx context.Context, email, password string) error {
	resp, err := c.httpClient.POST(ctx, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed (%d): %s", resp.StatusCode, GetErrorMessage(resp))
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := decodeData(resp, &login); err != nil {
		return err
	}
	if login.Token == "" {
		return fmt.Errorf("login response did not include a token")
	}
	c.httpClient.SetToken(login.Token)
	return nil
}
