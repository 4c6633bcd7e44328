package api

import (
	"context"

	"github.com/machinebox/graphql"

	"github.com/DarkZangetsu/medcare/internal/models"
)

const userFields = `
	id
	phone
	name
	age
	pathologies
`

const loginMutation = `mutation Login($phone: String!, $password: String!) {
	login(phone: $phone, password: $password) {
		token
		user {` + userFields + `}
	}
}`

const registerMutation = `mutation Register($phone: String!, $password: String!, $name: String, $age: Int) {
	register(phone: $phone, password: $password, name: $name, age: $age) {
		success
		message
		token
		user {` + userFields + `}
	}
}`

const updateProfileMutation = `mutation UpdateProfile($input: ProfileInput!) {
	updateProfile(input: $input) {
		patient {` + userFields + `}
	}
}`

// RegisterInput is the payload of a new patient account.
type RegisterInput struct {
	Phone    string
	Password string
	Name     string
	Age      *int
}

// ProfileInput carries the profile fields to change. Nil means unchanged.
type ProfileInput struct {
	Name        *string  `json:"name,omitempty"`
	Age         *int     `json:"age,omitempty"`
	Pathologies []string `json:"pathologies,omitempty"`
}

func (c *Client) Login(ctx context.Context, phone, password string) (string, models.User, error) {
	req := graphql.NewRequest(loginMutation)
	req.Var("phone", phone)
	req.Var("password", password)

	var resp struct {
		Login struct {
			Token string       `json:"token"`
			User  *models.User `json:"user"`
		} `json:"login"`
	}
	if err := c.run(ctx, "login", req, &resp); err != nil {
		return "", models.User{}, err
	}
	if resp.Login.Token == "" || resp.Login.User == nil {
		return "", models.User{}, remoteFailure("login", "invalid phone number or password")
	}
	return resp.Login.Token, *resp.Login.User, nil
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (string, models.User, error) {
	req := graphql.NewRequest(registerMutation)
	req.Var("phone", in.Phone)
	req.Var("password", in.Password)
	req.Var("name", nullable(in.Name))
	if in.Age != nil {
		req.Var("age", *in.Age)
	}

	var resp struct {
		Register struct {
			Success bool         `json:"success"`
			Message string       `json:"message"`
			Token   string       `json:"token"`
			User    *models.User `json:"user"`
		} `json:"register"`
	}
	if err := c.run(ctx, "register", req, &resp); err != nil {
		return "", models.User{}, err
	}
	if !resp.Register.Success || resp.Register.User == nil {
		msg := resp.Register.Message
		if msg == "" {
			msg = "registration refused"
		}
		return "", models.User{}, remoteFailure("register", msg)
	}
	return resp.Register.Token, *resp.Register.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileInput) (models.User, error) {
	req := graphql.NewRequest(updateProfileMutation)
	req.Var("input", in)

	var resp struct {
		UpdateProfile struct {
			Patient *models.User `json:"patient"`
		} `json:"updateProfile"`
	}
	if err := c.run(ctx, "update profile", req, &resp); err != nil {
		return models.User{}, err
	}
	if resp.UpdateProfile.Patient == nil {
		return models.User{}, remoteFailure("update profile", "server returned no profile")
	}
	return *resp.UpdateProfile.Patient, nil
}
