package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"notas-client/internal/entity"
)

// RestGateway implements IAuthGateway against a GoTrue-style auth API
// ({base}/auth/v1/...).
type RestGateway struct {
	BaseURL string
	AnonKey string
	HTTP    *http.Client
}

var _ IAuthGateway = &RestGateway{}

func NewRestGateway(baseURL, anonKey string, timeout time.Duration) *RestGateway {
	return &RestGateway{
		BaseURL: baseURL,
		AnonKey: anonKey,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		Id    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (g *RestGateway) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	data, status, err := g.post(ctx, "/auth/v1/token?grant_type=password", credentialsPayload{Email: email, Password: password}, "")
	if err != nil {
		return nil, &AuthError{Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return nil, authFailure(status, data)
	}
	return g.sessionFromToken(data, status)
}

func (g *RestGateway) SignUp(ctx context.Context, email, password string) error {
	data, status, err := g.post(ctx, "/auth/v1/signup", credentialsPayload{Email: email, Password: password}, "")
	if err != nil {
		return &AuthError{Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return authFailure(status, data)
	}
	return nil
}

func (g *RestGateway) SignOut(ctx context.Context, accessToken string) error {
	data, status, err := g.post(ctx, "/auth/v1/logout", nil, accessToken)
	if err != nil {
		return &AuthError{Message: err.Error()}
	}
	// GoTrue answers 204; an already-revoked token is not worth surfacing.
	if (status < 200 || status >= 300) && status != http.StatusUnauthorized {
		return authFailure(status, data)
	}
	return nil
}

func (g *RestGateway) RefreshSession(ctx context.Context, refreshToken string) (*entity.Session, error) {
	data, status, err := g.post(ctx, "/auth/v1/token?grant_type=refresh_token", refreshPayload{RefreshToken: refreshToken}, "")
	if err != nil {
		return nil, &AuthError{Message: err.Error()}
	}
	if status < 200 || status >= 300 {
		return nil, authFailure(status, data)
	}
	return g.sessionFromToken(data, status)
}

func (g *RestGateway) sessionFromToken(data []byte, status int) (*entity.Session, error) {
	var token tokenResponse
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, &AuthError{StatusCode: status, Message: "malformed token payload: " + err.Error()}
	}
	if token.AccessToken == "" {
		return nil, &AuthError{StatusCode: status, Message: "token payload missing access_token"}
	}

	session := &entity.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}

	if userId, err := uuid.Parse(token.User.Id); err == nil {
		session.User = entity.User{Id: userId, Email: token.User.Email}
	}

	// The access token is a JWT; its claims are authoritative for identity
	// and expiry. Signature verification belongs to the server.
	if claims, err := ParseClaims(token.AccessToken); err == nil {
		if claims.Subject != "" {
			if userId, err := uuid.Parse(claims.Subject); err == nil {
				session.User.Id = userId
			}
		}
		if claims.Email != "" && session.User.Email == "" {
			session.User.Email = claims.Email
		}
		if claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time
		}
	}

	return session, nil
}

// TokenClaims is the subset of access-token claims the client reads.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func ParseClaims(accessToken string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (g *RestGateway) post(ctx context.Context, path string, payload interface{}, bearer string) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+path, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("apikey", g.AnonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer == "" {
		bearer = g.AnonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := g.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

func authFailure(status int, body []byte) *AuthError {
	// GoTrue reports errors under several keys depending on the endpoint.
	var payload struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, msg := range []string{payload.ErrorDescription, payload.Msg, payload.Message} {
			if msg != "" {
				return &AuthError{StatusCode: status, Message: msg}
			}
		}
	}
	return &AuthError{StatusCode: status, Message: fmt.Sprintf("authentication failed (status %d)", status)}
}
