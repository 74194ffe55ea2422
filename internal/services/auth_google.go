package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"goldlegacy/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// googleConfig holds the OAuth client credentials and endpoints. Endpoints
// are fields so tests can point them at a local server.
type googleConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserinfoURL  string
	httpClient   *http.Client
}

func defaultGoogleConfig() googleConfig {
	return googleConfig{
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL:    "https://oauth2.googleapis.com/token",
		UserinfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ConfigureGoogle sets the OAuth client credentials. Without them the Google
// endpoints respond as unconfigured.
func (s *AuthService) ConfigureGoogle(clientID, clientSecret string) {
	s.google.ClientID = clientID
	s.google.ClientSecret = clientSecret
}

// GoogleConfigured reports whether OAuth sign-in is enabled.
func (s *AuthService) GoogleConfigured() bool {
	return s.google.ClientID != "" && s.google.ClientSecret != ""
}

// GoogleAuthURL builds the consent-screen URL for the given CSRF state.
func (s *AuthService) GoogleAuthURL(state, redirectURI string) string {
	q := url.Values{}
	q.Set("client_id", s.google.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	q.Set("state", state)
	return s.google.AuthURL + "?" + q.Encode()
}

type googleUserinfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleCallback exchanges the authorization code, fetches the Google
// profile, and finds or creates the matching account. OAuth-created accounts
// get a random password so the credential login path stays closed for them.
func (s *AuthService) GoogleCallback(code, redirectURI string) (*models.User, string, error) {
	if !s.GoogleConfigured() {
		return nil, "", ErrGatewayUnavailable
	}

	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", s.google.ClientID)
	form.Set("client_secret", s.google.ClientSecret)
	form.Set("redirect_uri", redirectURI)
	form.Set("grant_type", "authorization_code")

	tokenResp, err := s.google.httpClient.PostForm(s.google.TokenURL, form)
	if err != nil {
		return nil, "", fmt.Errorf("google token exchange: %w", err)
	}
	defer tokenResp.Body.Close()
	if tokenResp.StatusCode < 200 || tokenResp.StatusCode > 299 {
		return nil, "", fmt.Errorf("google token exchange: status %d", tokenResp.StatusCode)
	}

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(tokenResp.Body).Decode(&tokens); err != nil {
		return nil, "", fmt.Errorf("google token exchange: decode: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, "", fmt.Errorf("google token exchange: empty access token")
	}

	infoReq, err := http.NewRequest(http.MethodGet, s.google.UserinfoURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("google userinfo: %w", err)
	}
	infoReq.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

	infoResp, err := s.google.httpClient.Do(infoReq)
	if err != nil {
		return nil, "", fmt.Errorf("google userinfo: %w", err)
	}
	defer infoResp.Body.Close()
	if infoResp.StatusCode < 200 || infoResp.StatusCode > 299 {
		return nil, "", fmt.Errorf("google userinfo: status %d", infoResp.StatusCode)
	}

	var info googleUserinfo
	if err := json.NewDecoder(infoResp.Body).Decode(&info); err != nil {
		return nil, "", fmt.Errorf("google userinfo: decode: %w", err)
	}
	if info.Email == "" {
		return nil, "", fmt.Errorf("google userinfo: no email in profile")
	}

	email := strings.ToLower(strings.TrimSpace(info.Email))
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if !isNotFound(err) {
			return nil, "", err
		}
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, "", fmt.Errorf("failed to hash placeholder password: %w", hashErr)
		}
		user = &models.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleUser,
		}
		if name := strings.TrimSpace(info.Name); name != "" {
			user.Name = &name
		}
		if err := s.userRepo.Create(user); err != nil {
			return nil, "", fmt.Errorf("failed to create user from google profile: %w", err)
		}
	}

	token, err := s.IssueSession(user)
	if err != nil {
		return nil, "", err
	}

	s.audit.Record("LOGIN_GOOGLE", &user.ID, "user", &user.ID, map[string]any{"email": user.Email})

	return user, token, nil
}
