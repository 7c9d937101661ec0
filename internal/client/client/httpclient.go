package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/ponyexpress/internal/client/models"
	"github.com/dmitrijs2005/ponyexpress/internal/common"
)

type HTTPClient struct {
	baseURL     string
	http        *http.Client
	accessToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (s *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+s.accessToken)
	}
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out when out is not nil.
func (s *HTTPClient) do(req *http.Request, out any) error {
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Code, apiErr.Message = body.Error, body.Message
		} else {
			apiErr.Code, apiErr.Message = "http_error", resp.Status
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *HTTPClient) sendJSON(ctx context.Context, method, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := s.newRequest(ctx, method, path, bytes.NewReader(b), "application/json")
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *HTTPClient) sendForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := s.newRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := s.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *HTTPClient) Ping(ctx context.Context) error {
	return s.get(ctx, "/status", nil)
}

func (s *HTTPClient) Register(ctx context.Context, username, email, password string) (*models.Account, error) {
	form := url.Values{"username": {username}, "email": {email}, "password": {password}}

	var account models.Account
	if err := s.sendForm(ctx, "/auth/registration", form, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *HTTPClient) Login(ctx context.Context, username, password string) error {
	form := url.Values{"username": {username}, "password": {password}}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := s.sendForm(ctx, "/auth/token", form, &resp); err != nil {
		return err
	}

	s.accessToken = resp.AccessToken
	return nil
}

// Logout forgets the token. Bearer sessions are stateless, so there is
// nothing to tell the server.
func (s *HTTPClient) Logout() {
	s.accessToken = ""
}

func (s *HTTPClient) Me(ctx context.Context) (*models.Account, error) {
	var account models.Account
	if err := s.get(ctx, "/accounts/me", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *HTTPClient) ListChats(ctx context.Context) ([]models.Chat, error) {
	var resp struct {
		Chats []models.Chat `json:"chats"`
	}
	if err := s.get(ctx, "/chats", &resp); err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

func (s *HTTPClient) CreateChat(ctx context.Context, name string, ownerID int64) (*models.Chat, error) {
	in := map[string]any{"name": name, "owner_id": ownerID}

	var chat models.Chat
	if err := s.sendJSON(ctx, http.MethodPost, "/chats", in, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (s *HTTPClient) ListMessages(ctx context.Context, chatID int64) ([]models.Message, error) {
	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	if err := s.get(ctx, fmt.Sprintf("/chats/%d/messages", chatID), &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (s *HTTPClient) SendMessage(ctx context.Context, chatID int64, text string, accountID int64) (*models.Message, error) {
	in := map[string]any{"text": text, "account_id": accountID}

	var msg models.Message
	if err := s.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/chats/%d/messages", chatID), in, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *HTTPClient) Join(ctx context.Context, chatID, accountID int64) (*models.Membership, error) {
	in := map[string]any{"account_id": accountID}

	var m models.Membership
	if err := s.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/chats/%d/accounts", chatID), in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
