package httpapi

import (
	"time"

	"github.com/dmitrijs2005/ponyexpress/internal/server/models"
	"github.com/samber/lo"
)

// -------- requests --------

type registrationForm struct {
	Username string `form:"username" validate:"required"`
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type passwordForm struct {
	OldPassword string `form:"old_password" validate:"required"`
	NewPassword string `form:"new_password" validate:"required"`
}

type updateAccountRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,min=1"`
}

type createChatRequest struct {
	Name    string `json:"name" validate:"required"`
	OwnerID int64  `json:"owner_id" validate:"required"`
}

type updateChatRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1"`
	OwnerID *int64  `json:"owner_id"`
}

type createMessageRequest struct {
	Text      string `json:"text" validate:"required"`
	AccountID int64  `json:"account_id" validate:"required"`
}

type updateMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type membershipRequest struct {
	AccountID int64 `json:"account_id" validate:"required"`
}

// -------- responses --------

type metadata struct {
	Count int `json:"count"`
}

type accountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type registrationResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type accountListResponse struct {
	Metadata metadata          `json:"metadata"`
	Accounts []accountResponse `json:"accounts"`
}

type chatResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}

type chatListResponse struct {
	Metadata metadata       `json:"metadata"`
	Chats    []chatResponse `json:"chats"`
}

type messageResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	AccountID *int64    `json:"account_id"`
	ChatID    int64     `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

type messageListResponse struct {
	Metadata metadata          `json:"metadata"`
	Messages []messageResponse `json:"messages"`
}

type membershipResponse struct {
	ChatID    int64 `json:"chat_id"`
	AccountID int64 `json:"account_id"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// -------- mapping --------

func toAccount(a *models.Account) accountResponse {
	return accountResponse{ID: a.ID, Username: a.Username}
}

func toRegistration(a *models.Account) registrationResponse {
	return registrationResponse{ID: a.ID, Username: a.Username, Email: a.Email}
}

func toAccountList(list []*models.Account) accountListResponse {
	return accountListResponse{
		Metadata: metadata{Count: len(list)},
		Accounts: lo.Map(list, func(a *models.Account, _ int) accountResponse { return toAccount(a) }),
	}
}

func toChat(c *models.Chat) chatResponse {
	return chatResponse{ID: c.ID, Name: c.Name, OwnerID: c.OwnerID}
}

func toChatList(list []*models.Chat) chatListResponse {
	return chatListResponse{
		Metadata: metadata{Count: len(list)},
		Chats:    lo.Map(list, func(c *models.Chat, _ int) chatResponse { return toChat(c) }),
	}
}

func toMessage(m *models.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		Text:      m.Text,
		AccountID: m.AccountID,
		ChatID:    m.ChatID,
		CreatedAt: m.CreatedAt,
	}
}

func toMessageList(list []*models.Message) messageListResponse {
	return messageListResponse{
		Metadata: metadata{Count: len(list)},
		Messages: lo.Map(list, func(m *models.Message, _ int) messageResponse { return toMessage(m) }),
	}
}
