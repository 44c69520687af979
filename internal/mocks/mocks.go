package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"trueque-chat-service/internal/models"
	"trueque-chat-service/internal/repositories"
	"trueque-chat-service/internal/service"
)

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) CreateOrGetChat(ctx context.Context, userID int, otherID int) (models.Chat, error) {
	args := m.Called(ctx, userID, otherID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) IsMember(ctx context.Context, chatID int, userID int) (bool, error) {
	args := m.Called(ctx, chatID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *ChatRepositoryMock) ListChats(ctx context.Context, userID int) ([]models.ChatSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.ChatSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatSummary)
	}
	return list, args.Error(1)
}

func (m *ChatRepositoryMock) DeleteChat(ctx context.Context, chatID int) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, chatID int, senderID int, content *string, imagePath *string) (models.Message, error) {
	args := m.Called(ctx, chatID, senderID, content, imagePath)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	args := m.Called(ctx, chatID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteMessage(ctx context.Context, messageID int) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkMessagesRead(ctx context.Context, chatID int, readerID int) ([]int, error) {
	args := m.Called(ctx, chatID, readerID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) BulkUsers(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) MessageSent(chatID int, actorID int, msg models.Message) {
	m.Called(chatID, actorID, msg)
}

func (m *NotifierMock) MessagesRead(chatID int, readerID int, messageIDs []int) {
	m.Called(chatID, readerID, messageIDs)
}

type MediaResolverMock struct {
	mock.Mock
}

func (m *MediaResolverMock) ResolveURL(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

type ChatServiceMock struct {
	mock.Mock
}

func (m *ChatServiceMock) StartOrGetChat(ctx context.Context, requesterID int, targetID int) (service.ChatInfo, error) {
	args := m.Called(ctx, requesterID, targetID)
	var info service.ChatInfo
	if val := args.Get(0); val != nil {
		info = val.(service.ChatInfo)
	}
	return info, args.Error(1)
}

func (m *ChatServiceMock) SendMessage(ctx context.Context, requesterID int, chatID int, content *string, imagePath *string) (models.Message, error) {
	args := m.Called(ctx, requesterID, chatID, content, imagePath)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *ChatServiceMock) FetchMessages(ctx context.Context, requesterID int, chatID int) ([]models.Message, error) {
	args := m.Called(ctx, requesterID, chatID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *ChatServiceMock) FetchChats(ctx context.Context, requesterID int) ([]models.ChatSummary, error) {
	args := m.Called(ctx, requesterID)
	var chats []models.ChatSummary
	if val := args.Get(0); val != nil {
		chats = val.([]models.ChatSummary)
	}
	return chats, args.Error(1)
}

func (m *ChatServiceMock) MarkRead(ctx context.Context, requesterID int, chatID int) ([]int, error) {
	args := m.Called(ctx, requesterID, chatID)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

func (m *ChatServiceMock) DeleteMessage(ctx context.Context, requesterID int, messageID int) error {
	args := m.Called(ctx, requesterID, messageID)
	return args.Error(0)
}

func (m *ChatServiceMock) DeleteChat(ctx context.Context, requesterID int, chatID int) error {
	args := m.Called(ctx, requesterID, chatID)
	return args.Error(0)
}

var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ service.Notifier = (*NotifierMock)(nil)
var _ service.MediaResolver = (*MediaResolverMock)(nil)
var _ service.ChatService = (*ChatServiceMock)(nil)
