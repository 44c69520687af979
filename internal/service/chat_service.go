package service

import (
	"context"
	"errors"
	"log"

	"trueque-chat-service/internal/models"
	"trueque-chat-service/internal/observability"
	"trueque-chat-service/internal/repositories"
)

// Notifier delivers realtime events to chat members' live sessions, skipping
// the acting user. Delivery is best-effort and must never fail the caller.
type Notifier interface {
	MessageSent(chatID int, actorID int, msg models.Message)
	MessagesRead(chatID int, readerID int, messageIDs []int)
}

// MediaResolver turns an opaque stored image path into a client-resolvable URL.
type MediaResolver interface {
	ResolveURL(ctx context.Context, path string) (string, error)
}

// ChatInfo is the start/get-chat response: the chat id plus both members'
// public identities.
type ChatInfo struct {
	ChatID int           `json:"chat_id"`
	Users  []models.User `json:"users"`
}

// ChatService composes the chat registry, message store, read-receipt
// tracking and realtime notification behind membership checks. The requester
// id is passed explicitly into every call; there is no ambient session state.
type ChatService interface {
	StartOrGetChat(ctx context.Context, requesterID int, targetID int) (ChatInfo, error)
	SendMessage(ctx context.Context, requesterID int, chatID int, content *string, imagePath *string) (models.Message, error)
	FetchMessages(ctx context.Context, requesterID int, chatID int) ([]models.Message, error)
	FetchChats(ctx context.Context, requesterID int) ([]models.ChatSummary, error)
	MarkRead(ctx context.Context, requesterID int, chatID int) ([]int, error)
	DeleteMessage(ctx context.Context, requesterID int, messageID int) error
	DeleteChat(ctx context.Context, requesterID int, chatID int) error
}

type chatService struct {
	chats    repositories.ChatRepository
	messages repositories.MessageRepository
	users    repositories.UserRepository
	notifier Notifier
	media    MediaResolver
}

// NewChatService wires the service. notifier and media may be nil (no live
// delivery / raw paths), which the service treats as no-ops.
func NewChatService(
	chats repositories.ChatRepository,
	messages repositories.MessageRepository,
	users repositories.UserRepository,
	notifier Notifier,
	media MediaResolver,
) ChatService {
	return &chatService{
		chats:    chats,
		messages: messages,
		users:    users,
		notifier: notifier,
		media:    media,
	}
}

// requireMembership loads the chat and verifies the user belongs to it.
// Every per-chat operation goes through here before touching data.
func (s *chatService) requireMembership(ctx context.Context, chatID int, userID int) (models.Chat, error) {
	chat, err := s.chats.GetChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			return models.Chat{}, notFound("chat not found")
		}
		return models.Chat{}, internal("load chat", err)
	}
	if !chat.HasMember(userID) {
		return models.Chat{}, forbidden("not a chat member")
	}
	return chat, nil
}

func (s *chatService) StartOrGetChat(ctx context.Context, requesterID int, targetID int) (ChatInfo, error) {
	if requesterID == targetID {
		return ChatInfo{}, validation("cannot start a chat with yourself")
	}

	if _, err := s.users.GetUser(ctx, targetID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ChatInfo{}, notFound("user not found")
		}
		return ChatInfo{}, internal("load user", err)
	}

	chat, err := s.chats.CreateOrGetChat(ctx, requesterID, targetID)
	if err != nil {
		return ChatInfo{}, internal("create chat", err)
	}

	users, err := s.users.BulkUsers(ctx, chat.Members())
	if err != nil {
		return ChatInfo{}, internal("load chat members", err)
	}
	return ChatInfo{ChatID: chat.ID, Users: users}, nil
}

func (s *chatService) SendMessage(ctx context.Context, requesterID int, chatID int, content *string, imagePath *string) (models.Message, error) {
	if isBlank(content) && isBlank(imagePath) {
		return models.Message{}, validation("message needs content or an image")
	}

	if _, err := s.requireMembership(ctx, chatID, requesterID); err != nil {
		return models.Message{}, err
	}

	author, err := s.users.GetUser(ctx, requesterID)
	if err != nil {
		return models.Message{}, internal("load author", err)
	}

	msg, err := s.messages.CreateMessage(ctx, chatID, requesterID, normalize(content), normalize(imagePath))
	if err != nil {
		return models.Message{}, internal("store message", err)
	}
	msg.SenderName = author.Name
	s.resolveImage(ctx, &msg)
	observability.IncMessagesSent()

	// The message is durable at this point. Live delivery is fire-and-forget
	// and must not affect the response.
	if s.notifier != nil {
		s.notifier.MessageSent(chatID, requesterID, msg)
	}
	return msg, nil
}

func (s *chatService) FetchMessages(ctx context.Context, requesterID int, chatID int) ([]models.Message, error) {
	if _, err := s.requireMembership(ctx, chatID, requesterID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListMessages(ctx, chatID)
	if err != nil {
		return nil, internal("load messages", err)
	}
	for i := range msgs {
		s.resolveImage(ctx, &msgs[i])
	}
	return msgs, nil
}

func (s *chatService) FetchChats(ctx context.Context, requesterID int) ([]models.ChatSummary, error) {
	chats, err := s.chats.ListChats(ctx, requesterID)
	if err != nil {
		return nil, internal("load chats", err)
	}
	for i := range chats {
		if chats[i].LastMessage != nil {
			s.resolveImage(ctx, chats[i].LastMessage)
		}
	}
	return chats, nil
}

func (s *chatService) MarkRead(ctx context.Context, requesterID int, chatID int) ([]int, error) {
	if _, err := s.requireMembership(ctx, chatID, requesterID); err != nil {
		return nil, err
	}

	ids, err := s.messages.MarkMessagesRead(ctx, chatID, requesterID)
	if err != nil {
		return nil, internal("mark messages read", err)
	}
	if len(ids) > 0 {
		observability.AddMessagesRead(len(ids))
		if s.notifier != nil {
			s.notifier.MessagesRead(chatID, requesterID, ids)
		}
	}
	return ids, nil
}

func (s *chatService) DeleteMessage(ctx context.Context, requesterID int, messageID int) error {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return notFound("message not found")
		}
		return internal("load message", err)
	}

	if _, err := s.requireMembership(ctx, msg.ChatID, requesterID); err != nil {
		return err
	}
	if msg.SenderID != requesterID {
		return forbidden("only the author can delete a message")
	}

	if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			return notFound("message not found")
		}
		return internal("delete message", err)
	}
	return nil
}

func (s *chatService) DeleteChat(ctx context.Context, requesterID int, chatID int) error {
	if _, err := s.requireMembership(ctx, chatID, requesterID); err != nil {
		return err
	}

	if err := s.chats.DeleteChat(ctx, chatID); err != nil {
		if errors.Is(err, repositories.ErrChatNotFound) {
			return notFound("chat not found")
		}
		return internal("delete chat", err)
	}
	return nil
}

// resolveImage fills ImageURL from the stored path. Resolution failures are
// logged and the message is returned with the URL empty; persisted state wins.
func (s *chatService) resolveImage(ctx context.Context, msg *models.Message) {
	if msg.ImagePath == nil || *msg.ImagePath == "" {
		return
	}
	if s.media == nil {
		msg.ImageURL = *msg.ImagePath
		return
	}
	url, err := s.media.ResolveURL(ctx, *msg.ImagePath)
	if err != nil {
		log.Printf("resolve image url: %v", err)
		return
	}
	msg.ImageURL = url
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}

func normalize(s *string) *string {
	if isBlank(s) {
		return nil
	}
	return s
}
