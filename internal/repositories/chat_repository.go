package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"trueque-chat-service/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatRepository abstracts chat persistence and membership.
type ChatRepository interface {
	CreateOrGetChat(ctx context.Context, userID int, otherID int) (models.Chat, error)
	GetChat(ctx context.Context, chatID int) (models.Chat, error)
	IsMember(ctx context.Context, chatID int, userID int) (bool, error)
	ListChats(ctx context.Context, userID int) ([]models.ChatSummary, error)
	DeleteChat(ctx context.Context, chatID int) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// CreateOrGetChat returns the unique chat between two users, creating it if
// none exists. The pair is normalized and inserted with ON CONFLICT DO
// NOTHING, so two concurrent calls for the same pair converge on one row.
func (r *ChatRepo) CreateOrGetChat(ctx context.Context, userID int, otherID int) (models.Chat, error) {
	user1, user2 := userID, otherID
	if user1 > user2 {
		user1, user2 = user2, user1
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Chat{}, err
	}
	defer tx.Rollback()

	var chat models.Chat
	err = tx.GetContext(ctx, &chat,
		`INSERT INTO chats (user1_id, user2_id) VALUES ($1, $2)
         ON CONFLICT (user1_id, user2_id) DO NOTHING
         RETURNING id, user1_id, user2_id, created_at`, user1, user2)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the race or the chat already existed; fetch the winning row.
		err = tx.GetContext(ctx, &chat,
			`SELECT id, user1_id, user2_id, created_at FROM chats WHERE user1_id=$1 AND user2_id=$2`,
			user1, user2)
	}
	if err != nil {
		return models.Chat{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2), ($1, $3)
         ON CONFLICT (chat_id, user_id) DO NOTHING`, chat.ID, user1, user2); err != nil {
		return models.Chat{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Chat{}, err
	}
	return chat, nil
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat,
		`SELECT id, user1_id, user2_id, created_at FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

// IsMember checks whether a user belongs to the chat.
func (r *ChatRepo) IsMember(ctx context.Context, chatID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}

type chatSummaryRow struct {
	ChatID       int            `db:"chat_id"`
	OtherUserID  int            `db:"other_user_id"`
	OtherName    string         `db:"other_name"`
	CreatedAt    time.Time      `db:"created_at"`
	LastActivity time.Time      `db:"last_activity"`
	MsgID        sql.NullInt64  `db:"msg_id"`
	MsgSenderID  sql.NullInt64  `db:"msg_sender_id"`
	MsgContent   sql.NullString `db:"msg_content"`
	MsgImagePath sql.NullString `db:"msg_image_path"`
	MsgCreatedAt sql.NullTime   `db:"msg_created_at"`
	MsgReadAt    sql.NullTime   `db:"msg_read_at"`
}

// ListChats returns every chat the user belongs to, with the other member and
// the latest message resolved in the same query, ordered by last activity.
func (r *ChatRepo) ListChats(ctx context.Context, userID int) ([]models.ChatSummary, error) {
	query := `SELECT c.id AS chat_id,
            other.user_id AS other_user_id,
            u.name AS other_name,
            c.created_at,
            COALESCE(lm.created_at, c.created_at) AS last_activity,
            lm.id AS msg_id,
            lm.sender_id AS msg_sender_id,
            lm.content AS msg_content,
            lm.image_path AS msg_image_path,
            lm.created_at AS msg_created_at,
            lm.read_at AS msg_read_at
        FROM chats c
        JOIN chat_members me ON me.chat_id = c.id AND me.user_id = $1
        JOIN chat_members other ON other.chat_id = c.id AND other.user_id <> $1
        JOIN users u ON u.id = other.user_id
        LEFT JOIN LATERAL (
            SELECT id, sender_id, content, image_path, created_at, read_at
            FROM messages WHERE chat_id = c.id
            ORDER BY created_at DESC, id DESC LIMIT 1
        ) lm ON TRUE
        ORDER BY COALESCE(lm.created_at, c.created_at) DESC, c.id DESC`

	var rows []chatSummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}

	summaries := make([]models.ChatSummary, 0, len(rows))
	for _, row := range rows {
		summary := models.ChatSummary{
			ChatID:       row.ChatID,
			OtherUserID:  row.OtherUserID,
			OtherName:    row.OtherName,
			CreatedAt:    row.CreatedAt,
			LastActivity: row.LastActivity,
		}
		if row.MsgID.Valid {
			msg := models.Message{
				ID:        int(row.MsgID.Int64),
				ChatID:    row.ChatID,
				SenderID:  int(row.MsgSenderID.Int64),
				CreatedAt: row.MsgCreatedAt.Time,
			}
			if row.MsgContent.Valid {
				content := row.MsgContent.String
				msg.Content = &content
			}
			if row.MsgImagePath.Valid {
				imagePath := row.MsgImagePath.String
				msg.ImagePath = &imagePath
			}
			if row.MsgReadAt.Valid {
				readAt := row.MsgReadAt.Time
				msg.ReadAt = &readAt
			}
			summary.LastMessage = &msg
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// DeleteChat removes the chat's messages, membership rows and the chat itself
// in one transaction, so concurrent readers see it fully present or fully gone.
func (r *ChatRepo) DeleteChat(ctx context.Context, chatID int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE chat_id=$1`, chatID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_members WHERE chat_id=$1`, chatID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM chats WHERE id=$1`, chatID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrChatNotFound
	}
	return tx.Commit()
}
