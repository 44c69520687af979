package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"trueque-chat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for chat messages, including the
// read-receipt batch update.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chatID int, senderID int, content *string, imagePath *string) (models.Message, error)
	ListMessages(ctx context.Context, chatID int) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	DeleteMessage(ctx context.Context, messageID int) error
	MarkMessagesRead(ctx context.Context, chatID int, readerID int) ([]int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage appends a message to the chat's log. read_at starts null.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatID int, senderID int, content *string, imagePath *string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`INSERT INTO messages (chat_id, sender_id, content, image_path) VALUES ($1, $2, $3, $4)
         RETURNING id, chat_id, sender_id, content, image_path, created_at, read_at`,
		chatID, senderID, content, imagePath)
	return msg, err
}

// ListMessages returns all chat messages ascending by creation time (id breaks
// ties), with the author's name joined in the same query.
func (r *MessageRepo) ListMessages(ctx context.Context, chatID int) ([]models.Message, error) {
	query := `SELECT m.id, m.chat_id, m.sender_id, u.name AS sender_name,
            m.content, m.image_path, m.created_at, m.read_at
        FROM messages m
        JOIN users u ON u.id = m.sender_id
        WHERE m.chat_id=$1
        ORDER BY m.created_at ASC, m.id ASC`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, chatID)
	return msgs, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT id, chat_id, sender_id, content, image_path, created_at, read_at FROM messages WHERE id=$1`,
		messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// DeleteMessage hard-deletes a message.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// MarkMessagesRead stamps read_at on every unread message in the chat not
// authored by the reader, in one statement, and returns the affected ids.
// An empty result is not an error.
func (r *MessageRepo) MarkMessagesRead(ctx context.Context, chatID int, readerID int) ([]int, error) {
	rows, err := r.db.QueryxContext(ctx,
		`UPDATE messages SET read_at = NOW()
         WHERE chat_id=$1 AND sender_id<>$2 AND read_at IS NULL
         RETURNING id`, chatID, readerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
