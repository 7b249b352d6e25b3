package entity

import (
	"database/sql"
	"time"
)

// SendEmailRequest is a queued outgoing email.
type SendEmailRequest struct {
	Id        int            `db:"id" json:"id"`
	From      string         `db:"from_email" json:"from"`
	To        string         `db:"to_email" json:"to"`
	Html      string         `db:"html" json:"html"`
	Subject   string         `db:"subject" json:"subject"`
	ReplyTo   string         `db:"reply_to" json:"replyTo"`
	Sent      bool           `db:"sent" json:"sent"`
	SentAt    sql.NullTime   `db:"sent_at" json:"sentAt"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	ErrMsg    sql.NullString `db:"error_msg" json:"errMsg"`
}
