package schema

import (
	"time"

	"github.com/google/uuid"
)

// Device is a registration of a push-capable device that can run
// broadcast and scan sessions on behalf of an account.
type Device struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key" sql:"default:uuid_generate_v4()"`
	Owner     string    `json:"owner"`
	PushToken string    `json:"push_token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
