package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TeamMember is a directory entry mapping a Slack user ID (Code) to the
// display name used in rendered messages. Created through the registration
// modal; never deleted automatically.
type TeamMember struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Code        string        `bson:"code" json:"code"`
	DisplayName string        `bson:"display_name" json:"display_name"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
}
