package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type WorkStyle string

const (
	WorkStyleOffice WorkStyle = "office"
	WorkStyleRemote WorkStyle = "remote"
	WorkStyleUnset  WorkStyle = ""
)

// AttendanceRecord is one user's attendance for one civil day (YYYY-MM-DD).
// DepartureCount is a press counter whose parity encodes presence: even means
// present, odd means departed. It only ever increases.
type AttendanceRecord struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         string        `bson:"user_id" json:"user_id"`
	UserName       string        `bson:"user_name" json:"user_name"`
	ChannelID      string        `bson:"channel_id" json:"channel_id"`
	Date           string        `bson:"date" json:"date"`
	WorkStyle      WorkStyle     `bson:"work_style" json:"work_style"`
	DepartureCount int           `bson:"departure_count" json:"departure_count"`
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updated_at"`
}

func (r *AttendanceRecord) Departed() bool {
	return r.DepartureCount%2 == 1
}

// DayCounts is the per-day tally rendered into the channel message buttons.
// Departed counts records with odd departure parity regardless of work style.
type DayCounts struct {
	Office   int `bson:"office"`
	Remote   int `bson:"remote"`
	Departed int `bson:"departed"`
}
