package queue

import "time"

const HeaderRequestID = "X-Request-ID"

// Routing keys on the events exchange.
const (
	KeyUserRegistered  = "user.registered"
	KeyUserLoggedIn    = "user.loggedin"
	KeyStationCreated  = "station.created"
	KeyStationUpserted = "station.upserted"
)

type UserRegistered struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

type UserLoggedIn struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

// StationCreated is emitted after POST /radioStation. By is the verified caller
// email, empty for anonymous writes.
type StationCreated struct {
	InsertedID any       `json:"inserted_id"`
	StationID  any       `json:"station_id,omitempty"`
	By         string    `json:"by,omitempty"`
	At         time.Time `json:"at"`
}

type StationUpserted struct {
	StationID any       `json:"station_id"`
	Inserted  bool      `json:"inserted"`
	Modified  int64     `json:"modified"`
	At        time.Time `json:"at"`
}
