package identity

import "time"

// User is an applicant identity. The phone number exactly as submitted is the key;
// no separate user ID is minted.
type User struct {
	Phone     string
	CreatedAt time.Time
}
