package model

import "time"

// User owns a set of transactions and the cost basis reports derived from them.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
