package user

import "time"

type User struct {
	ID        uint
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}
