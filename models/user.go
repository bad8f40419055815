package models

import "time"

const DefaultRating = 1000

type User struct {
	ID                int64     `json:"id"`
	Nickname          string    `json:"nickname"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	Rating            int       `json:"rating"`
	TournamentsPlayed int       `json:"tournaments_played"`
	TournamentsWon    int       `json:"tournaments_won"`
	CreatedAt         time.Time `json:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
