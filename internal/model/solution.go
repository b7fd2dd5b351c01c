package model

import (
	"time"

	"github.com/google/uuid"
)

type Solution struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProblemID string    `json:"problem_id" db:"problem_id"`
	Title     string    `json:"title" db:"title"`
	Price     float64   `json:"price" db:"price"`
	Content   string    `json:"content,omitempty" db:"content"` // visible to owners only
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartItem is one line of a checkout request after catalog resolution.
type CartItem struct {
	SolutionID uuid.UUID `json:"solution_id"`
	Price      float64   `json:"price"`
}
