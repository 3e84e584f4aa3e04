package domain

import "time"

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type TimeSlot struct {
	ID           string    `json:"id" bson:"_id"`
	RestaurantID string    `json:"restaurantId" bson:"restaurantId"`
	Date         string    `json:"date" bson:"date"`
	Time         string    `json:"time" bson:"time"`
	TotalSeats   int       `json:"totalSeats" bson:"totalSeats"`
	BookedSeats  int       `json:"bookedSeats" bson:"bookedSeats"`
	Version      int       `json:"version" bson:"version"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// AvailableSeats never reports a negative count even if the stored row is inconsistent.
func (s TimeSlot) AvailableSeats() int {
	if s.BookedSeats >= s.TotalSeats {
		return 0
	}
	return s.TotalSeats - s.BookedSeats
}

// TimeSlotPatch carries the fields an admin may change on an existing slot.
// Nil fields are left untouched.
type TimeSlotPatch struct {
	TotalSeats *int
}

// ValidDate reports whether s is a calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidTime reports whether s is a 24h HH:MM clock time.
func ValidTime(s string) bool {
	_, err := time.Parse(TimeLayout, s)
	return err == nil && len(s) == len(TimeLayout)
}
