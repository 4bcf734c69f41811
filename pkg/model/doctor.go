package model

import "time"

type Doctor struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name           string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email          string     `json:"email" bson:"email" validate:"required,email"`
	Speciality     string     `json:"speciality" bson:"speciality" validate:"required,min=2,max=100"`
	Degree         string     `json:"degree" bson:"degree" validate:"required,min=2,max=100"`
	Experience     string     `json:"experience" bson:"experience" validate:"required,min=1,max=50"`
	About          string     `json:"about" bson:"about" validate:"required,min=2,max=2000"`
	Fees           int        `json:"fees" bson:"fees" validate:"required,min=1"`
	Address        string     `json:"address" bson:"address" validate:"required,min=2,max=300"`
	RegistrationNo string     `json:"registration_no" bson:"registration_no" validate:"required,min=2,max=50"`
	Image          string     `json:"image,omitempty" bson:"image,omitempty" validate:"omitempty,url"`
	Available      bool       `json:"available" bson:"available"`
	SlotsBooked    SlotLedger `json:"slots_booked" bson:"slots_booked"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// DoctorWithRating is the public listing shape: the doctor plus the moderated
// feedback aggregate.
type DoctorWithRating struct {
	Doctor      `bson:",inline"`
	Rating      *float64 `json:"rating" bson:"rating"`
	RatingCount int64    `json:"rating_count" bson:"rating_count"`
}

// DoctorSnapshot is the doctor data embedded into an appointment at booking
// time. It deliberately omits the slot ledger and is never updated when the
// doctor record changes later.
type DoctorSnapshot struct {
	ID         string `json:"id" bson:"id"`
	Name       string `json:"name" bson:"name"`
	Speciality string `json:"speciality" bson:"speciality"`
	Degree     string `json:"degree" bson:"degree"`
	Fees       int    `json:"fees" bson:"fees"`
	Address    string `json:"address" bson:"address"`
	Image      string `json:"image,omitempty" bson:"image,omitempty"`
}

// Snapshot captures the denormalized doctor data for embedding.
func (d *Doctor) Snapshot() DoctorSnapshot {
	return DoctorSnapshot{
		ID:         d.ID,
		Name:       d.Name,
		Speciality: d.Speciality,
		Degree:     d.Degree,
		Fees:       d.Fees,
		Address:    d.Address,
		Image:      d.Image,
	}
}
