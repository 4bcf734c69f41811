package model

import "time"

// Patient records are owned by the identity service; this service reads them
// only to embed a snapshot at booking time.
type Patient struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Gender    string    `json:"gender,omitempty" bson:"gender,omitempty"`
	DOB       string    `json:"dob,omitempty" bson:"dob,omitempty"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// PatientSnapshot is the patient data embedded into an appointment at
// booking time.
type PatientSnapshot struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
	Image string `json:"image,omitempty" bson:"image,omitempty"`
}

// Snapshot captures the denormalized patient data for embedding.
func (p *Patient) Snapshot() PatientSnapshot {
	return PatientSnapshot{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
		Image: p.Image,
	}
}
