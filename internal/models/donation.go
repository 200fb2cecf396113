package models

import "time"

const DonationStatusSucceeded = "succeeded"

// Donation is a completed payment towards an event
type Donation struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	EventID    uint      `json:"event_id" gorm:"index;not null"`
	DonorID    uint      `json:"donor_id" gorm:"index;not null"`
	Amount     float64   `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency   string    `json:"currency" gorm:"size:3;not null"`
	Message    string    `json:"message,omitempty" gorm:"size:500"`
	Anonymous  bool      `json:"anonymous"`
	PaymentRef string    `json:"payment_ref" gorm:"size:64;uniqueIndex"`
	Status     string    `json:"status" gorm:"size:20;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

type CreateDonationRequest struct {
	EventID   uint    `json:"event_id" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0,lte=1000000"`
	Currency  string  `json:"currency" validate:"omitempty,len=3,alpha"`
	Message   string  `json:"message" validate:"max=500"`
	Anonymous bool    `json:"anonymous"`
}

// DonationView hides the donor when the donation is anonymous
type DonationView struct {
	Donation
	Donor *UserCompact `json:"donor,omitempty"`
}
