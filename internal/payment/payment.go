// Package payment charges donors. Only a mock gateway is provided.
package payment

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrDeclined      = errors.New("payment declined")
	ErrInvalidAmount = errors.New("invalid amount")
)

type Charge struct {
	Amount   float64
	Currency string
	DonorID  uint
	EventID  uint
}

type Receipt struct {
	Reference string
	Amount    float64
	Currency  string
}

// Gateway charges a donor for a donation
type Gateway interface {
	Charge(ctx context.Context, charge Charge) (*Receipt, error)
}

// MockGateway approves every charge up to DeclineAbove; zero never declines
type MockGateway struct {
	DeclineAbove float64
}

func NewMockGateway(declineAbove float64) *MockGateway {
	return &MockGateway{DeclineAbove: declineAbove}
}

func (g *MockGateway) Charge(ctx context.Context, charge Charge) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if charge.Amount <= 0 || math.IsNaN(charge.Amount) || math.IsInf(charge.Amount, 0) {
		return nil, ErrInvalidAmount
	}
	if g.DeclineAbove > 0 && charge.Amount > g.DeclineAbove {
		return nil, ErrDeclined
	}
	return &Receipt{
		Reference: "mock_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Amount:    charge.Amount,
		Currency:  strings.ToUpper(charge.Currency),
	}, nil
}

// HasAtMostTwoDecimals reports whether amount is a whole number of cents
func HasAtMostTwoDecimals(amount float64) bool {
	cents := amount * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}
