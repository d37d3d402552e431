package domain

import (
	"fmt"
	"net/url"
)

// Plan is a purchasable coin bundle. Price is in whole rupees.
type Plan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Coins       int64    `json:"coins"`
	Features    []string `json:"features"`
	Recommended bool     `json:"recommended,omitempty"`
}

// Plans is the read-only catalog offered on the subscription page.
var Plans = []Plan{
	{
		ID:       "plan_trial",
		Name:     "Trial Pack",
		Price:    49,
		Coins:    20,
		Features: []string{"20 Image Generations", "Basic Support", "Valid for 7 days"},
	},
	{
		ID:       "plan_starter",
		Name:     "Starter",
		Price:    99,
		Coins:    50,
		Features: []string{"50 Image Generations", "Standard Priority", "Valid for 30 days"},
	},
	{
		ID:          "plan_pro",
		Name:        "Pro Value",
		Price:       199,
		Coins:       125,
		Features:    []string{"125 Image Generations", "High Priority", "Valid for 30 days"},
		Recommended: true,
	},
	{
		ID:       "plan_ultimate",
		Name:     "Ultimate",
		Price:    299,
		Coins:    200,
		Features: []string{"200 Image Generations", "Top Priority", "Access to Beta Features", "Valid for 30 days"},
	},
}

// FindPlan returns a copy of the catalog entry with the given id.
func FindPlan(id string) (Plan, error) {
	for _, p := range Plans {
		if p.ID == id {
			p.Features = append([]string(nil), p.Features...)
			return p, nil
		}
	}
	return Plan{}, ErrPlanNotFound
}

// PaymentURI builds the UPI deep link a user pays against before submitting
// the reference number for review.
func PaymentURI(payee, payeeName string, amount int64) string {
	q := url.Values{}
	q.Set("pa", payee)
	q.Set("pn", payeeName)
	q.Set("am", fmt.Sprintf("%d", amount))
	q.Set("cu", "INR")
	return "upi://pay?" + q.Encode()
}
