package payment

import (
	"errors"

	"github.com/casesurf/casesurf/pkg/models"
)

// Plan identifiers
const (
	PlanStarter     = "starter"
	PlanLifetimePro = "lifetime_pro"
)

// StarterCredits is the free credit grant applied when a profile is
// first created
const StarterCredits = 5

// ErrUnknownPlan is returned for a plan ID outside the catalog
var ErrUnknownPlan = errors.New("unknown plan")

// ErrFreePlan is returned when a capture names a plan with no price
var ErrFreePlan = errors.New("free plan cannot be purchased")

var catalog = []models.Plan{
	{
		ID:      PlanStarter,
		Name:    "Starter",
		Credits: StarterCredits,
		Free:    true,
	},
	{
		ID:         PlanLifetimePro,
		Name:       "Lifetime Pro",
		Unlimited:  true,
		PriceCents: 3000,
		Currency:   "USD",
	},
}

// Plans returns the purchasable plan catalog
func Plans() []models.Plan {
	plans := make([]models.Plan, len(catalog))
	copy(plans, catalog)
	return plans
}

// PlanByID looks up a plan
func PlanByID(id string) (*models.Plan, error) {
	for i := range catalog {
		if catalog[i].ID == id {
			plan := catalog[i]
			return &plan, nil
		}
	}
	return nil, ErrUnknownPlan
}
