package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PlanIntervalMonthly = "monthly"
	PlanIntervalYearly  = "yearly"
)

// PlanSlugFree is the catalog entry every new account is subscribed to.
const PlanSlugFree = "free"

var (
	ErrInvalidPlanInterval = errors.New("plan interval must be monthly or yearly")
	ErrInvalidPlanPrice    = errors.New("plan price must not be negative")
	ErrInvalidPlanLimit    = errors.New("plan limits must be positive or unset")
)

// SubscriptionPlan is an immutable catalog entry. Only administrators write
// plans; everything else reads them through the plan catalog.
type SubscriptionPlan struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Slug            string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug" validate:"required,max=50"`
	Name            string          `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Description     string          `gorm:"type:text" json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;index" json:"price"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'usd'" json:"currency" validate:"required,len=3"`
	Interval        string          `gorm:"type:varchar(16);not null;default:'monthly'" json:"interval" validate:"required,oneof=monthly yearly"`
	TrialDays       int             `gorm:"default:0" json:"trial_days" validate:"gte=0"`
	MaxTodos        *int            `gorm:"default:null" json:"max_todos"`
	MaxTeamMembers  *int            `gorm:"default:null" json:"max_team_members"`
	Features        datatypes.JSON  `json:"features"`
	ProviderPriceID string          `gorm:"type:varchar(191);default:''" json:"-"`
	IsActive        bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeSave keeps catalog rows consistent regardless of which code path writes them.
func (p *SubscriptionPlan) BeforeSave(tx *gorm.DB) error {
	p.Currency = strings.ToLower(strings.TrimSpace(p.Currency))
	if p.Interval != PlanIntervalMonthly && p.Interval != PlanIntervalYearly {
		return ErrInvalidPlanInterval
	}
	if p.Price.IsNegative() {
		return ErrInvalidPlanPrice
	}
	if (p.MaxTodos != nil && *p.MaxTodos < 0) || (p.MaxTeamMembers != nil && *p.MaxTeamMembers < 0) {
		return ErrInvalidPlanLimit
	}
	if len(p.Features) == 0 {
		p.Features = datatypes.JSON("[]")
	}
	return nil
}

// IsFree reports whether the plan costs nothing.
func (p *SubscriptionPlan) IsFree() bool {
	return p.Price.IsZero()
}

func (p *SubscriptionPlan) IsPaid() bool {
	return p.Price.IsPositive()
}

// PricePerMonth normalises yearly plans to a monthly amount.
func (p *SubscriptionPlan) PricePerMonth() decimal.Decimal {
	if p.Interval == PlanIntervalYearly {
		return p.Price.Div(decimal.NewFromInt(12))
	}
	return p.Price
}

func (p *SubscriptionPlan) FormattedPrice() string {
	if p.IsFree() {
		return "Free"
	}
	return fmt.Sprintf("%s %s", strings.ToUpper(p.Currency), p.Price.StringFixed(2))
}

func (p *SubscriptionPlan) FormattedPricePerMonth() string {
	if p.IsFree() {
		return "Free"
	}
	return fmt.Sprintf("%s %s/month", strings.ToUpper(p.Currency), p.PricePerMonth().StringFixed(2))
}

// FeatureList decodes the feature flags. Malformed JSON yields no features.
func (p *SubscriptionPlan) FeatureList() []string {
	if len(p.Features) == 0 {
		return nil
	}
	var features []string
	if err := json.Unmarshal(p.Features, &features); err != nil {
		return nil
	}
	return features
}

func (p *SubscriptionPlan) HasFeature(feature string) bool {
	for _, f := range p.FeatureList() {
		if f == feature {
			return true
		}
	}
	return false
}

// SetFeatures replaces the feature flags.
func (p *SubscriptionPlan) SetFeatures(features []string) {
	if features == nil {
		features = []string{}
	}
	b, _ := json.Marshal(features)
	p.Features = datatypes.JSON(b)
}

// MaxTodosLimit returns the todo cap; ok is false when the plan is unlimited.
// A zero limit counts as unlimited, matching how plans were configured historically.
func (p *SubscriptionPlan) MaxTodosLimit() (limit int, ok bool) {
	return positiveLimit(p.MaxTodos)
}

// MaxTeamMembersLimit returns the team size cap; ok is false when unlimited.
func (p *SubscriptionPlan) MaxTeamMembersLimit() (limit int, ok bool) {
	return positiveLimit(p.MaxTeamMembers)
}

func positiveLimit(v *int) (int, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

// IntPtr is a small helper for optional plan limits.
func IntPtr(v int) *int {
	return &v
}
