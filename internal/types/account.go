package types

// PlanTier is the subscription tier of an account; quota limits hang off it
type PlanTier string

const (
	PlanTierFree     PlanTier = "free"
	PlanTierStarter  PlanTier = "starter"
	PlanTierBusiness PlanTier = "business"
)

// AccountStatus represents whether an account may use the dunning engine
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
)
