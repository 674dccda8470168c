package model

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the role record kept alongside the auth provider's user.
type Profile struct {
	ID   string
	Role Role
}

func (p *Profile) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// App config keys.
const (
	ConfigSubscriptionPrice = "subscription_price"
)

// DefaultSubscriptionPriceRupees is served by the public config read when the
// key has never been set.
const DefaultSubscriptionPriceRupees = 100
