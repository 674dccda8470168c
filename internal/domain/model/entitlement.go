package model

// AccessReason is the per-request entitlement outcome. It is never persisted.
type AccessReason string

const (
	AccessNone         AccessReason = "no_access"
	AccessAdmin        AccessReason = "admin"
	AccessSubscription AccessReason = "subscription"
	AccessPurchase     AccessReason = "purchase"
)

// Decision is the result of resolving one requester against one note.
type Decision struct {
	Reason AccessReason
}

func (d Decision) Granted() bool { return d.Reason != "" && d.Reason != AccessNone }

// NoteView is what the content-read endpoint returns. AssetURL is only set
// when access was granted; Signed is false when the issuer fell back to the
// stored reference.
type NoteView struct {
	Note     *Note
	Access   Decision
	AssetURL string
	Signed   bool
}

// SubscriptionState answers the subscription-status endpoint.
type SubscriptionState struct {
	IsSubscribed bool
	IsAdmin      bool
	Subscription *Subscription
}
