package model

// SlotName names one of the dialogue slots.
type SlotName string

const (
	SlotPolicyNumber SlotName = "policy_number"
	SlotCity         SlotName = "city"
	SlotPlanTier     SlotName = "plan_tier"
	SlotRSMode       SlotName = "rs_mode"
)

// Slots is the slot set carried across turns. Empty strings mean "not set".
type Slots struct {
	PolicyNumber string `json:"policy_number,omitempty"`
	City         string `json:"city,omitempty"`
	PlanTier     string `json:"plan_tier,omitempty"`
	RSMode       RSMode `json:"rs_mode,omitempty"`
}

// Get returns the value of the named slot.
func (s Slots) Get(name SlotName) string {
	switch name {
	case SlotPolicyNumber:
		return s.PolicyNumber
	case SlotCity:
		return s.City
	case SlotPlanTier:
		return s.PlanTier
	case SlotRSMode:
		return string(s.RSMode)
	}
	return ""
}

// Set writes v into the named slot. Unknown names are ignored.
func (s *Slots) Set(name SlotName, v string) {
	switch name {
	case SlotPolicyNumber:
		s.PolicyNumber = v
	case SlotCity:
		s.City = v
	case SlotPlanTier:
		s.PlanTier = v
	case SlotRSMode:
		s.RSMode = RSMode(v)
	}
}

// Has reports whether the named slot holds a value.
func (s Slots) Has(name SlotName) bool {
	return s.Get(name) != ""
}
