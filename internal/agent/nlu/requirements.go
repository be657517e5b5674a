package nlu

import "github.com/cso-health-insurance/server/internal/agent/model"

var requiredFields = map[model.Intent][]model.SlotName{
	model.IntentRSSearch:         {model.SlotCity},
	model.IntentPolicyStatus:     {model.SlotPolicyNumber},
	model.IntentPolicyPlanLookup: {model.SlotPolicyNumber},
	model.IntentCashlessPolicy:   {model.SlotPolicyNumber},
	model.IntentLimitPlan:        {model.SlotPlanTier},
	model.IntentPlanBenefit:      {model.SlotPlanTier},
}

// RequiredFields returns the slots an intent needs, in asking order.
func RequiredFields(intent model.Intent) []model.SlotName {
	return append([]model.SlotName(nil), requiredFields[intent]...)
}

// MissingFields is RequiredFields minus the slots already present, order preserved.
func MissingFields(intent model.Intent, slots model.Slots) []model.SlotName {
	var missing []model.SlotName
	for _, f := range requiredFields[intent] {
		if !slots.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

var slotOrder = []model.SlotName{model.SlotPolicyNumber, model.SlotCity, model.SlotPlanTier}

// FillSlots merges this turn's entities with memory. A value for the armed pending slot
// wins and disarms it; any other slot takes the fresh entity first and the remembered
// value otherwise. rs_mode falls back to the sticky last mode.
func FillSlots(ents Entities, mem *model.SessionMemory) model.Slots {
	var s model.Slots
	if p := mem.PendingSlot; p != "" {
		if v := ents.Get(p); v != "" {
			s.Set(p, v)
			mem.PendingSlot = ""
		}
	}
	for _, name := range slotOrder {
		if s.Has(name) {
			continue
		}
		if v := ents.Get(name); v != "" {
			s.Set(name, v)
		} else if mem.Slots.Has(name) {
			s.Set(name, mem.Slots.Get(name))
		}
	}
	switch {
	case ents.RSMode != "":
		s.RSMode = ents.RSMode
	case mem.LastRSMode != "":
		s.RSMode = mem.LastRSMode
	default:
		s.RSMode = model.RSModeAll
	}
	return s
}
