package model

// Intent is the single dialogue intent computed for a turn.
type Intent string

const (
	IntentRSSearch            Intent = "rs_search"
	IntentPolicyStatus        Intent = "policy_status"
	IntentPolicyPlanLookup    Intent = "policy_plan_lookup"
	IntentCashlessPolicy      Intent = "cashless_policy"
	IntentLimitPlan           Intent = "limit_plan"
	IntentClaimRequirements   Intent = "claim_requirements"
	IntentPlanBenefit         Intent = "plan_benefit"
	IntentProvidePolicyNumber Intent = "provide_policy_number"
	IntentUnknown             Intent = "unknown"
)

// Intents lists the fixed enumeration in declaration order.
var Intents = []Intent{
	IntentRSSearch,
	IntentPolicyStatus,
	IntentPolicyPlanLookup,
	IntentCashlessPolicy,
	IntentLimitPlan,
	IntentClaimRequirements,
	IntentPlanBenefit,
	IntentProvidePolicyNumber,
	IntentUnknown,
}

// Valid reports whether i is a member of the fixed enumeration.
func (i Intent) Valid() bool {
	for _, v := range Intents {
		if v == i {
			return true
		}
	}
	return false
}

// NeedsCustomerRecord reports whether the intent is answered from the customer store.
func (i Intent) NeedsCustomerRecord() bool {
	return i == IntentPolicyStatus || i == IntentPolicyPlanLookup || i == IntentCashlessPolicy
}

// NeedsPolicyDocument reports whether the intent is answered from the policy-document store.
func (i Intent) NeedsPolicyDocument() bool {
	return i == IntentLimitPlan || i == IntentClaimRequirements || i == IntentPlanBenefit
}

// Status is the outcome tag of a Decision.
type Status string

const (
	StatusNeedInput    Status = "NEED_INPUT"
	StatusNeedChoice   Status = "NEED_CHOICE"
	StatusFound        Status = "FOUND"
	StatusNotFound     Status = "NOT_FOUND"
	StatusMissingField Status = "MISSING_FIELD"
	StatusUnknown      Status = "UNKNOWN"
)

// RSMode filters partner hospitals by claim method.
type RSMode string

const (
	RSModeCashless    RSMode = "cashless"
	RSModeNonCashless RSMode = "non_cashless"
	RSModeAll         RSMode = "all"
)

// Plan tiers.
const (
	PlanSilver   = "Silver"
	PlanGold     = "Gold"
	PlanPlatinum = "Platinum"
)
