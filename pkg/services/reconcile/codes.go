package reconcile

// PlanCodes collects plan id to external plan code pairs seen during one
// country run. The detail table uses it to fill in plan codes the flows do
// not carry.
type PlanCodes struct {
	codes map[string]string
}

func NewPlanCodes() *PlanCodes {
	return &PlanCodes{codes: make(map[string]string)}
}

func (c *PlanCodes) Record(planID, code string) {
	if planID == "" {
		return
	}
	c.codes[planID] = code
}

func (c *PlanCodes) Code(planID string) (string, bool) {
	code, ok := c.codes[planID]
	return code, ok
}
