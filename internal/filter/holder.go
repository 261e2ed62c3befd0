// Package filter narrows a launch list by keyword, launch pad and year range.
package filter

import "github.com/rcliao/space-missions/internal/model"

// Holder keeps exactly one Criteria value. The zero value reports
// default criteria.
type Holder struct {
	criteria model.Criteria
	set      bool
}

// Initialize resets the held criteria to the defaults.
func (h *Holder) Initialize() {
	h.criteria = model.DefaultCriteria()
	h.set = true
}

// Replace swaps in c wholesale. Fields are not merged with the previous
// value and no validation happens here; malformed years are handled by Apply.
func (h *Holder) Replace(c model.Criteria) {
	h.criteria = c
	h.set = true
}

// Criteria returns the held value.
func (h *Holder) Criteria() model.Criteria {
	if !h.set {
		return model.DefaultCriteria()
	}
	return h.criteria
}
