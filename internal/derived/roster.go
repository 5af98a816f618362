package derived

import "homecare-data/internal/domain"

// RoleAll selects every operator in FilterOperatorsByRole.
const RoleAll = "Tutti"

// FilterOperatorsByRole operators whose role label contains role
// (case-insensitive). Empty or RoleAll returns all operators.
func FilterOperatorsByRole(ops []*domain.Operator, role string) []*domain.Operator {
	if role == "" || role == RoleAll || normalize(role) == "all" {
		return ops
	}
	var out []*domain.Operator
	for _, op := range ops {
		if op.HasRole(role) {
			out = append(out, op)
		}
	}
	return out
}

// RosterStats headline counters of the operator roster.
type RosterStats struct {
	Total         int            `json:"total"`
	Active        int            `json:"active"`
	AssignedTotal int            `json:"assigned_total"`
	Physicians    int            `json:"physicians"`
	Nurses        int            `json:"nurses"`
	ByRole        map[string]int `json:"by_role"`
}

// ComputeRosterStats nurses are matched on the "Infermier" stem so both
// Infermiere and Infermiera labels count.
func ComputeRosterStats(ops []*domain.Operator) RosterStats {
	stats := RosterStats{Total: len(ops), ByRole: make(map[string]int, len(domain.Roles))}
	for _, role := range domain.Roles {
		stats.ByRole[role] = 0
	}
	for _, op := range ops {
		if op.IsActive() {
			stats.Active++
		}
		stats.AssignedTotal += op.AssignedCount
		if op.HasRole(domain.RolePhysician) {
			stats.Physicians++
		}
		if op.HasRole("Infermier") {
			stats.Nurses++
		}
		for _, role := range domain.Roles {
			if op.HasRole(role) {
				stats.ByRole[role]++
			}
		}
	}
	return stats
}
