package aggregate

import "github.com/okian/recap/internal/domain/model"

// OtherDepartment names the trailing bucket for unlisted departments.
const OtherDepartment = "other"

// DepartmentGroup is one display bucket of the staff roster.
type DepartmentGroup struct {
	Department string        `json:"department"`
	Members    []model.Staff `json:"members"`
}

// GroupByDepartment partitions staff by department following order. Empty
// departments are omitted; departments missing from order go to a trailing
// OtherDepartment bucket, or to OtherDepartment's place when order lists it.
// Members keep their input order.
func GroupByDepartment(staff []model.Staff, order []string) []DepartmentGroup {
	index := make(map[string]int, len(order))
	for i, d := range order {
		if _, dup := index[d]; !dup {
			index[d] = i
		}
	}

	buckets := make([][]model.Staff, len(order)+1)
	other := len(order)
	if i, ok := index[OtherDepartment]; ok {
		other = i
	}
	for _, s := range staff {
		i, ok := index[s.Department]
		if !ok {
			i = other
		}
		buckets[i] = append(buckets[i], s)
	}

	var out []DepartmentGroup
	for i, members := range buckets {
		if len(members) == 0 {
			continue
		}
		name := OtherDepartment
		if i < len(order) {
			name = order[i]
		}
		out = append(out, DepartmentGroup{Department: name, Members: members})
	}
	return out
}
