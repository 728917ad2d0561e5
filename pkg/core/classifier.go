package core

import (
	coreTypes "sg-audit/pkg/core/types"
)

// classificationRule pairs a category with its predicate. The rules are
// evaluated in order and the first match wins, so the business priority is
// the order of the slice, visible in one place.
type classificationRule struct {
	category coreTypes.Category
	matches  func(sg coreTypes.SecurityGroup, idx Indexes) bool
}

// classificationRules is the precedence policy. Default beats every other
// signal: a default group with dangling interfaces is still reported as
// never-delete. The final rule is a catch-all so every zero-instance group
// lands in exactly one category.
var classificationRules = []classificationRule{
	{
		category: coreTypes.CategoryDefault,
		matches: func(sg coreTypes.SecurityGroup, idx Indexes) bool {
			return idx.DefaultGroups[sg.Id]
		},
	},
	{
		category: coreTypes.CategoryInterfacesAndReferences,
		matches: func(sg coreTypes.SecurityGroup, idx Indexes) bool {
			return len(idx.InterfacesByGroup[sg.Id]) > 0 && len(idx.ReferencesByGroup[sg.Id]) > 0
		},
	},
	{
		category: coreTypes.CategoryInterfaces,
		matches: func(sg coreTypes.SecurityGroup, idx Indexes) bool {
			return len(idx.InterfacesByGroup[sg.Id]) > 0
		},
	},
	{
		category: coreTypes.CategoryReferenced,
		matches: func(sg coreTypes.SecurityGroup, idx Indexes) bool {
			return len(idx.ReferencesByGroup[sg.Id]) > 0
		},
	},
	{
		category: coreTypes.CategoryUnused,
		matches: func(sg coreTypes.SecurityGroup, idx Indexes) bool {
			return true
		},
	},
}

// Classify assigns the security group its single usage category. Groups
// attached to at least one instance are in active use: no record is emitted
// for them and the second return value is false. Pure function over the
// indexes; all I/O happened in the fetcher.
func Classify(sg coreTypes.SecurityGroup, idx Indexes) (coreTypes.ClassificationRecord, bool) {
	if len(idx.InstancesByGroup[sg.Id]) > 0 {
		return coreTypes.ClassificationRecord{}, false
	}

	for _, rule := range classificationRules {
		if rule.matches(sg, idx) {
			return coreTypes.ClassificationRecord{
				Region:             sg.Region,
				GroupId:            sg.Id,
				GroupName:          sg.Name,
				Description:        sg.Description,
				VpcId:              sg.VpcId,
				Category:           rule.category,
				AttachedInterfaces: idx.InterfacesByGroup[sg.Id],
				ReferencedBy:       idx.ReferencesByGroup[sg.Id],
			}, true
		}
	}

	// Unreachable: the catch-all rule always matches
	return coreTypes.ClassificationRecord{}, false
}
