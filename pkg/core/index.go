package core

import (
	coreTypes "sg-audit/pkg/core/types"
)

// Indexes are the four lookup structures built from one region's datasets.
// All of them are keyed by security group id. Building them once turns the
// classification of every group into map lookups instead of repeated scans
// over instances and interfaces.
type Indexes struct {
	// DefaultGroups contains the ids of the provider-managed default groups.
	DefaultGroups map[string]bool

	// InstancesByGroup maps a group id to the instances it is attached to.
	InstancesByGroup map[string][]coreTypes.InstanceAttachment

	// InterfacesByGroup maps a group id to the network interfaces holding it.
	InterfacesByGroup map[string][]coreTypes.NetworkInterface

	// ReferencesByGroup maps a group id to the rules of other groups naming
	// it as source or destination. Keyed by the referenced group, not the
	// referencing one. The referenced id may belong to no group of this run
	// (cross-account or cross-VPC rules); such dangling targets are kept.
	ReferencesByGroup map[string][]coreTypes.GroupReference
}

// BuildIndexes constructs the four lookups from the region datasets. Pure
// transformation: no I/O, fully deterministic.
func BuildIndexes(data *RegionData) Indexes {
	idx := Indexes{
		DefaultGroups:     make(map[string]bool),
		InstancesByGroup:  make(map[string][]coreTypes.InstanceAttachment),
		InterfacesByGroup: make(map[string][]coreTypes.NetworkInterface),
		ReferencesByGroup: make(map[string][]coreTypes.GroupReference),
	}

	for _, sg := range data.SecurityGroups {
		if sg.Default {
			idx.DefaultGroups[sg.Id] = true
		}
	}

	for _, instance := range data.Instances {
		attachment := coreTypes.InstanceAttachment{
			InstanceId: instance.Id,
			Name:       instance.Name,
			State:      instance.State,
		}
		for _, groupId := range instance.GroupIds {
			idx.InstancesByGroup[groupId] = append(idx.InstancesByGroup[groupId], attachment)
		}
	}

	for _, ifc := range data.NetworkInterfaces {
		for _, groupId := range ifc.GroupIds {
			idx.InterfacesByGroup[groupId] = append(idx.InterfacesByGroup[groupId], ifc)
		}
	}

	for _, sg := range data.SecurityGroups {
		indexReferences(&idx, sg, sg.IngressRules)
		indexReferences(&idx, sg, sg.EgressRules)
	}

	return idx
}

// indexReferences records every group-targeting rule of sg against the group
// the rule references. Self-references are recorded like any other.
func indexReferences(idx *Indexes, sg coreTypes.SecurityGroup, rules []coreTypes.Rule) {
	for _, rule := range rules {
		if rule.ReferencedGroupId == "" {
			continue
		}
		idx.ReferencesByGroup[rule.ReferencedGroupId] = append(idx.ReferencesByGroup[rule.ReferencedGroupId],
			coreTypes.GroupReference{
				ReferencedGroupId:    rule.ReferencedGroupId,
				ReferencingGroupId:   sg.Id,
				ReferencingGroupName: sg.Name,
				Direction:            rule.Direction,
				Protocol:             rule.Protocol,
				FromPort:             rule.FromPort,
				ToPort:               rule.ToPort,
			})
	}
}
