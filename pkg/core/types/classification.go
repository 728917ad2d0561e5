package types

import "fmt"

// Category is the single usage classification assigned to a security group
// with no attached instances. Groups attached to at least one instance are in
// active use and get no category at all.
type Category int

const (
	CategoryDefault Category = iota
	CategoryInterfacesAndReferences
	CategoryInterfaces
	CategoryReferenced
	CategoryUnused
)

func (c Category) String() string {
	switch c {
	case CategoryDefault:
		return "DefaultSecurityGroup"
	case CategoryInterfacesAndReferences:
		return "HasNetworkInterfacesAndReferences"
	case CategoryInterfaces:
		return "HasNetworkInterfaces"
	case CategoryReferenced:
		return "ReferencedByOtherSGs"
	case CategoryUnused:
		return "CompletelyUnused"
	}
	return "Unknown"
}

// Label returns the report label for the category. The combined
// interfaces-and-references case carries the interface label: the report
// exposes four labels only, the precise category stays on the record.
func (c Category) Label() string {
	switch c {
	case CategoryDefault:
		return "DEFAULT-VPC-SG-DO-NOT-DELETE"
	case CategoryInterfacesAndReferences, CategoryInterfaces:
		return "HAS-NETWORK-INTERFACES"
	case CategoryReferenced:
		return "REFERENCED-BY-OTHER-SGs"
	case CategoryUnused:
		return "SAFE-TO-DELETE"
	}
	return "UNKNOWN"
}

// Priority is the report sort rank. Default groups come first, then the
// safe-to-delete ones, then the interface-bearing ones, then the referenced
// ones. The combined category sorts with the interface bucket.
func (c Category) Priority() int {
	switch c {
	case CategoryDefault:
		return 1
	case CategoryUnused:
		return 2
	case CategoryInterfacesAndReferences, CategoryInterfaces:
		return 3
	case CategoryReferenced:
		return 4
	}
	return 5
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ClassificationRecord is the outcome for one security group with no attached
// instances. It is created once by the classifier and never mutated, except
// for the presentation-only interface owner annotation.
type ClassificationRecord struct {
	Region             string               `json:"region"`
	GroupId            string               `json:"groupId"`
	GroupName          string               `json:"groupName"`
	Description        string               `json:"description"`
	VpcId              string               `json:"vpcId"`
	Category           Category             `json:"category"`
	AttachedInstances  []InstanceAttachment `json:"attachedInstances,omitempty"`
	AttachedInterfaces []NetworkInterface   `json:"attachedInterfaces,omitempty"`
	ReferencedBy       []GroupReference     `json:"referencedBy,omitempty"`
}

// Line returns the canonical machine-parseable form of the record:
// region:groupId [LABEL]
func (r ClassificationRecord) Line() string {
	return fmt.Sprintf("%s:%s [%s]", r.Region, r.GroupId, r.Category.Label())
}
