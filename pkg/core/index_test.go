package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	coreTypes "sg-audit/pkg/core/types"
)

func testSecurityGroup(region, id, name string, ingress, egress []coreTypes.Rule) coreTypes.SecurityGroup {
	return coreTypes.NewSecurityGroup(region, id, name, "test group "+id, "vpc-1", ingress, egress)
}

func refRule(direction coreTypes.RuleDirection, referencedGroupId string) coreTypes.Rule {
	return coreTypes.Rule{
		Direction:         direction,
		Protocol:          "tcp",
		FromPort:          443,
		ToPort:            443,
		ReferencedGroupId: referencedGroupId,
	}
}

func TestBuildIndexesDefaultGroups(t *testing.T) {
	data := &RegionData{
		Region: "eu-west-1",
		SecurityGroups: []coreTypes.SecurityGroup{
			testSecurityGroup("eu-west-1", "sg-1", "default", nil, nil),
			testSecurityGroup("eu-west-1", "sg-2", "web", nil, nil),
		},
	}

	idx := BuildIndexes(data)
	require.True(t, idx.DefaultGroups["sg-1"])
	require.False(t, idx.DefaultGroups["sg-2"])
}

func TestBuildIndexesInstanceAttachments(t *testing.T) {
	data := &RegionData{
		Region: "eu-west-1",
		SecurityGroups: []coreTypes.SecurityGroup{
			testSecurityGroup("eu-west-1", "sg-1", "web", nil, nil),
			testSecurityGroup("eu-west-1", "sg-2", "db", nil, nil),
		},
		Instances: []coreTypes.Instance{
			// One instance under two groups appears in both buckets
			{Id: "i-1", Name: "web", State: "running", GroupIds: []string{"sg-1", "sg-2"}},
			{Id: "i-2", State: "stopped", GroupIds: []string{"sg-2"}},
		},
	}

	idx := BuildIndexes(data)
	require.Len(t, idx.InstancesByGroup["sg-1"], 1)
	require.Len(t, idx.InstancesByGroup["sg-2"], 2)
	require.Equal(t, "i-1", idx.InstancesByGroup["sg-1"][0].InstanceId)
	require.Equal(t, "web", idx.InstancesByGroup["sg-1"][0].Name)
	require.Equal(t, "stopped", idx.InstancesByGroup["sg-2"][1].State)
}

func TestBuildIndexesInterfaceAttachments(t *testing.T) {
	data := &RegionData{
		Region: "eu-west-1",
		NetworkInterfaces: []coreTypes.NetworkInterface{
			{Id: "eni-1", Status: "available", GroupIds: []string{"sg-1"}},
			{Id: "eni-2", Status: "in-use", GroupIds: []string{"sg-1", "sg-2"}},
		},
	}

	idx := BuildIndexes(data)
	require.Len(t, idx.InterfacesByGroup["sg-1"], 2)
	require.Len(t, idx.InterfacesByGroup["sg-2"], 1)
	require.Equal(t, "eni-2", idx.InterfacesByGroup["sg-2"][0].Id)
}

func TestBuildIndexesReferencesIndexedByTarget(t *testing.T) {
	data := &RegionData{
		Region: "eu-west-1",
		SecurityGroups: []coreTypes.SecurityGroup{
			testSecurityGroup("eu-west-1", "sg-4", "app", nil, nil),
			testSecurityGroup("eu-west-1", "sg-5", "lb",
				[]coreTypes.Rule{refRule(coreTypes.DirectionIngress, "sg-4")},
				[]coreTypes.Rule{refRule(coreTypes.DirectionEgress, "sg-4")}),
		},
	}

	idx := BuildIndexes(data)
	// References land in the referenced group's bucket, not the referencing one
	require.Empty(t, idx.ReferencesByGroup["sg-5"])
	require.Len(t, idx.ReferencesByGroup["sg-4"], 2)

	ingressRef := idx.ReferencesByGroup["sg-4"][0]
	require.Equal(t, "sg-4", ingressRef.ReferencedGroupId)
	require.Equal(t, "sg-5", ingressRef.ReferencingGroupId)
	require.Equal(t, "lb", ingressRef.ReferencingGroupName)
	require.Equal(t, coreTypes.DirectionIngress, ingressRef.Direction)
	require.Equal(t, coreTypes.DirectionEgress, idx.ReferencesByGroup["sg-4"][1].Direction)
}

func TestBuildIndexesSelfReference(t *testing.T) {
	data := &RegionData{
		Region: "eu-west-1",
		SecurityGroups: []coreTypes.SecurityGroup{
			testSecurityGroup("eu-west-1", "sg-1", "cluster",
				[]coreTypes.Rule{refRule(coreTypes.DirectionIngress, "sg-1")}, nil),
		},
	}

	idx := BuildIndexes(data)
	require.Len(t, idx.ReferencesByGroup["sg-1"], 1)
	require.Equal(t, "sg-1", idx.ReferencesByGroup["sg-1"][0].ReferencingGroupId)
}

func TestBuildIndexesDanglingReferenceKept(t *testing.T) {
	data := &RegionData{
		Region: "eu-west-1",
		SecurityGroups: []coreTypes.SecurityGroup{
			testSecurityGroup("eu-west-1", "sg-1", "app",
				[]coreTypes.Rule{refRule(coreTypes.DirectionIngress, "sg-other-account")}, nil),
		},
	}

	// The referenced id resolves to no group of this run; it is still recorded
	idx := BuildIndexes(data)
	require.Len(t, idx.ReferencesByGroup["sg-other-account"], 1)
}

func TestBuildIndexesIgnoresCidrRules(t *testing.T) {
	data := &RegionData{
		Region: "eu-west-1",
		SecurityGroups: []coreTypes.SecurityGroup{
			testSecurityGroup("eu-west-1", "sg-1", "app",
				[]coreTypes.Rule{{Direction: coreTypes.DirectionIngress, Protocol: "tcp", FromPort: 80, ToPort: 80}}, nil),
		},
	}

	idx := BuildIndexes(data)
	require.Empty(t, idx.ReferencesByGroup)
}
