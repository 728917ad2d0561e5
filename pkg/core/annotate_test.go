package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	coreTypes "sg-audit/pkg/core/types"
)

type fakeResolver struct {
	kind    string
	matches func(eni coreTypes.NetworkInterface) bool
	err     error
}

func (f *fakeResolver) Resolve(_ context.Context, eni coreTypes.NetworkInterface) (*coreTypes.InterfaceOwner, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.matches(eni) {
		return &coreTypes.InterfaceOwner{Kind: f.kind, Name: f.kind + "-owner"}, nil
	}
	return nil, nil
}

func TestAnnotateFirstClaimingResolverWins(t *testing.T) {
	records := []coreTypes.ClassificationRecord{
		{
			Region:   "eu-west-1",
			GroupId:  "sg-1",
			Category: coreTypes.CategoryInterfaces,
			AttachedInterfaces: []coreTypes.NetworkInterface{
				{Id: "eni-lambda", Type: "lambda"},
				{Id: "eni-other", Type: "interface"},
			},
		},
	}

	resolvers := []OwnerResolver{
		&fakeResolver{kind: "lambda", matches: func(eni coreTypes.NetworkInterface) bool { return eni.Type == "lambda" }},
		&fakeResolver{kind: "catchall", matches: func(eni coreTypes.NetworkInterface) bool { return true }},
	}

	err := AnnotateInterfaceOwners(context.Background(), records, resolvers)
	require.NoError(t, err)

	require.NotNil(t, records[0].AttachedInterfaces[0].Owner)
	require.Equal(t, "lambda", records[0].AttachedInterfaces[0].Owner.Kind)
	require.NotNil(t, records[0].AttachedInterfaces[1].Owner)
	require.Equal(t, "catchall", records[0].AttachedInterfaces[1].Owner.Kind)

	// Annotation never touches the classification itself
	require.Equal(t, coreTypes.CategoryInterfaces, records[0].Category)
}

func TestAnnotateUnclaimedInterfaceStaysBare(t *testing.T) {
	records := []coreTypes.ClassificationRecord{
		{
			GroupId:            "sg-1",
			Category:           coreTypes.CategoryInterfaces,
			AttachedInterfaces: []coreTypes.NetworkInterface{{Id: "eni-1", Type: "interface"}},
		},
	}

	resolvers := []OwnerResolver{
		&fakeResolver{kind: "lambda", matches: func(eni coreTypes.NetworkInterface) bool { return false }},
	}

	err := AnnotateInterfaceOwners(context.Background(), records, resolvers)
	require.NoError(t, err)
	require.Nil(t, records[0].AttachedInterfaces[0].Owner)
}

func TestAnnotateResolverErrorSurfaces(t *testing.T) {
	records := []coreTypes.ClassificationRecord{
		{
			GroupId:            "sg-1",
			AttachedInterfaces: []coreTypes.NetworkInterface{{Id: "eni-1"}},
		},
	}

	resolvers := []OwnerResolver{&fakeResolver{err: errors.New("access denied")}}

	err := AnnotateInterfaceOwners(context.Background(), records, resolvers)
	require.Error(t, err)
	require.Contains(t, err.Error(), "eni-1")
}
