package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"sg-audit/pkg/core/clients"
	coreTypes "sg-audit/pkg/core/types"
	"sg-audit/pkg/core/utils"
)

// RegionData holds the three raw datasets of one region. It is the only input
// of the index builder and is private to the region being processed.
type RegionData struct {
	Region            string
	SecurityGroups    []coreTypes.SecurityGroup
	Instances         []coreTypes.Instance
	NetworkInterfaces []coreTypes.NetworkInterface
}

// RegionFetcher retrieves the three datasets of a region, each via a single
// bulk call. It never issues per-group calls.
type RegionFetcher struct {
	ec2    *clients.AwsEc2Client
	region string
}

func NewRegionFetcher(cfg aws.Config, region string) *RegionFetcher {
	return &RegionFetcher{
		ec2:    clients.NewAwsEc2Client(cfg, region),
		region: region,
	}
}

// NewRegionFetcherWithApi creates a fetcher on top of an existing EC2 API
// implementation. Used by tests to inject fakes.
func NewRegionFetcherWithApi(api clients.Ec2Api, region string) *RegionFetcher {
	return &RegionFetcher{
		ec2:    clients.NewAwsEc2ClientWithApi(api, region),
		region: region,
	}
}

// Fetch retrieves security groups, instances and network interfaces for the
// region. The three bulk calls run concurrently; all of them have to finish
// before the data is handed over. A single failed call fails the whole
// region. An empty region is a valid result, not an error.
func (f *RegionFetcher) Fetch(ctx context.Context) (*RegionData, error) {
	sgCh := make(chan utils.Result[[]coreTypes.SecurityGroup], 1)
	instanceCh := make(chan utils.Result[[]coreTypes.Instance], 1)
	ifcCh := make(chan utils.Result[[]coreTypes.NetworkInterface], 1)

	f.ec2.DescribeSecurityGroups(ctx, sgCh)
	f.ec2.DescribeInstances(ctx, instanceCh)
	f.ec2.DescribeNetworkInterfaces(ctx, ifcCh)

	sgResult := <-sgCh
	instanceResult := <-instanceCh
	ifcResult := <-ifcCh

	if sgResult.Err != nil {
		return nil, fmt.Errorf("describe security groups in %s: %w", f.region, sgResult.Err)
	}
	if instanceResult.Err != nil {
		return nil, fmt.Errorf("describe instances in %s: %w", f.region, instanceResult.Err)
	}
	if ifcResult.Err != nil {
		return nil, fmt.Errorf("describe network interfaces in %s: %w", f.region, ifcResult.Err)
	}

	return &RegionData{
		Region:            f.region,
		SecurityGroups:    sgResult.Data,
		Instances:         instanceResult.Data,
		NetworkInterfaces: ifcResult.Data,
	}, nil
}
