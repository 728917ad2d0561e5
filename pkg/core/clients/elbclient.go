package clients

import (
	"context"
	"errors"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbTypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	cmap "github.com/orcaman/concurrent-map/v2"

	coreTypes "sg-audit/pkg/core/types"
)

var elbEniPattern = regexp.MustCompile("ELB app/(?P<elbName>.+)/(?P<elbId>([a-z]|[0-9])+)")

type AwsElbClient struct {
	client *elasticloadbalancingv2.Client
	cache  cmap.ConcurrentMap[string, *coreTypes.InterfaceOwner]
}

func NewAwsElbClient(cfg aws.Config) *AwsElbClient {
	return &AwsElbClient{
		client: elasticloadbalancingv2.NewFromConfig(cfg),
		cache:  cmap.New[*coreTypes.InterfaceOwner](),
	}
}

// Resolve returns the load balancer owning the network interface, detected
// from its description. If the interface is not managed by an ELB, the
// returned value is nil.
func (c *AwsElbClient) Resolve(ctx context.Context, eni coreTypes.NetworkInterface) (*coreTypes.InterfaceOwner, error) {
	if eni.Type != "interface" {
		return nil, nil
	}

	match := elbEniPattern.FindStringSubmatch(eni.Description)
	if len(match) == 0 {
		return nil, nil
	}
	elbName := match[elbEniPattern.SubexpIndex("elbName")]

	if cachedOwner, ok := c.cache.Get(elbName); ok {
		return cachedOwner, nil
	}

	loadBalancers, err := c.client.DescribeLoadBalancers(ctx,
		&elasticloadbalancingv2.DescribeLoadBalancersInput{Names: []string{elbName}})
	if err != nil {
		// A deleted load balancer leaves its ENIs behind for a while
		var notFound *elbTypes.LoadBalancerNotFoundException
		if errors.As(err, &notFound) {
			owner := &coreTypes.InterfaceOwner{Kind: "elb", Name: elbName, IsRemoved: true}
			c.cache.Set(elbName, owner)
			return owner, nil
		}
		return nil, err
	}

	for _, elb := range loadBalancers.LoadBalancers {
		owner := &coreTypes.InterfaceOwner{
			Kind:      "elb",
			Name:      elbName,
			Arn:       elb.LoadBalancerArn,
			IsRemoved: elb.LoadBalancerArn == nil,
		}

		c.cache.Set(elbName, owner)

		// It is expected that we will have only one load balancer as a result
		return owner, nil
	}

	return &coreTypes.InterfaceOwner{Kind: "elb", Name: elbName, IsRemoved: true}, nil
}
