package clients

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	coreTypes "sg-audit/pkg/core/types"
	"sg-audit/pkg/core/utils"
)

const MaxResults = 1000

// Ec2Api is the narrow EC2 surface used for the three bulk fetches. Tests
// provide fakes for it.
type Ec2Api interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeNetworkInterfaces(ctx context.Context, params *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error)
}

type AwsEc2Client struct {
	client Ec2Api
	region string
}

func NewAwsEc2Client(cfg aws.Config, region string) *AwsEc2Client {
	return &AwsEc2Client{
		client: ec2.NewFromConfig(cfg),
		region: region,
	}
}

// NewAwsEc2ClientWithApi creates a client on top of an existing Ec2Api
// implementation. Used by tests to inject fakes.
func NewAwsEc2ClientWithApi(api Ec2Api, region string) *AwsEc2Client {
	return &AwsEc2Client{
		client: api,
		region: region,
	}
}

// DescribeSecurityGroups fetches every Security Group of the region with a
// single paginated bulk call and converts the responses to typed records.
// The result is delivered asynchronously on resultCh.
func (c *AwsEc2Client) DescribeSecurityGroups(ctx context.Context, resultCh chan utils.Result[[]coreTypes.SecurityGroup]) {
	go func() {
		defer close(resultCh)

		var nextToken *string
		securityGroups := make([]coreTypes.SecurityGroup, 0)
		for {
			sgResponse, err := c.client.DescribeSecurityGroups(ctx,
				&ec2.DescribeSecurityGroupsInput{
					NextToken:  nextToken,
					MaxResults: aws.Int32(int32(MaxResults)),
				})
			if err != nil {
				resultCh <- utils.Failure[[]coreTypes.SecurityGroup](err)
				return
			}
			for _, sg := range sgResponse.SecurityGroups {
				securityGroups = append(securityGroups, c.convertSecurityGroup(sg))
			}
			nextToken = sgResponse.NextToken

			if nextToken == nil {
				resultCh <- utils.Ok(securityGroups)
				return
			}
		}
	}()
}

// DescribeInstances fetches every instance of the region, in any state, with
// a single paginated bulk call. The result is delivered asynchronously on
// resultCh.
func (c *AwsEc2Client) DescribeInstances(ctx context.Context, resultCh chan utils.Result[[]coreTypes.Instance]) {
	go func() {
		defer close(resultCh)

		var nextToken *string
		instances := make([]coreTypes.Instance, 0)
		for {
			instanceResponse, err := c.client.DescribeInstances(ctx,
				&ec2.DescribeInstancesInput{
					NextToken:  nextToken,
					MaxResults: aws.Int32(int32(MaxResults)),
				})
			if err != nil {
				resultCh <- utils.Failure[[]coreTypes.Instance](err)
				return
			}
			for _, reservation := range instanceResponse.Reservations {
				for _, instance := range reservation.Instances {
					instances = append(instances, convertInstance(instance))
				}
			}
			nextToken = instanceResponse.NextToken

			if nextToken == nil {
				resultCh <- utils.Ok(instances)
				return
			}
		}
	}()
}

// DescribeNetworkInterfaces fetches every network interface of the region
// with a single paginated bulk call. The result is delivered asynchronously
// on resultCh.
func (c *AwsEc2Client) DescribeNetworkInterfaces(ctx context.Context, resultCh chan utils.Result[[]coreTypes.NetworkInterface]) {
	go func() {
		defer close(resultCh)

		var nextToken *string
		interfaces := make([]coreTypes.NetworkInterface, 0)
		for {
			ifcResponse, err := c.client.DescribeNetworkInterfaces(ctx,
				&ec2.DescribeNetworkInterfacesInput{
					NextToken:  nextToken,
					MaxResults: aws.Int32(int32(MaxResults)),
				})
			if err != nil {
				resultCh <- utils.Failure[[]coreTypes.NetworkInterface](err)
				return
			}
			for _, ifc := range ifcResponse.NetworkInterfaces {
				interfaces = append(interfaces, convertNetworkInterface(ifc))
			}
			nextToken = ifcResponse.NextToken

			if nextToken == nil {
				resultCh <- utils.Ok(interfaces)
				return
			}
		}
	}()
}

// convertSecurityGroup maps the SDK shape to the typed record. All optional
// field handling happens here so downstream code never sees a nil pointer.
func (c *AwsEc2Client) convertSecurityGroup(sg ec2Types.SecurityGroup) coreTypes.SecurityGroup {
	return coreTypes.NewSecurityGroup(
		c.region,
		aws.ToString(sg.GroupId),
		aws.ToString(sg.GroupName),
		aws.ToString(sg.Description),
		aws.ToString(sg.VpcId),
		convertRules(sg.IpPermissions, coreTypes.DirectionIngress),
		convertRules(sg.IpPermissionsEgress, coreTypes.DirectionEgress),
	)
}

// convertRules flattens IP permissions into one rule per target: one per
// referenced group and one per plain CIDR range.
func convertRules(permissions []ec2Types.IpPermission, direction coreTypes.RuleDirection) []coreTypes.Rule {
	rules := make([]coreTypes.Rule, 0)
	for _, permission := range permissions {
		base := coreTypes.Rule{
			Direction: direction,
			Protocol:  aws.ToString(permission.IpProtocol),
			FromPort:  aws.ToInt32(permission.FromPort),
			ToPort:    aws.ToInt32(permission.ToPort),
		}
		for _, pair := range permission.UserIdGroupPairs {
			rule := base
			rule.ReferencedGroupId = aws.ToString(pair.GroupId)
			rules = append(rules, rule)
		}
		for range permission.IpRanges {
			rules = append(rules, base)
		}
		for range permission.Ipv6Ranges {
			rules = append(rules, base)
		}
	}
	return rules
}

func convertInstance(instance ec2Types.Instance) coreTypes.Instance {
	state := ""
	if instance.State != nil {
		state = string(instance.State.Name)
	}

	name := ""
	for _, tag := range instance.Tags {
		if aws.ToString(tag.Key) == "Name" {
			name = aws.ToString(tag.Value)
			break
		}
	}

	groupIds := make([]string, 0, len(instance.SecurityGroups))
	for _, group := range instance.SecurityGroups {
		if group.GroupId != nil {
			groupIds = append(groupIds, *group.GroupId)
		}
	}

	return coreTypes.Instance{
		Id:       aws.ToString(instance.InstanceId),
		Name:     name,
		State:    state,
		GroupIds: groupIds,
	}
}

func convertNetworkInterface(ifc ec2Types.NetworkInterface) coreTypes.NetworkInterface {
	groupIds := make([]string, 0, len(ifc.Groups))
	for _, group := range ifc.Groups {
		if group.GroupId != nil {
			groupIds = append(groupIds, *group.GroupId)
		}
	}

	return coreTypes.NetworkInterface{
		Id:          aws.ToString(ifc.NetworkInterfaceId),
		Description: aws.ToString(ifc.Description),
		Type:        string(ifc.InterfaceType),
		Status:      string(ifc.Status),
		VpcId:       aws.ToString(ifc.VpcId),
		GroupIds:    groupIds,
	}
}
