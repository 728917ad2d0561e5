package clients

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	cmap "github.com/orcaman/concurrent-map/v2"

	coreTypes "sg-audit/pkg/core/types"
)

var (
	ecsEniPattern        = regexp.MustCompile(".+:ecs:.+:attachment/.+")
	ecsAttachmentPattern = regexp.MustCompile(".+attachment/(?P<attachmentId>.+)")
)

type AwsEcsClient struct {
	client *ecs.Client
	cache  cmap.ConcurrentMap[string, *coreTypes.InterfaceOwner]
}

func NewAwsEcsClient(cfg aws.Config) *AwsEcsClient {
	return &AwsEcsClient{
		client: ecs.NewFromConfig(cfg),
		cache:  cmap.New[*coreTypes.InterfaceOwner](),
	}
}

// Resolve returns the ECS task owning the network interface, detected from
// the attachment id ECS writes into the interface description. If the
// interface is not managed by ECS, the returned value is nil.
func (c *AwsEcsClient) Resolve(ctx context.Context, eni coreTypes.NetworkInterface) (*coreTypes.InterfaceOwner, error) {
	if !ecsEniPattern.MatchString(eni.Description) {
		return nil, nil
	}

	if c.cache.IsEmpty() {
		if err := c.buildCache(ctx); err != nil {
			return nil, err
		}
	}

	match := ecsAttachmentPattern.FindStringSubmatch(eni.Description)
	if len(match) > 0 {
		attachmentId := match[ecsAttachmentPattern.SubexpIndex("attachmentId")]
		if owner, ok := c.cache.Get(attachmentId); ok {
			return owner, nil
		}
	}

	// The description names an ECS attachment but no running task holds it
	return &coreTypes.InterfaceOwner{Kind: "ecs", IsRemoved: true}, nil
}

// buildCache walks every cluster and task once and indexes the task network
// attachments by attachment id. Further lookups are cache hits.
func (c *AwsEcsClient) buildCache(ctx context.Context) error {
	var nextToken *string

	clusterArns := make([]string, 0)
	for {
		clusters, err := c.client.ListClusters(ctx, &ecs.ListClustersInput{NextToken: nextToken})
		if err != nil {
			return err
		}

		clusterArns = append(clusterArns, clusters.ClusterArns...)
		nextToken = clusters.NextToken

		if nextToken == nil {
			break
		}
	}

	for _, clusterArn := range clusterArns {
		clusterArn := clusterArn
		for {
			taskResponse, err := c.client.ListTasks(ctx, &ecs.ListTasksInput{
				Cluster:    &clusterArn,
				MaxResults: aws.Int32(int32(100)),
				NextToken:  nextToken,
			})
			if err != nil {
				return err
			}

			if len(taskResponse.TaskArns) > 0 {
				describeTaskResponse, err := c.client.DescribeTasks(ctx, &ecs.DescribeTasksInput{
					Tasks:   taskResponse.TaskArns,
					Cluster: &clusterArn,
				})
				if err != nil {
					return err
				}

				for _, task := range describeTaskResponse.Tasks {
					for _, container := range task.Containers {
						for _, ifc := range container.NetworkInterfaces {
							if ifc.AttachmentId == nil {
								continue
							}
							c.cache.Set(*ifc.AttachmentId, &coreTypes.InterfaceOwner{
								Kind: "ecs",
								Name: fmt.Sprintf("%s\\%s", clusterArn, aws.ToString(container.Name)),
								Arn:  task.TaskArn,
							})
						}
					}
				}
			}

			nextToken = taskResponse.NextToken
			if nextToken == nil {
				break
			}
		}
	}

	return nil
}
