package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"

	"sg-audit/pkg/core/clients"
	coreTypes "sg-audit/pkg/core/types"
)

// OwnerResolver resolves the AWS resource managing a network interface.
// Resolvers return nil when the interface is not theirs.
type OwnerResolver interface {
	Resolve(ctx context.Context, eni coreTypes.NetworkInterface) (*coreTypes.InterfaceOwner, error)
}

// AnnotateInterfaceOwners fills the Owner field on the attached interfaces of
// the given records, trying each resolver in order until one claims the
// interface. Annotation is presentation detail: it never changes a record's
// category.
func AnnotateInterfaceOwners(ctx context.Context, records []coreTypes.ClassificationRecord, resolvers []OwnerResolver) error {
	for i := range records {
		for j := range records[i].AttachedInterfaces {
			eni := records[i].AttachedInterfaces[j]
			for _, resolver := range resolvers {
				owner, err := resolver.Resolve(ctx, eni)
				if err != nil {
					return fmt.Errorf("resolve owner of %s: %w", eni.Id, err)
				}
				if owner != nil {
					records[i].AttachedInterfaces[j].Owner = owner
					break
				}
			}
		}
	}
	return nil
}

// AnnotateReportOwners annotates every record of the report, region by
// region, with Lambda, ECS and ELB ownership of the idle interfaces.
func AnnotateReportOwners(ctx context.Context, report *Report, profile string) error {
	byRegion := make(map[string][]coreTypes.ClassificationRecord)
	for _, record := range report.Records {
		byRegion[record.Region] = append(byRegion[record.Region], record)
	}

	for region, records := range byRegion {
		cfg, err := config.LoadDefaultConfig(ctx,
			config.WithRegion(region), config.WithSharedConfigProfile(profile))
		if err != nil {
			return fmt.Errorf("load config for %s: %w", region, err)
		}

		resolvers := []OwnerResolver{
			clients.NewAwsLambdaClient(cfg),
			clients.NewAwsEcsClient(cfg),
			clients.NewAwsElbClient(cfg),
		}
		if err := AnnotateInterfaceOwners(ctx, records, resolvers); err != nil {
			return err
		}
	}
	return nil
}
