// Package core implements the security group usage analysis: per-region bulk
// fetching, lookup-table construction, the precedence-based classifier and
// the cross-region aggregation into a deterministic report.
package core

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog"

	coreTypes "sg-audit/pkg/core/types"
)

// FetcherFactory creates the fetcher for one region. The default factory
// loads the AWS configuration for the region; tests inject fakes.
type FetcherFactory func(ctx context.Context, region string) (*RegionFetcher, error)

// Auditor runs the whole analysis across a set of regions. It never mutates
// any cloud resource and keeps no state between runs.
type Auditor struct {
	logger     zerolog.Logger
	newFetcher FetcherFactory
}

type AuditorOption func(*Auditor)

func WithLogger(logger zerolog.Logger) AuditorOption {
	return func(a *Auditor) {
		a.logger = logger
	}
}

func WithFetcherFactory(factory FetcherFactory) AuditorOption {
	return func(a *Auditor) {
		a.newFetcher = factory
	}
}

// NewAuditor creates an Auditor using the shared config profile for AWS
// credentials. An empty profile falls back to the default chain.
func NewAuditor(profile string, opts ...AuditorOption) *Auditor {
	auditor := &Auditor{
		logger: zerolog.Nop(),
		newFetcher: func(ctx context.Context, region string) (*RegionFetcher, error) {
			cfg, err := config.LoadDefaultConfig(ctx,
				config.WithRegion(region), config.WithSharedConfigProfile(profile))
			if err != nil {
				return nil, err
			}
			return NewRegionFetcher(cfg, region), nil
		},
	}
	for _, opt := range opts {
		opt(auditor)
	}
	return auditor
}

// Run analyzes all the given regions and returns the combined report. Regions
// are independent read-only fetches, so they run concurrently; each region's
// working data stays private until it is merged into the aggregator. A failed
// region is skipped with a recorded warning and never aborts the rest of the
// run. The only hard error is an empty region list.
func (a *Auditor) Run(ctx context.Context, regions []string) (*Report, error) {
	if len(regions) == 0 {
		return nil, errors.New("no regions to audit")
	}

	aggregator := NewAggregator()

	var wg sync.WaitGroup
	for _, region := range regions {
		region := region // capture value
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.auditRegion(ctx, region, aggregator)
		}()
	}
	wg.Wait()

	return aggregator.Report(), nil
}

// auditRegion fetches, indexes and classifies a single region and merges the
// outcome into the aggregator.
func (a *Auditor) auditRegion(ctx context.Context, region string, aggregator *Aggregator) {
	fetcher, err := a.newFetcher(ctx, region)
	if err != nil {
		a.logger.Warn().Str("region", region).Err(err).Msg("skipping region: configuration failed")
		aggregator.AddWarning(region, err)
		return
	}

	data, err := fetcher.Fetch(ctx)
	if err != nil {
		a.logger.Warn().Str("region", region).Err(err).Msg("skipping region: fetch failed")
		aggregator.AddWarning(region, err)
		return
	}

	if len(data.SecurityGroups) == 0 {
		a.logger.Info().Str("region", region).Msg("no security groups in region")
		aggregator.Add(region, nil, 0, 0)
		return
	}

	a.logger.Debug().
		Str("region", region).
		Int("securityGroups", len(data.SecurityGroups)).
		Int("instances", len(data.Instances)).
		Int("networkInterfaces", len(data.NetworkInterfaces)).
		Msg("datasets fetched")

	idx := BuildIndexes(data)

	records := make([]coreTypes.ClassificationRecord, 0, len(data.SecurityGroups))
	inUse := 0
	for _, sg := range data.SecurityGroups {
		if record, ok := Classify(sg, idx); ok {
			records = append(records, record)
		} else {
			inUse++
		}
	}

	aggregator.Add(region, records, len(data.SecurityGroups), inUse)
}
