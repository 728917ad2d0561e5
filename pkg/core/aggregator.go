package core

import (
	"sort"

	cmap "github.com/orcaman/concurrent-map/v2"

	coreTypes "sg-audit/pkg/core/types"
)

// RegionCounts are the per-category totals of one region's records.
type RegionCounts struct {
	Default          int `json:"default"`
	CompletelyUnused int `json:"completelyUnused"`
	HasInterfaces    int `json:"hasInterfaces"`
	Referenced       int `json:"referenced"`
}

// Warning records a region that could not be processed. A report carrying
// warnings is partial.
type Warning struct {
	Region  string `json:"region"`
	Message string `json:"message"`
}

// Report is the final, deterministically ordered result of one run.
type Report struct {
	// Records are sorted by (region asc, category priority asc, group id asc).
	Records []coreTypes.ClassificationRecord `json:"records"`

	// Counts holds per-region category totals for every successfully
	// processed region, including empty ones.
	Counts map[string]RegionCounts `json:"counts"`

	// Scanned is the number of groups examined; InUse the number excluded
	// because instances are attached. Scanned - InUse == len(Records).
	Scanned int `json:"scanned"`
	InUse   int `json:"inUse"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// IsPartial reports whether at least one region was skipped.
func (r *Report) IsPartial() bool {
	return len(r.Warnings) > 0
}

// Lines returns the canonical region:groupId [LABEL] line per record, in
// report order.
func (r *Report) Lines() []string {
	lines := make([]string, 0, len(r.Records))
	for _, record := range r.Records {
		lines = append(lines, record.Line())
	}
	return lines
}

type regionResult struct {
	records []coreTypes.ClassificationRecord
	scanned int
	inUse   int
}

// Aggregator accumulates per-region results into a single report. Regions are
// processed concurrently, so the per-region buffers land in concurrent maps;
// each region writes its own key exactly once. Ordering is imposed by the
// final sort, never by completion order.
type Aggregator struct {
	regions  cmap.ConcurrentMap[string, regionResult]
	warnings cmap.ConcurrentMap[string, Warning]
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		regions:  cmap.New[regionResult](),
		warnings: cmap.New[Warning](),
	}
}

// Add merges one completed region. records may be empty for a region with no
// security groups.
func (a *Aggregator) Add(region string, records []coreTypes.ClassificationRecord, scanned, inUse int) {
	a.regions.Set(region, regionResult{records: records, scanned: scanned, inUse: inUse})
}

// AddWarning records a skipped region.
func (a *Aggregator) AddWarning(region string, err error) {
	a.warnings.Set(region, Warning{Region: region, Message: err.Error()})
}

// Report flattens the accumulated regions into the final sorted report.
// Running it twice on the same accumulated state yields identical output.
func (a *Aggregator) Report() *Report {
	report := &Report{
		Records: make([]coreTypes.ClassificationRecord, 0),
		Counts:  make(map[string]RegionCounts),
	}

	for region, result := range a.regions.Items() {
		report.Records = append(report.Records, result.records...)
		report.Scanned += result.scanned
		report.InUse += result.inUse

		counts := RegionCounts{}
		for _, record := range result.records {
			switch record.Category {
			case coreTypes.CategoryDefault:
				counts.Default++
			case coreTypes.CategoryUnused:
				counts.CompletelyUnused++
			case coreTypes.CategoryInterfaces, coreTypes.CategoryInterfacesAndReferences:
				counts.HasInterfaces++
			case coreTypes.CategoryReferenced:
				counts.Referenced++
			}
		}
		report.Counts[region] = counts
	}

	sort.Slice(report.Records, func(i, j int) bool {
		left, right := report.Records[i], report.Records[j]
		if left.Region != right.Region {
			return left.Region < right.Region
		}
		if left.Category.Priority() != right.Category.Priority() {
			return left.Category.Priority() < right.Category.Priority()
		}
		return left.GroupId < right.GroupId
	})

	for _, warning := range a.warnings.Items() {
		report.Warnings = append(report.Warnings, warning)
	}
	sort.Slice(report.Warnings, func(i, j int) bool {
		return report.Warnings[i].Region < report.Warnings[j].Region
	})

	return report
}
