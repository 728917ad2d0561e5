package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sg-audit/cmd/cmdutils"
	"sg-audit/pkg/core"
	coreTypes "sg-audit/pkg/core/types"
)

var (
	Cmd = &cobra.Command{
		Use:   "audit",
		Short: "Analyze security group usage across regions",
		Long: "Enumerates every security group of the given regions, classifies each by actual usage " +
			"(attached instances, idle network interfaces, rule references, default groups) and prints " +
			"a cleanup report. Read-only: nothing is ever deleted.",
		RunE: runAudit,
	}

	output string
)

func runAudit(cmd *cobra.Command, args []string) error {
	regions, err := cmd.Flags().GetStringSlice("region")
	if err != nil {
		return err
	}
	profile, err := cmd.Flags().GetString("profile")
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}

	if len(regions) == 0 {
		return fmt.Errorf("at least one --region is required")
	}

	logLevel := zerolog.InfoLevel
	if verbose {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(logLevel).
		With().Timestamp().Logger()

	auditor := core.NewAuditor(profile, core.WithLogger(logger))

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Analyzing security groups in %d region(s)...", len(regions)))
	report, err := auditor.Run(cmd.Context(), regions)
	if err != nil {
		if spinner != nil {
			spinner.Fail("Analysis failed")
		}
		return err
	}
	if spinner != nil {
		if report.IsPartial() {
			spinner.Warning(fmt.Sprintf("Analysis finished; %d region(s) skipped", len(report.Warnings)))
		} else {
			spinner.Success("Analysis finished")
		}
	}

	if verbose && output == "text" {
		if annotateErr := core.AnnotateReportOwners(cmd.Context(), report, profile); annotateErr != nil {
			logger.Warn().Err(annotateErr).Msg("interface owner annotation incomplete")
		}
	}

	if output == "json" {
		return renderJson(report)
	}
	return renderText(report, verbose)
}

func renderJson(report *core.Report) error {
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func renderText(report *core.Report, verbose bool) error {
	currentRegion := ""
	for _, record := range report.Records {
		if record.Region != currentRegion {
			currentRegion = record.Region
			pterm.DefaultSection.Printf("%s", currentRegion)
		}
		pterm.Printf("%s:%s [%s]\n", record.Region, record.GroupId, cmdutils.GetCategoryLabelColor(record.Category))
		if verbose {
			if err := printRecordDetails(record); err != nil {
				return err
			}
		}
	}

	printSummary(report)

	for _, warning := range report.Warnings {
		pterm.Warning.Printfln("Region %s skipped: %s", warning.Region, warning.Message)
	}
	if report.IsPartial() {
		pterm.Warning.Printfln("The report is partial: only successfully processed regions are included.")
	}
	return nil
}

func printRecordDetails(record coreTypes.ClassificationRecord) error {
	bulletList := []pterm.BulletListItem{
		{Level: 0, Text: fmt.Sprintf("%s (%s)", record.GroupName, record.GroupId)},
		{Level: 1, Text: fmt.Sprintf("Description: %s", record.Description)},
		{Level: 1, Text: fmt.Sprintf("VPC: %s", record.VpcId)},
	}
	if len(record.AttachedInterfaces) > 0 {
		bulletList = append(bulletList, pterm.BulletListItem{Level: 1, Text: "Attached Network Interface(s):"})
		for _, eni := range record.AttachedInterfaces {
			bulletList = append(bulletList, pterm.BulletListItem{Level: 2, Text: fmt.Sprintf("%s", eni.Id)})
			bulletList = append(bulletList, pterm.BulletListItem{Level: 3, Text: fmt.Sprintf("Status: %s", cmdutils.GetInterfaceStatusColor(eni.Status))})
			if eni.Owner != nil {
				ownerText := fmt.Sprintf("Managed by %s: %s", eni.Owner.Kind, eni.Owner.Name)
				if eni.Owner.IsRemoved {
					ownerText += " (already removed, the interface should disappear shortly)"
				}
				bulletList = append(bulletList, pterm.BulletListItem{Level: 3, Text: ownerText})
			}
		}
	}
	if len(record.ReferencedBy) > 0 {
		bulletList = append(bulletList, pterm.BulletListItem{Level: 1, Text: "Referenced by Rule(s):"})
		for _, reference := range record.ReferencedBy {
			bulletList = append(bulletList, pterm.BulletListItem{Level: 2,
				Text: fmt.Sprintf("%s (%s) %s %s %d-%d", reference.ReferencingGroupName, reference.ReferencingGroupId,
					reference.Direction, reference.Protocol, reference.FromPort, reference.ToPort)})
		}
	}
	return pterm.DefaultBulletList.WithItems(bulletList).Render()
}

func printSummary(report *core.Report) {
	tableData := pterm.TableData{
		{"Region", "Default", "Safe to Delete", "Has Interfaces", "Referenced"},
	}

	regions := make([]string, 0, len(report.Counts))
	for region := range report.Counts {
		regions = append(regions, region)
	}
	// Counts is a map; the table needs the same order as the records
	sort.Strings(regions)

	for _, region := range regions {
		counts := report.Counts[region]
		tableData = append(tableData, []string{
			region,
			fmt.Sprintf("%d", counts.Default),
			fmt.Sprintf("%d", counts.CompletelyUnused),
			fmt.Sprintf("%d", counts.HasInterfaces),
			fmt.Sprintf("%d", counts.Referenced),
		})
	}

	pterm.Println()
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		return
	}
	pterm.Printf("Scanned %d security group(s), %d in use by instances, %d unused candidate(s)\n",
		report.Scanned, report.InUse, len(report.Records))
}

func init() {
	includeValidateFlags(Cmd)
}

func includeValidateFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&output, "output", "o", "text",
		"[Optional] Output format: text or json. Default: text")
}
