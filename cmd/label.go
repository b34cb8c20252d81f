// File: cmd/label.go
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okabe-dev/cartwalk/internal/dataset"
)

var labelInput string

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Interactively label collected rows as good or bad.",
	Long: `Label walks every unlabelled row in the dataset, prints its key
signals and asks for a verdict: g (good), b (bad) or s (skip). Verdicts
are written back into the CSV's label column.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLabel(labelInput, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	labelCmd.Flags().StringVarP(&labelInput, "input", "i", "", "CSV file to label (required)")
	labelCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(labelCmd)
}

// signalColumns are shown to the labeller for each row, with a display hint.
var signalColumns = []struct {
	name   string
	title  string
	suffix string
}{
	{"trust_score", "Trust score", "/8"},
	{"performance_score", "Performance", "/100"},
	{"lcp_ms", "LCP", " ms"},
	{"popup_count", "Popup count", ""},
	{"has_guest_checkout", "Guest checkout", ""},
	{"click_depth_to_checkout", "Click depth", ""},
	{"visual_overall", "Visual overall", "/10"},
}

func runLabel(path string, in io.Reader, out io.Writer) error {
	records, err := dataset.LoadRecords(path)
	if err != nil {
		return err
	}
	if len(records) < 2 {
		fmt.Fprintln(out, "Dataset is empty, nothing to label.")
		return nil
	}

	header := records[0]
	labelIdx := columnIndex(header, "label")
	urlIdx := columnIndex(header, "url")
	if labelIdx < 0 || urlIdx < 0 {
		return fmt.Errorf("dataset %s is missing the url or label column", path)
	}

	var unlabelled []int
	for i := 1; i < len(records); i++ {
		if labelIdx >= len(records[i]) || strings.TrimSpace(records[i][labelIdx]) == "" {
			unlabelled = append(unlabelled, i)
		}
	}
	if len(unlabelled) == 0 {
		fmt.Fprintln(out, "All rows are already labelled.")
		return nil
	}

	fmt.Fprintf(out, "Found %d unlabelled row(s). Press Ctrl+C to stop.\n\n", len(unlabelled))
	scanner := bufio.NewScanner(in)

	for _, idx := range unlabelled {
		row := records[idx]
		fmt.Fprintln(out, strings.Repeat("-", 60))
		fmt.Fprintf(out, "URL:              %s\n", cell(row, urlIdx))
		for _, col := range signalColumns {
			ci := columnIndex(header, col.name)
			fmt.Fprintf(out, "%-17s %s%s\n", col.title+":", cell(row, ci), col.suffix)
		}

		choice, err := askChoice(scanner, out)
		if err != nil {
			break
		}

		// Rows can be short when a collection attempt failed; pad before
		// writing the label.
		for len(row) <= labelIdx {
			row = append(row, "")
		}
		switch choice {
		case "g":
			row[labelIdx] = "good"
		case "b":
			row[labelIdx] = "bad"
		default:
			fmt.Fprintln(out, "Skipped.")
		}
		records[idx] = row
	}

	if err := dataset.WriteRecords(path, records); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nLabels saved to %s\n", path)
	printLabelCounts(out, records, labelIdx)
	return nil
}

func askChoice(scanner *bufio.Scanner, out io.Writer) (string, error) {
	for {
		fmt.Fprint(out, "\nLabel [g=good / b=bad / s=skip]: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		choice := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if choice == "g" || choice == "b" || choice == "s" {
			return choice, nil
		}
		fmt.Fprintln(out, "Please enter g, b, or s.")
	}
}

func printLabelCounts(out io.Writer, records [][]string, labelIdx int) {
	counts := make(map[string]int)
	for i := 1; i < len(records); i++ {
		if labelIdx < len(records[i]) {
			if label := strings.TrimSpace(records[i][labelIdx]); label != "" {
				counts[label]++
			}
		}
	}
	for label, n := range counts {
		fmt.Fprintf(out, "%s: %d\n", label, n)
	}
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
		return "?"
	}
	return row[idx]
}
