package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/mkleiven/stoltzen-results/internal/config"
	"github.com/mkleiven/stoltzen-results/internal/result"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

// csvHeader matches the column layout of the published result files.
var csvHeader = []string{
	"Gruppe", "Navn", "Tid", "Klasse", "Deltagelser",
	"BesteTidligere", "BesteÅr", "NyBestetid", "Differanse",
}

func parseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, FormatJSON, FormatCSV:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'csv')", s)
}

// parseGroupFilter validates the --group flag. Empty means no filter.
func parseGroupFilter(s string) (result.Group, error) {
	if s == "" {
		return "", nil
	}
	for _, g := range result.Groups {
		if string(g) == s {
			return g, nil
		}
	}
	return "", fmt.Errorf("invalid group: %s (must be 'Dame', 'Mann' or 'Pluss')", s)
}

// writeResults filters, sorts and writes participants in the
// configured format.
func writeResults(participants []*result.Participant, cfg config.Config) error {
	group, err := parseGroupFilter(flagGroup)
	if err != nil {
		return err
	}
	if group != "" {
		filtered := participants[:0]
		for _, p := range participants {
			if p.Gruppe == group {
				filtered = append(filtered, p)
			}
		}
		participants = filtered
	}

	format, err := parseFormat(cfg.Format)
	if err != nil {
		return err
	}

	result.Sort(participants)

	w, closeOutput, err := openOutput()
	if err != nil {
		return err
	}
	defer closeOutput()

	if err := WriteOutput(w, participants, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// WriteOutput writes the participants in the specified format.
func WriteOutput(w io.Writer, participants []*result.Participant, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, participants)
	case FormatCSV:
		return writeCSV(w, participants)
	case FormatText:
		return writeText(w, participants)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// groupedOutput fixes the JSON key order to Dame, Mann, Pluss. All
// three keys are always present, matching the published result files.
type groupedOutput struct {
	Dame  []*result.Participant `json:"Dame"`
	Mann  []*result.Participant `json:"Mann"`
	Pluss []*result.Participant `json:"Pluss"`
}

func writeJSON(w io.Writer, participants []*result.Participant) error {
	grouped := result.ByGroup(participants)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(groupedOutput{
		Dame:  grouped[result.GroupDame],
		Mann:  grouped[result.GroupMann],
		Pluss: grouped[result.GroupPluss],
	})
}

func writeCSV(w io.Writer, participants []*result.Participant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range participants {
		record := []string{
			string(p.Gruppe),
			p.Navn,
			p.Tid,
			p.Klasse,
			intOrEmpty(p.Deltagelser),
			p.BesteTidligere,
			intOrEmpty(p.BesteAar),
			strconv.FormatBool(p.NyBestetid),
			p.Differanse,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, participants []*result.Participant) error {
	if len(participants) == 0 {
		fmt.Fprintln(w, "No participants found.")
		return nil
	}

	grouped := result.ByGroup(participants)
	for _, group := range result.Groups {
		members := grouped[group]
		if len(members) == 0 {
			continue
		}

		fmt.Fprintf(w, "\n%s (%d):\n", group, len(members))
		for i, p := range members {
			fmt.Fprintf(w, "%4d. %-28s %8s", i+1, p.Navn, displayTime(p.Tid))
			if p.BesteTidligere != "" {
				fmt.Fprintf(w, "  beste %s (%d)  %s", p.BesteTidligere, p.BesteAar, p.Differanse)
			}
			if p.NyBestetid {
				fmt.Fprint(w, "  NY BESTETID")
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "\nTotalt: %d deltakere\n", len(participants))
	return nil
}

func displayTime(t string) string {
	if t == "" {
		return "-"
	}
	return t
}

func intOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
