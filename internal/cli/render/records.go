package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// RecordsRenderer renders the deployment registry
type RecordsRenderer struct {
	out io.Writer
}

// NewRecordsRenderer creates a new records renderer
func NewRecordsRenderer(out io.Writer) *RecordsRenderer {
	return &RecordsRenderer{out: out}
}

// Render displays records grouped by network
func (r *RecordsRenderer) Render(result *usecase.RecordListResult) error {
	if len(result.Records) == 0 {
		fmt.Fprintln(r.out, "No deployments found")
		return nil
	}

	networks := make([]domain.NetworkID, 0, len(result.ByNetwork))
	for n := range result.ByNetwork {
		networks = append(networks, n)
	}
	sort.Slice(networks, func(i, j int) bool { return networks[i] < networks[j] })

	for _, network := range networks {
		records := result.ByNetwork[network]
		color.New(color.FgBlack, color.BgCyan).Fprintf(r.out, " ⛓️ chain       │ %s ", network)
		fmt.Fprintln(r.out)

		t := newTable(r.out)
		t.AppendHeader(table.Row{"Name", "Address", "Artifact", "Origin", "Recorded"})
		for _, rec := range records {
			origin := color.New(color.FgHiBlack).Sprint("existing")
			if !rec.Marker.Existing {
				origin = color.New(color.FgGreen).Sprintf("tx %s", shortHash(rec.Marker.TxHash.Hex()))
			}
			t.AppendRow(table.Row{
				color.New(color.FgYellow, color.Bold).Sprint(rec.Name),
				rec.Address.Hex(),
				rec.Artifact,
				origin,
				rec.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			})
		}
		t.Render()
		fmt.Fprintln(r.out)
	}

	fmt.Fprintf(r.out, "Total deployments: %d\n", len(result.Records))
	return nil
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:10] + "…" + h[len(h)-4:]
}
