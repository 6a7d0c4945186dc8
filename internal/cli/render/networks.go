package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NetworksRenderer renders configured networks
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// Render displays the network list
func (r *NetworksRenderer) Render(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in sling.toml [networks]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"", "Name", "Chain ID", "Factory", "Signer", "Confirm"})
	for _, n := range result.Networks {
		if n.Error != nil {
			t.AppendRow(table.Row{
				color.New(color.FgRed).Sprint("❌"),
				n.Name,
				color.New(color.FgRed).Sprint(n.Error.Error()),
				"", "", "",
			})
			continue
		}
		factory := color.New(color.FgHiBlack).Sprint(domain.DefaultFactory.Hex())
		if n.CustomFactory {
			factory = n.Network.Factory.Hex()
		}
		signer := color.New(color.FgYellow).Sprint("read-only")
		if n.HasSigner {
			signer = "key"
		}
		confirm := ""
		if n.Network.Confirm {
			confirm = "yes"
		}
		t.AppendRow(table.Row{
			color.New(color.FgGreen).Sprint("✅"),
			n.Name,
			n.Network.ChainID.String(),
			factory,
			signer,
			confirm,
		})
	}
	t.Render()
	return nil
}
