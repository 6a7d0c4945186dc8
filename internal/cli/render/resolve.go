package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// RenderResolved prints an address book lookup
func RenderResolved(out io.Writer, result *usecase.ResolvedAddress) error {
	version := result.Version
	if version == "" {
		version = "latest"
	}
	fmt.Fprintf(out, "%s@%s on %s: ", result.Family, version, result.Network.Name)
	color.New(color.FgGreen, color.Bold).Fprintln(out, result.Address.Hex())
	return nil
}
