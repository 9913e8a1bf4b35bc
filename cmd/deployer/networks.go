package main

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newNetworksCmd(app func() *application) *cobra.Command {
	return &cobra.Command{
		Use:   "networks",
		Short: "List the configured networks",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Name", "Display Name", "Backend", "Chain ID", "Symbol", "RPC", "Credentials")
			for _, p := range app().registry.Profiles() {
				s := p.Summary()
				chainID := "auto"
				if s.ChainID != nil {
					chainID = strconv.FormatUint(*s.ChainID, 10)
				}
				_ = table.Append([]string{
					s.Name,
					s.DisplayName,
					string(s.Backend),
					chainID,
					s.NativeSymbol,
					yesNo(s.RPCConfigured),
					yesNo(s.HasCredentials),
				})
			}
			return table.Render()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
