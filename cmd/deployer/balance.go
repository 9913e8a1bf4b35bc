package main

import (
	"fmt"

	"contract_deployer/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

type balanceOptions struct {
	network string
	address string
}

func newBalanceCmd(app func() *application) *cobra.Command {
	opts := &balanceOptions{}
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Check the connection to a network and show the deployer balance",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.address != "" && !common.IsHexAddress(opts.address) {
				return usageError{err: fmt.Errorf("invalid --address %q", opts.address)}
			}
			a := app()
			ctx := cmd.Context()

			profile, err := a.registry.Resolve(opts.network)
			if err != nil {
				return err
			}

			var account common.Address
			if opts.address != "" {
				account = common.HexToAddress(opts.address)
			} else {
				s, err := a.signers.SignerFor(profile)
				if err != nil {
					return err
				}
				account = s.Address()
			}

			client, err := a.clients.GetClient(ctx, profile)
			if err != nil {
				return err
			}
			chainID, err := client.ChainID(ctx)
			if err != nil {
				return err
			}
			balance, err := client.BalanceAt(ctx, account)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Network: %s (chain id %s)\n", profile.Label(), chainID)
			fmt.Fprintf(out, "Account: %s\n", account.Hex())
			fmt.Fprintf(out, "Balance: %s %s\n", utils.FormatBigInt(balance, profile.Decimals), profile.NativeSymbol)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.network, "network", "n", "hardhat", "network to query")
	cmd.Flags().StringVar(&opts.address, "address", "", "account to query (default: the network's deployer account)")
	return cmd
}
