package main

import (
	"fmt"
	"io"
	"strings"

	"contract_deployer/internal/domain/entity"
	"contract_deployer/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type deployOptions struct {
	networks []string
	contract string
	args     []string
	asJSON   bool
}

func newDeployCmd(app func() *application) *cobra.Command {
	opts := &deployOptions{}
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the contract to one or more networks",
		Long: `Deploy builds, signs and submits the contract-creation transaction, then
waits until it is confirmed. With several networks the runs are independent:
one failing does not stop the others. The exit status is 1 if any run failed.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			networks := utils.SplitAndTrim(opts.networks)
			if len(networks) == 0 {
				return usageError{err: fmt.Errorf("at least one --network is required")}
			}
			contract := strings.TrimSpace(opts.contract)
			if contract == "" {
				contract = a.cfg.Deployment.DefaultContract
			}

			args := make([]any, len(opts.args))
			for i, v := range opts.args {
				args[i] = v
			}
			req := entity.DeploymentRequest{ContractName: contract, ConstructorArguments: args}

			outcomes := a.deployer.DeployToNetworks(cmd.Context(), networks, req)

			if opts.asJSON {
				if err := printOutcomesJSON(cmd.OutOrStdout(), outcomes); err != nil {
					return err
				}
			} else {
				printOutcomes(cmd.OutOrStdout(), cmd.ErrOrStderr(), outcomes)
			}

			for _, o := range outcomes {
				if o.Err != nil {
					return errRunFailed
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.networks, "network", "n", []string{"hardhat"}, "target network(s), repeatable or comma separated")
	cmd.Flags().StringVarP(&opts.contract, "contract", "c", "", "contract name (default from config)")
	cmd.Flags().StringArrayVar(&opts.args, "arg", nil, "constructor argument, repeat in declaration order")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	return cmd
}

func printOutcomes(out, errOut io.Writer, outcomes []entity.DeploymentOutcome) {
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(errOut, "[%s] %s deployment failed (%s): %v\n", o.Network, stageLabel(o.Err), entity.Kind(o.Err), o.Err)
			continue
		}
		r := o.Result
		fmt.Fprintf(out, "[%s] Deploying contracts with the account: %s\n", o.Network, r.DeployerAddress.Hex())
		if r.FormattedBalance != "" {
			fmt.Fprintf(out, "[%s] Account balance: %s\n", o.Network, r.FormattedBalance)
		} else {
			fmt.Fprintf(out, "[%s] Account balance: unavailable\n", o.Network)
		}
		fmt.Fprintf(out, "[%s] %s deployed to: %s\n", o.Network, r.ContractName, r.DeployedAddress.Hex())
		fmt.Fprintf(out, "[%s] Transaction: %s (block %d, gas used %d)\n", o.Network, r.TransactionHash.Hex(), r.BlockNumber, r.GasUsed)
	}
}

func stageLabel(err error) string {
	if stage, ok := entity.StageOf(err); ok {
		return string(stage)
	}
	return "unknown stage"
}

type outcomeView struct {
	Network string                   `json:"network"`
	Result  *entity.DeploymentResult `json:"result,omitempty"`
	Error   *errorView               `json:"error,omitempty"`
}

type errorView struct {
	Stage   string `json:"stage,omitempty"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func printOutcomesJSON(out io.Writer, outcomes []entity.DeploymentOutcome) error {
	views := make([]outcomeView, 0, len(outcomes))
	for _, o := range outcomes {
		v := outcomeView{Network: o.Network, Result: o.Result}
		if o.Err != nil {
			v.Error = &errorView{Kind: entity.Kind(o.Err), Message: o.Err.Error()}
			if stage, ok := entity.StageOf(o.Err); ok {
				v.Error.Stage = string(stage)
			}
		}
		views = append(views, v)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}
