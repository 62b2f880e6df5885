// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/anonymiser/cmd/config"
	"github.com/xataio/anonymiser/internal/json"
	"github.com/xataio/anonymiser/pkg/anonymiser"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validates the anonymiser configuration and prints the masking policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, _ := pterm.DefaultSpinner.WithText("validating anonymiser configuration...").Start()

		err := func() error {
			params, err := config.ParseAnonymiserConfig()
			if err != nil {
				return fmt.Errorf("parsing anonymiser config: %w", err)
			}

			status := anonymiser.CheckPolicy(params)
			if status.IsValid() {
				sp.Success("anonymiser configuration is valid")
			} else {
				sp.Warning("anonymiser validation check identified issues: ", strings.Join(status.Errors, ", "))
			}

			if err := print(cmd, status); err != nil {
				return fmt.Errorf("failed to format anonymiser validation status: %w", err)
			}

			if !status.IsValid() {
				return errInvalidConfiguration
			}
			return nil
		}()
		if err != nil && !errors.Is(err, errInvalidConfiguration) {
			sp.Fail(err.Error())
		}

		return err
	},
	Example: `
	anonymiser validate --affine-a 3 --affine-b 7 --affine-n 10
	anonymiser validate -c config.yaml
	anonymiser validate -c config.env --json
	`,
}

var errInvalidConfiguration = errors.New("invalid anonymiser configuration")

type printer interface {
	PrettyPrint() string
}

func print(cmd *cobra.Command, p printer) error {
	str := p.PrettyPrint()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		jsonData, err := json.MarshalIndent(p, "", "\t")
		if err != nil {
			return err
		}
		str = string(jsonData)
	}

	fmt.Fprintln(cmd.OutOrStdout(), str)
	return nil
}
