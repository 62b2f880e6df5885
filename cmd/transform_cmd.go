// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/anonymiser/pkg/transformers"
	"github.com/xataio/anonymiser/pkg/transformers/builder"
)

var transformCmd = &cobra.Command{
	Use:   "transform [value]",
	Short: "Transform applies a single transformer to the value on input and prints the result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  transform,
	Example: `
	anonymiser transform "john.doe@example.com" --transformer chunked_hash
	anonymiser transform "+44 20 7946 0000" -t numeric_affine --param a=3,b=7,n=10
	anonymiser transform "john.doe@example.com" -t masking --param type=email
	anonymiser transform --list`,
}

var errMissingValue = errors.New("a value to transform is required")

func transform(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		return listTransformers(cmd)
	}

	if len(args) == 0 {
		return errMissingValue
	}

	name, err := cmd.Flags().GetString("transformer")
	if err != nil {
		return err
	}
	rawParams, err := cmd.Flags().GetStringToString("param")
	if err != nil {
		return err
	}

	params := make(transformers.Parameters, len(rawParams))
	for k, v := range rawParams {
		params[k] = v
	}

	t, err := builder.New(&transformers.Config{
		Name:       transformers.TransformerType(name),
		Parameters: params,
	})
	if err != nil {
		return fmt.Errorf("building transformer: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), t.Transform(cmd.Context(), args[0]))
	return nil
}

func listTransformers(cmd *cobra.Command) error {
	data := pterm.TableData{{"TRANSFORMER", "DESCRIPTION", "PARAMETERS"}}
	for _, name := range builder.Names() {
		def, err := builder.Definition(name)
		if err != nil {
			return err
		}

		params := make([]string, 0, len(def.Parameters))
		for _, p := range def.Parameters {
			param := fmt.Sprintf("%s (%s)", p.Name, p.SupportedType)
			if p.Required {
				param += " required"
			}
			params = append(params, param)
		}
		data = append(data, []string{string(name), def.Description, strings.Join(params, ", ")})
	}

	return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(data).Render()
}
