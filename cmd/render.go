package main

import (
	"errors"
	"fmt"
	"linkfixer/internal/config"
	"linkfixer/internal/fixer"

	"github.com/spf13/cobra"
)

var errNoMatch = errors.New("not a direct Gfycat GIF link")

// renderCommand constructs the 'render' subcommand that prints the comment
// the bot would post for a link.
func renderCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "render <url>",
		Short:         "Prints the comment the bot would post for a link",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, ok := fixer.Match(args[0])
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), errNoMatch) //nolint: errcheck

				return errNoMatch
			}

			owner, _ := cmd.Flags().GetString("owner")
			body, err := fixer.NewTemplate(owner).Render(slug)
			if err != nil {
				return fmt.Errorf("could not render comment: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), body) //nolint: errcheck

			return nil
		},
	}

	cmd.Flags().String("owner", cfg.Bot.Owner, "Account credited in the footer")

	return cmd
}
