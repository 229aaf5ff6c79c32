/*
Package main
File: handlers.go
Description: One-shot commands. Each opens the session, applies a single
transition, prints the result and closes the session (flushing the save).

Destructive commands (select, reset) ask for confirmation on stdin unless
--yes is given.
*/

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salvarecuero/tap-cat/internal/content"
	"github.com/salvarecuero/tap-cat/internal/game"
	"github.com/salvarecuero/tap-cat/internal/session"
	"github.com/salvarecuero/tap-cat/internal/ui"
)

func newStatusCmd(a *app) *cobra.Command {
	var shop bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pets, rates and the cat's stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *session.Store) error {
				v := s.View()
				fmt.Fprintln(cmd.OutOrStdout(), ui.Status(v))
				if shop {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Shop(v))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&shop, "shop", false, "also list boosts")
	return cmd
}

func newTapCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "tap",
		Short: "Pet the cat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return errors.New("--count must be at least 1")
			}
			return a.withStore(cmd.Context(), func(s *session.Store) error {
				var v session.View
				for range count {
					v, _ = s.Tap()
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Status(v))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of taps")
	return cmd
}

func newBuyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <boost-id>",
		Short: "Buy a boost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withStore(cmd.Context(), func(s *session.Store) error {
				boost, ok := s.Catalog().Boost(id)
				if !ok {
					return unknownID(cmd.ErrOrStderr(), "boost", id, s.Catalog().BoostIDs())
				}

				v, applied := s.Buy(id)
				out := cmd.OutOrStdout()
				switch {
				case applied:
					fmt.Fprintln(out, ui.Good.Render("Bought "+boost.Title))
				case v.State.Owns(id):
					fmt.Fprintln(out, ui.Muted.Render("Already owned: "+boost.Title))
				default:
					fmt.Fprintln(out, ui.Warn.Render(fmt.Sprintf("Not enough pets: %s costs %d, you have %d", boost.Title, boost.Price, v.Pets)))
				}
				fmt.Fprintln(out, ui.Status(v))
				return nil
			})
		},
	}
}

func newSelectCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "select <character-id>",
		Short: "Switch character (resets progress)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withStore(cmd.Context(), func(s *session.Store) error {
				if _, ok := s.Catalog().Character(id); !ok {
					return unknownID(cmd.ErrOrStderr(), "character", id, s.Catalog().CharacterIDs())
				}

				v, applied := s.SelectCharacter(id, confirmer(cmd, yes))
				out := cmd.OutOrStdout()
				switch {
				case applied:
					fmt.Fprintln(out, ui.Good.Render("Now petting "+v.Character.Name))
				case v.Character.ID == id:
					fmt.Fprintln(out, ui.Muted.Render(v.Character.Name+" is already active"))
				default:
					fmt.Fprintln(out, ui.Muted.Render("Cancelled"))
				}
				fmt.Fprintln(out, ui.Status(v))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe all progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *session.Store) error {
				_, applied := s.Reset(confirmer(cmd, yes))
				if applied {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("Progress reset"))
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Cancelled"))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newCreditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:    "credit <amount>",
		Short:  "Add pets (debug builds only)",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.Debug {
				return errors.New("credit is disabled; set debug: true in the config")
			}
			var amount float64
			if _, err := fmt.Sscanf(args[0], "%g", &amount); err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			return a.withStore(cmd.Context(), func(s *session.Store) error {
				v, _ := s.DebugCredit(amount)
				fmt.Fprintln(cmd.OutOrStdout(), ui.Status(v))
				return nil
			})
		},
	}
}

func newContentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect game content",
	}

	validate := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check a content directory (default: configured content)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.ContentDir
			if len(args) == 1 {
				dir = args[0]
			}
			catalog, err := content.Load(dir, a.cfg.DefaultCharacter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(fmt.Sprintf("ok: %d characters, %d boosts", len(catalog.Characters), len(catalog.Boosts))))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List characters and boosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *session.Store) error {
				v := s.View()
				fmt.Fprintln(cmd.OutOrStdout(), ui.Characters(s.Catalog(), v.Character.ID))
				fmt.Fprintln(cmd.OutOrStdout(), ui.Shop(v))
				return nil
			})
		},
	}

	cmd.AddCommand(validate, list)
	return cmd
}

// confirmer returns session.Confirmed for --yes, otherwise a y/N prompt on
// the command's stdin.
func confirmer(cmd *cobra.Command, yes bool) session.Confirm {
	if yes {
		return session.Confirmed
	}
	return func(prompt string) bool {
		return askYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
	}
}

func askYesNo(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, ui.Warn.Render(ui.IconWarn+" "+prompt)+" [y/N] ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// unknownID prints the closest ids, if any, and returns the lookup error.
func unknownID(hints io.Writer, kind, id string, candidates []string) error {
	if hint := ui.DidYouMean(game.Suggest(id, candidates)); hint != "" {
		fmt.Fprintln(hints, hint)
	}
	return fmt.Errorf("unknown %s %q", kind, id)
}
