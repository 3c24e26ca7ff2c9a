package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/tasknest/internal/model"
	"github.com/nhle/tasknest/internal/session"
)

var loginCmd = &cobra.Command{
	Use:       "login [google|github]",
	Short:     "Sign in with a provider",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(model.ProviderGoogle), string(model.ProviderGitHub)},
	RunE:      runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and erase this account's saved tasks",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().Bool("show-url", false, "Print the provider authorization URL that a real sign-in would open")
}

func runLogin(cmd *cobra.Command, args []string) error {
	provider := model.ProviderGoogle
	if len(args) == 1 {
		provider = model.Provider(args[0])
	}
	if !provider.Valid() {
		return fmt.Errorf("%w: %q", session.ErrUnsupportedProvider, provider)
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if id, ok := e.rt.Session.Restore(ctx); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "Already signed in as %s <%s>\n", id.Name, id.Email)
		return nil
	}

	if show, _ := cmd.Flags().GetBool("show-url"); show {
		url, err := session.AuthURL(provider, "tasknest-cli")
		if err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), url)
		}
	}

	id, err := e.rt.Session.Login(ctx, provider)
	if err != nil {
		return errReported
	}

	// Seed the new account's collection now rather than on first list.
	b := e.rt.NewBoard()
	if err := b.Load(ctx); err != nil {
		return err
	}
	if err := e.finish(ctx, b); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", id.Name, id.Email)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.rt.Session.Logout(cmd.Context()); err != nil {
		return errReported
	}
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	id, ok := e.rt.Session.Restore(cmd.Context())
	if !ok {
		return errNotSignedIn
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s <%s>\n", id.Name, id.Email)
	fmt.Fprintf(out, "provider: %s\n", id.Provider)
	fmt.Fprintf(out, "id:       %s\n", id.ID)
	return nil
}
