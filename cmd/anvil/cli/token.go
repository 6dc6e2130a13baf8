package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-ide/anvil/internal/config"
	"github.com/anvil-ide/anvil/internal/crypto"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a client token derived from the master secret",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(config.Overrides{})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		jwtManager, err := crypto.NewJWTManager(cfg.MasterSecret)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		token, err := jwtManager.CreateToken("client")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}
