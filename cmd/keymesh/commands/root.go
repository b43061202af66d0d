package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"keymesh/internal/store"
)

var (
	home       string
	passphrase string
	ids        *store.FileStore
)

func Execute() error {
	root := &cobra.Command{
		Use:   "keymesh",
		Short: "Encrypt for yourself or one recipient using keymesh envelopes",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".keymesh")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			ids = store.NewFileStore(home)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.keymesh)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the identity")

	root.AddCommand(initCmd(), fingerprintCmd(), encryptCmd(), decryptCmd())
	return root.Execute()
}
