package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keymesh/crypto"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate an identity keypair and store it securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			if ids.HasIdentity() {
				return fmt.Errorf("identity already exists in %s", home)
			}
			kp, err := crypto.GenerateKeypair()
			if err != nil {
				return err
			}
			if err := ids.SaveIdentity(passphrase, kp); err != nil {
				return err
			}
			fmt.Printf("Identity created.\nPublic key:  %s\nFingerprint: %s\n",
				crypto.B64(kp.Pub.Slice()), crypto.Fingerprint(kp.Pub.Slice()))
			return nil
		},
	}
}
