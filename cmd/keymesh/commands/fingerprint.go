package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"keymesh/crypto"
)

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Show the local identity's public key and fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			kp, err := ids.LoadIdentity(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Public key:  %s\nFingerprint: %s\n",
				crypto.B64(kp.Pub.Slice()), crypto.Fingerprint(kp.Pub.Slice()))
			return nil
		},
	}
}
