package cmd

import (
	"fmt"
	"os"

	log "github.com/dccn-tg/viewer-toolset/pkg/logger"
	ustr "github.com/dccn-tg/viewer-toolset/pkg/strings"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var secretKey string

func init() {
	secretEncryptCmd.Flags().StringVarP(&secretKey, "key", "k", os.Getenv("VIEWERCFG_SECRET_KEY"), "encryption `key` of 16, 24 or 32 bytes")
	secretCmd.AddCommand(secretEncryptCmd)
	rootCmd.AddCommand(secretCmd)
}

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage encrypted archive secrets",
	Long:  ``,
}

var secretEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a password for the archives section of the configuration",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {

		if secretKey == "" {
			return errors.New("no encryption key given, use --key or VIEWERCFG_SECRET_KEY")
		}

		// CLI prompt to readin password from terminal
		fmt.Fprint(os.Stderr, "Enter Password: ")

		var pass []byte
		for {
			var err error
			pass, err = term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return errors.Wrap(err, "cannot read password")
			}
			if len(pass) == 0 {
				log.Errorf("password cannot be empty string.  Try again.")
				fmt.Fprint(os.Stderr, "Enter Password: ")
				continue
			}
			break
		}

		enc, err := ustr.EncodeSecret(pass, []byte(secretKey))
		if err != nil {
			return err
		}
		fmt.Println(enc)
		return nil
	},
}
