package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/local/lessonplanner/internal/storage"
)

var (
	password string
	decrypt  bool
)

var errNoPassword = errors.New("no password: pass --password or set TEMPLATE_S3_PASSWORD")

// encryptCmd wraps a template in the envelope the S3 loader decrypts.
var encryptCmd = &cobra.Command{
	Use:   "encrypt-template <in> <out>",
	Short: "Encrypt a DOCX template for storage in S3",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pw := password
		if pw == "" {
			pw = cfg.Template.S3Password
		}
		if pw == "" {
			return errNoPassword
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		out, err := convertEnvelope(data, pw, decrypt)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], out, 0o600); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", args[1], len(out))
		return nil
	},
}

func convertEnvelope(data []byte, pw string, reverse bool) ([]byte, error) {
	if !reverse {
		if storage.IsEncrypted(data) {
			return nil, errors.New("input is already encrypted")
		}
		return storage.Encrypt(data, pw)
	}
	if !storage.IsEncrypted(data) {
		return nil, errors.New("input is not encrypted")
	}
	return storage.Decrypt(data, pw)
}
