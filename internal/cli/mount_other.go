//go:build !windows

package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func runMount(cmd *cobra.Command, opts *options) error {
	return errors.New("mount needs Dokany and is only available on Windows")
}
