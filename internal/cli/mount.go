package cli

import "github.com/spf13/cobra"

func newMountCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mount",
		Short: "mount a directory with GBK files presented as UTF-8",
		Long: `mount exposes physical_path at mount_point through Dokany. Files whose
extension and opening process pass the configured allow-lists are served as
UTF-8; edits are written back in the file's original encoding. A write that
GBK cannot represent leaves the file on disk unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMount(cmd, opts)
		},
	}
}
