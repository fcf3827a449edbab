package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greatbody/encoding-util/transcoder"
)

func newDetectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [file...]",
		Short: "print the detected encoding of each file",
		Long: `detect prints one line per input: the file name, a tab, and one of
ascii, utf-8, gbk or unknown. Standard input is read when no file is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"-"}
			}
			for _, name := range args {
				data, err := readInput(cmd, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, transcoder.DetectEncoding(data))
			}
			return nil
		},
	}
}
