package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greatbody/encoding-util/transcoder"
)

func newConvertCmd(opts *options) *cobra.Command {
	var to, from, output string
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "convert a file to UTF-8 or GBK",
		Long: `convert writes the input re-encoded as --to. With --from auto (the
default) the source encoding is detected and input already in the target
encoding is copied unchanged. An explicit --from skips detection.

Nothing is written when conversion fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseCharset(to)
			if err != nil {
				return err
			}
			var source transcoder.Charset
			if from != "auto" {
				if source, err = parseCharset(from); err != nil {
					return err
				}
				if source == target {
					return fmt.Errorf("--from and --to are both %s", target)
				}
			}
			conv, err := opts.converter()
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			}
			data, err := readInput(cmd, name)
			if err != nil {
				return err
			}

			out, err := convert(conv, data, source, target)
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return os.WriteFile(output, out, 0o644)
		},
	}
	cmd.Flags().StringVar(&to, "to", "utf-8", "target encoding: utf-8 or gbk")
	cmd.Flags().StringVar(&from, "from", "auto", "source encoding: auto, utf-8 or gbk")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func convert(conv *transcoder.Converter, data []byte, source, target transcoder.Charset) ([]byte, error) {
	switch {
	case source == transcoder.CharsetNone && target == transcoder.CharsetUTF8:
		return conv.ToUTF8(data)
	case source == transcoder.CharsetNone:
		return conv.ToGBK(data)
	case target == transcoder.CharsetUTF8:
		return conv.GBKToUTF8(data)
	default:
		return conv.UTF8ToGBK(data)
	}
}
