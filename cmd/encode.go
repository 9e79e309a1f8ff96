package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Rorical/RoriVoice/internal/detection"
)

var (
	encodeFile    string
	encodeDataURL bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Print the Base64 encoding of an audio file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b64, err := detection.EncodeFile(encodeFile)
		if err != nil {
			return err
		}
		if encodeDataURL {
			b64 = detection.DataURL(detection.FormatFromPath(encodeFile), b64)
		}
		fmt.Fprintln(cmd.OutOrStdout(), b64)
		return nil
	},
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeFile, "file", "f", "", "audio file to encode")
	encodeCmd.Flags().BoolVar(&encodeDataURL, "data-url", false, "prefix the output with a data:audio/...;base64, tag")
	_ = encodeCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(encodeCmd)
}
