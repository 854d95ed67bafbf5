package main

import (
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vigil-gate/vigil/internal/cli"
	"github.com/vigil-gate/vigil/internal/config"
	"github.com/vigil-gate/vigil/internal/decode"
)

func encodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <payload>",
		Short: "Generate a QR code image for a payload",
		Long: `Render a payload as a QR code PNG. Useful for producing test badges
and for checking what a given appointment code looks like at the gate.

Examples:
  vigil encode '{"appointment_id": 42, "date": "2025-03-10"}' -o badge.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: runEncode,
	}

	cmd.Flags().StringP("output", "o", "qr.png", "Output PNG file")
	cmd.Flags().Int("size", 256, "Image size in pixels")

	return cmd
}

func runEncode(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	size, _ := cmd.Flags().GetInt("size")
	payload := strings.Join(args, " ")

	img, err := decode.EncodeQR(payload, size)
	if err != nil {
		return err
	}

	output = config.ExpandPath(output)
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	defer func() { _ = f.Close() }()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}

	fmt.Println(cli.FormatSuccess("QR code écrit dans " + output))
	return nil
}
