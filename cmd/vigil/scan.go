package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigil-gate/vigil/internal/capability"
	"github.com/vigil-gate/vigil/internal/cli"
	"github.com/vigil-gate/vigil/internal/decode"
	"github.com/vigil-gate/vigil/internal/device"
	"github.com/vigil-gate/vigil/internal/session"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a QR code at the gate",
		Long: `Run a full scan session: detect camera capabilities, acquire a stream,
decode the QR code and render the access decision.

When the camera path fails for a recoverable reason (permission denied,
no device, device busy) the manual-entry form opens instead.

Examples:
  vigil scan                          # Scan with the host camera
  vigil scan --image badge.png        # Decode a QR from a picture
  vigil scan --simulate --payload '{"appointment_id": 42}'
  vigil scan --manual                 # Skip the camera, type the code`,
		RunE: runScan,
	}

	cmd.Flags().Bool("simulate", false, "Use a simulated secure host environment")
	cmd.Flags().Bool("manual", false, "Skip the camera and open the manual-entry form")
	cmd.Flags().String("image", "", "Decode the QR code from an image file")
	cmd.Flags().String("payload", "", "Simulate a camera pointed at this QR payload")
	cmd.Flags().Duration("timeout", 30*time.Second, "Give up on detection after this long")
	cmd.Flags().Bool("attempts", false, "Show the acquisition attempt trail")

	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	simulate, _ := cmd.Flags().GetBool("simulate")
	manual, _ := cmd.Flags().GetBool("manual")
	imagePath, _ := cmd.Flags().GetString("image")
	payload, _ := cmd.Flags().GetString("payload")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	showAttempts, _ := cmd.Flags().GetBool("attempts")

	if payload != "" || imagePath != "" {
		// A synthetic frame source implies a synthetic host.
		simulate = true
	}

	recorder, closeRecorder, err := recorderFromConfig()
	if err != nil {
		return err
	}
	defer closeRecorder()

	provider, err := providerFromFlags(imagePath, payload)
	if err != nil {
		return err
	}

	controller := session.NewController(
		capability.NewDetector(environmentFromFlags(simulate)),
		device.NewAcquirer(provider),
		decode.NewLoop(decode.NewQRDecoder()),
		recorder,
		operatorFromConfig(),
	)
	defer func() { _ = controller.Close() }()

	ctx := cli.NewInterruptHandler(nil).HandleInterrupts(cmd.Context())
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	report, err := controller.Open(ctx)
	if err != nil {
		return err
	}

	if manual || !report.CameraUsable() {
		if !manual {
			fmt.Println(cli.RenderReport(report))
		}
		if fallbackErr := controller.RequestFallback(); fallbackErr != nil {
			return fallbackErr
		}
		return runManualEntry(ctx, controller)
	}

	slog.Info("Starting scan session", "session", controller.ID())
	result, err := controller.Scan(ctx)
	if showAttempts {
		fmt.Println(cli.RenderAttempts(controller.Attempts()))
	}
	if err != nil {
		if device.FallbackEligible(err) {
			fmt.Println(cli.FormatWarning(device.KindOf(err).Message()))
			return runManualEntry(ctx, controller)
		}
		return err
	}

	fmt.Println(cli.RenderResult(result))
	return nil
}

func runManualEntry(ctx context.Context, controller *session.Controller) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text, ok, err := cli.RunFallbackForm()
	if err != nil {
		return fmt.Errorf("manual entry failed: %w", err)
	}
	if !ok {
		slog.Info("Manual entry cancelled")
		return nil
	}

	result, err := controller.SubmitManual(ctx, text)
	if err != nil {
		return err
	}
	fmt.Println(cli.RenderResult(result))
	return nil
}
