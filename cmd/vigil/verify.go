package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vigil-gate/vigil/internal/capability"
	"github.com/vigil-gate/vigil/internal/cli"
	"github.com/vigil-gate/vigil/internal/decode"
	"github.com/vigil-gate/vigil/internal/device"
	"github.com/vigil-gate/vigil/internal/session"
)

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <payload>",
		Short: "Verify a payload without the camera",
		Long: `Run a payload straight through classification and the access policy,
exactly as if it had been typed into the manual-entry form.

Examples:
  vigil verify '{"appointment_id": 42, "date": "2025-03-10"}'
  vigil verify APT-1A2B
  vigil verify 12345`,
		Args: cobra.MinimumNArgs(1),
		RunE: runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	payload := strings.Join(args, " ")

	recorder, closeRecorder, err := recorderFromConfig()
	if err != nil {
		return err
	}
	defer closeRecorder()

	controller := session.NewController(
		capability.NewDetector(environmentFromFlags(true)),
		device.NewAcquirer(device.NewSimulatedProvider()),
		decode.NewLoop(decode.NewQRDecoder()),
		recorder,
		operatorFromConfig(),
	)
	defer func() { _ = controller.Close() }()

	if _, err := controller.Open(ctx); err != nil {
		return err
	}
	if err := controller.RequestFallback(); err != nil {
		return err
	}

	result, err := controller.SubmitManual(ctx, payload)
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderResult(result))
	return nil
}
