package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vigil-gate/vigil/internal/capability"
	"github.com/vigil-gate/vigil/internal/cli"
)

func capabilitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Show what the host can do",
		Long: `Take a capability snapshot of the host: secure context, camera API
variants, device family and permission state, plus remediation hints
when the camera path is unlikely to work.`,
		RunE: runCapabilities,
	}

	cmd.Flags().Bool("simulate", false, "Use a simulated secure host environment")

	return cmd
}

func runCapabilities(cmd *cobra.Command, _ []string) error {
	simulate, _ := cmd.Flags().GetBool("simulate")

	detector := capability.NewDetector(environmentFromFlags(simulate))
	report := detector.Detect(cmd.Context())

	fmt.Println(cli.RenderReport(report))
	return nil
}
