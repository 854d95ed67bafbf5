// Package main contains the vigil CLI commands.
package main

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for --image
	_ "image/png"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/viper"

	"github.com/vigil-gate/vigil/internal/audit"
	"github.com/vigil-gate/vigil/internal/capability"
	"github.com/vigil-gate/vigil/internal/common"
	"github.com/vigil-gate/vigil/internal/config"
	"github.com/vigil-gate/vigil/internal/decode"
	"github.com/vigil-gate/vigil/internal/device"
	"github.com/vigil-gate/vigil/internal/model"
)

// operatorFromConfig reads the gate operator identity. The role defaults to
// VIGILE so a bare config works on a kiosk dedicated to scanning.
func operatorFromConfig() model.Operator {
	op := model.Operator{
		ID:   viper.GetString("operator.id"),
		Name: viper.GetString("operator.name"),
		Role: model.Role(viper.GetString("operator.role")),
	}
	if op.Role == "" {
		op.Role = model.RoleVigile
	}
	if op.Name == "" {
		op.Name = "Agent de sécurité"
	}
	return op
}

// recorderFromConfig picks the audit backend: remote endpoint first, local
// spool second, discard as a last resort.
func recorderFromConfig() (audit.Recorder, func(), error) {
	if endpoint := viper.GetString("audit.endpoint"); endpoint != "" {
		rec, err := audit.NewHTTPRecorder(endpoint, viper.GetString("audit.token"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to configure audit endpoint: %w", err)
		}
		return rec, func() {}, nil
	}

	dbPath := viper.GetString("audit.db")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/vigil/scans.db"
	}
	dbPath = config.ExpandPath(dbPath)

	rec, err := audit.NewSQLiteRecorder(dbPath)
	if err != nil {
		slog.Warn("Audit spool unavailable, scans will not be recorded", "error", err)
		return audit.NopRecorder{}, func() {}, nil
	}
	closeFn := func() {
		if closeErr := rec.Close(); closeErr != nil {
			slog.Error("Failed to close audit spool", "error", closeErr)
		}
	}
	return rec, closeFn, nil
}

// environmentFromFlags builds the capability environment: the real host, or
// a synthetic secure host when running simulated.
func environmentFromFlags(simulate bool) capability.Environment {
	if simulate {
		return capability.StaticEnvironment{
			Org:      model.Origin{Scheme: "https", Hostname: "localhost"},
			Agent:    "vigil-kiosk/" + runtime.GOOS,
			Variants: []model.APIVariant{model.APIModern},
			Secure:   true,
		}
	}
	return capability.NewHostEnvironment()
}

// providerFromFlags builds the camera provider. With --image the stream
// replays the given picture; with --payload it replays a freshly encoded QR
// code. Otherwise frames are blank, which is still useful for exercising the
// fallback path.
func providerFromFlags(imagePath, payload string) (device.Provider, error) {
	var frame image.Image

	switch {
	case imagePath != "":
		f, err := os.Open(config.ExpandPath(imagePath))
		if err != nil {
			return nil, common.NewUserError("Impossible d'ouvrir l'image", err)
		}
		defer func() { _ = f.Close() }()
		frame, _, err = image.Decode(f)
		if err != nil {
			return nil, common.NewUserError("Format d'image non reconnu", err)
		}

	case payload != "":
		var err error
		frame, err = decode.EncodeQR(payload, 256)
		if err != nil {
			return nil, err
		}

	default:
		return device.NewSimulatedProvider(), nil
	}

	return device.NewSimulatedProvider(device.WithFrames(device.StillFrames(frame))), nil
}
