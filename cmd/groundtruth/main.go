// Command groundtruth размечает один снимок и сохраняет маску, наложение и метки.
//
// Геометрия кадра и эталонных окон берётся из окружения или .env (см. config).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"groundtruth-bot/config"
	app "groundtruth-bot/internal/application"
	"groundtruth-bot/internal/infrastructure/vision"
	"groundtruth-bot/internal/logger"
)

func main() {
	in := flag.String("in", "", "source image (TIFF, PNG or JPEG)")
	mask := flag.String("mask", "", "write 0/255 mask PNG to this path")
	overlay := flag.String("overlay", "", "write overlay PNG to this path")
	labels := flag.String("labels", "", "write 0/1 label rows to this path (\"-\" for stdout)")
	backend := flag.String("backend", "", "preprocessing backend: native or gocv (overrides GT_BACKEND)")
	flag.Parse()

	// Логгер нужен раньше конфигурации: её ошибки тоже идут через него.
	log := logger.NewConsoleLogger(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	if err := run(log, *in, *mask, *overlay, *labels, *backend); err != nil {
		log.Error("cli", err, map[string]interface{}{"in": *in})
		os.Exit(1)
	}
}

// run выполняет одну разметку. Ошибки возвращаются без логирования,
// их сообщает вызывающий.
func run(log logger.Logger, in, maskPath, overlayPath, labelsPath, backend string) error {
	if in == "" {
		flag.Usage()
		return errors.New("-in is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if backend != "" {
		cfg.Backend = backend
	}

	preprocessor, err := vision.NewPreprocessor(cfg.Backend)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}

	svc := app.NewGroundTruthService(cfg, preprocessor, nil, log)
	out, err := svc.Generate(context.Background(), data)
	if err != nil {
		return fmt.Errorf("generate ground truth: %w", err)
	}

	if err := writeOutput(maskPath, out.Mask); err != nil {
		return err
	}
	if err := writeOutput(overlayPath, out.Overlay); err != nil {
		return err
	}
	if err := writeOutput(labelsPath, out.Labels); err != nil {
		return err
	}

	log.Info("cli", "done", map[string]interface{}{
		"in":                in,
		"material_fraction": out.GroundTruth.MaterialFraction(),
		"flipped":           out.GroundTruth.Flipped,
	})
	return nil
}

func writeOutput(path string, data []byte) error {
	switch path {
	case "":
		return nil
	case "-":
		_, err := os.Stdout.Write(data)
		return err
	default:
		return os.WriteFile(path, data, 0o644)
	}
}
