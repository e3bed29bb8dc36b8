package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pricelens/pricelens/internal/output"
)

type outputSink struct {
	writer io.Writer
	close  func() error
	path   string
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output format: table, json, markdown (defaults to output.format)")
	cmd.Flags().String("out", "", "Write output to a file instead of stdout")
}

// resolveOutputFormat prefers the --output flag over the configured default.
func resolveOutputFormat(cmd *cobra.Command, fallback string) (output.Format, error) {
	value, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	return output.ParseFormat(value)
}

func openSink(cmd *cobra.Command) (*outputSink, error) {
	path, err := cmd.Flags().GetString("out")
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return &outputSink{writer: cmd.OutOrStdout(), close: func() error { return nil }, path: "-"}, nil
	}

	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, err
	}
	return &outputSink{writer: file, close: file.Close, path: trimmed}, nil
}

// writeOutput sends rendered content to the sink selected by --out.
func writeOutput(cmd *cobra.Command, content string) error {
	sink, err := openSink(cmd)
	if err != nil {
		return err
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if _, err := io.WriteString(sink.writer, content); err != nil {
		_ = sink.close()
		return fmt.Errorf("write output: %w", err)
	}
	return sink.close()
}
