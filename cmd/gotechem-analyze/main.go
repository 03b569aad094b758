package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gitlab.com/d21d3q/gotechem/pkg/gotechem"
)

var (
	rootCmd = &cobra.Command{
		Use:   "gotechem-analyze",
		Short: "Decode Techem and standard Wireless M-Bus telegrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context())
		},
	}

	keyHex string
	rssi   int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&keyHex, "key", "", "hex-encoded 16-byte AES key (32 hex chars)")
	rootCmd.PersistentFlags().IntVar(&rssi, "rssi", 0, "receiver signal strength to attach to decoded records (dBm)")
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.WithError(err).Fatal("command failed")
	}
}

func runInteractive(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	logrus.Info("gotechem analyze mode. Paste a hex telegram and press Enter (Ctrl+D to exit).")
	for {
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := analyzeLine(ctx, line); err != nil {
			logrus.WithError(err).Error("analyze failed")
		}
	}
	return scanner.Err()
}

func analyzeLine(ctx context.Context, hex string) error {
	opts := gotechem.AnalyzeOptions{KeyHex: keyHex, RSSI: rssi}
	result, err := gotechem.AnalyzeHexWithOptions(ctx, hex, opts)
	if err != nil {
		return err
	}
	fmt.Println(result.String())
	return nil
}
