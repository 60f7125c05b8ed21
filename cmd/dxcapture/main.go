package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bass-clef/dxcapture"
	"github.com/bass-clef/dxcapture/internal/config"
	"github.com/bass-clef/dxcapture/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	cfgFile string
	display int
	window  string
	output  string
	format  string
)

var rootCmd = &cobra.Command{
	Use:   "dxcapture",
	Short: "GPU screen and window capture",
	Long:  `dxcapture - Windows.Graphics.Capture based screen and window grabber`,
}

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "List connected displays",
	Run: func(cmd *cobra.Command, args []string) {
		listDisplays()
	},
}

var windowsCmd = &cobra.Command{
	Use:   "windows [query]",
	Short: "List capturable windows, optionally filtered by title",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		listWindows(query)
	},
}

var grabCmd = &cobra.Command{
	Use:   "grab",
	Short: "Capture a single frame and write it to a file",
	Run: func(cmd *cobra.Command, args []string) {
		grabFrame()
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Capture frames in a loop until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		streamFrames()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Run: func(cmd *cobra.Command, args []string) {
		showConfig()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dxcapture v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is dxcapture.yaml)")
	rootCmd.PersistentFlags().IntVar(&display, "display", 0, "1-based display number to capture")
	rootCmd.PersistentFlags().StringVar(&window, "window", "", "capture the first window whose title contains this text")
	rootCmd.PersistentFlags().StringVar(&output, "output", "", "output file path")
	rootCmd.PersistentFlags().StringVar(&format, "format", "", "output format: png, bmp, raw")

	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(displaysCmd)
	rootCmd.AddCommand(windowsCmd)
	rootCmd.AddCommand(grabCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the config file, applies flag overrides, validates, and
// initializes logging.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if display > 0 {
		cfg.Display = display
	}
	if window != "" {
		cfg.Window = window
	}
	if output != "" {
		cfg.Output = output
	}
	if format != "" {
		cfg.Format = format
	}

	cfg.Validate()
	logging.Init(cfg.LogFormat, cfg.LogLevel, nil)
	return cfg
}

func listDisplays() {
	displays, err := dxcapture.Displays()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to enumerate displays: %v\n", err)
		os.Exit(1)
	}

	for i, d := range displays {
		primary := ""
		if d.Primary {
			primary = " (primary)"
		}
		fmt.Printf("%d: %s %dx%d%s\n", i+1, d.Name, d.Width, d.Height, primary)
	}
}

func listWindows(query string) {
	var (
		windowList []dxcapture.WindowInfo
		err        error
	)
	if query != "" {
		windowList, err = dxcapture.FindWindow(query)
	} else {
		windowList, err = dxcapture.CapturableWindows()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to enumerate windows: %v\n", err)
		os.Exit(1)
	}

	for _, w := range windowList {
		fmt.Printf("0x%08X  [%s]  %s\n", w.Handle, w.ClassName, w.Title)
	}
}

// openDevice picks the capture target from config: a window when one is
// named, otherwise the configured display.
func openDevice(cfg *config.Config) (*dxcapture.Device, error) {
	if cfg.Window != "" {
		return dxcapture.NewDeviceFromWindow(cfg.Window)
	}
	return dxcapture.NewDeviceFromDisplay(cfg.Display)
}

func grabFrame() {
	cfg := loadConfig()

	dev, err := openDevice(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open capture target: %v\n", err)
		os.Exit(1)
	}

	cap, err := dxcapture.NewCapture(dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start capture: %v\n", err)
		os.Exit(1)
	}
	defer cap.Close()

	frame, err := waitForFrame(cap, 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to capture frame: %v\n", err)
		os.Exit(1)
	}

	if err := writeFrame(frame, cfg.Output, cfg.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write frame: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %dx%d frame to %s\n", frame.Width, frame.Height, cfg.Output)
}

func streamFrames() {
	cfg := loadConfig()

	dev, err := openDevice(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open capture target: %v\n", err)
		os.Exit(1)
	}

	cap, err := dxcapture.NewCapture(dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start capture: %v\n", err)
		os.Exit(1)
	}
	defer cap.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	differ := dxcapture.NewFrameDiffer()
	ticker := time.NewTicker(time.Duration(cfg.IntervalMS) * time.Millisecond)
	defer ticker.Stop()

	seq := 0
	fmt.Println("Streaming... press Ctrl+C to stop")
	for {
		select {
		case <-sigChan:
			total, skipped := differ.Stats()
			fmt.Printf("\nStopped after %d frames written (%d polled, %d unchanged)\n", seq, total, skipped)
			return
		case <-ticker.C:
			frame, err := cap.RawFrame()
			if err != nil {
				// No frame has arrived yet for this tick; try again next tick.
				if errors.Is(err, dxcapture.ErrNoTexture) {
					continue
				}
				fmt.Fprintf(os.Stderr, "Capture failed: %v\n", err)
				return
			}
			if !differ.Changed(frame) {
				continue
			}
			path := numberedPath(cfg.Output, seq)
			if err := writeFrame(frame, path, cfg.Format); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
				return
			}
			seq++
		}
	}
}

// writeFrame encodes a frame to the configured format.
func writeFrame(frame *dxcapture.RawFrameData, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "bmp":
		return frame.EncodeBMP(f)
	case "raw":
		_, err := f.Write(frame.Data)
		return err
	default:
		return frame.EncodePNG(f)
	}
}

// waitForFrame polls until the first frame lands in the capture or the
// deadline passes. The frame pool delivers asynchronously, so the slot is
// empty for a short while after StartCapture.
func waitForFrame(cap *dxcapture.Capture, timeout time.Duration) (*dxcapture.RawFrameData, error) {
	deadline := time.Now().Add(timeout)
	for {
		frame, err := cap.RawFrame()
		if err == nil {
			return frame, nil
		}
		if !errors.Is(err, dxcapture.ErrNoTexture) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// numberedPath inserts a sequence number before the extension:
// capture.png -> capture_0042.png.
func numberedPath(path string, seq int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%04d%s", base, seq, ext)
}

func showConfig() {
	cfg := loadConfig()
	dump, err := cfg.Dump()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render config: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(dump)
}
