package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/esiegel/seamcarve"
	"github.com/esiegel/seamcarve/utils"
	"github.com/spf13/cobra"
)

var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Shrink an image or a directory of images with seam carving",
	RunE:  runResize,
}

func init() {
	addIOFlags(resizeCmd)
	addResizeFlags(resizeCmd)
	rootCmd.AddCommand(resizeCmd)
}

func addResizeFlags(cmd *cobra.Command) {
	cmd.Flags().Int("width", 0, "New width (0 keeps the width)")
	cmd.Flags().Int("height", 0, "New height (0 keeps the height)")
	cmd.Flags().Bool("perc", false, "Interpret width and height as percentages of the source size")
	cmd.Flags().Bool("scale", false, "Scale proportionally before carving when both edges shrink")
	cmd.Flags().Int("refresh", 0, "Energy refresh radius around removed seams (-1 recomputes the whole map)")
	cmd.Flags().String("mask", "", "Protection mask image; bright pixels are never removed")
	cmd.Flags().String("cc", "", "Cascade classifier file enabling face protection")
	cmd.Flags().Float64("angle", 0.0, "Plane rotated faces angle")
}

// addIOFlags registers the flags shared by the subcommands reading and writing images.
func addIOFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("in", "i", pipeName, "Source image, directory or URL")
	cmd.Flags().StringP("out", "o", pipeName, "Destination image or directory")
	cmd.Flags().String("energy-fn", "neighbor", "Energy function (neighbor, sobel)")
	cmd.Flags().Int("conc", 0, "Number of files to process concurrently (0 uses the CPU count)")
}

func runResize(cmd *cobra.Command, args []string) error {
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	perc, _ := cmd.Flags().GetBool("perc")
	scale, _ := cmd.Flags().GetBool("scale")
	refresh, _ := cmd.Flags().GetInt("refresh")
	maskPath, _ := cmd.Flags().GetString("mask")
	cascade, _ := cmd.Flags().GetString("cc")
	angle, _ := cmd.Flags().GetFloat64("angle")

	if width <= 0 && height <= 0 {
		return errors.New("please provide a width or height for image rescaling")
	}
	if perc && (width > 100 || height > 100) {
		return errors.New("cannot use the percentage flag for image enlargement")
	}
	if refresh < seamcarve.FullRefresh {
		return fmt.Errorf("invalid refresh radius %d", refresh)
	}

	fn, err := energyFn(cmd)
	if err != nil {
		return err
	}
	proc := &seamcarve.Processor{
		NewWidth:      width,
		NewHeight:     height,
		Percentage:    perc,
		Scale:         scale,
		EnergyFn:      fn,
		EnergyRefresh: refresh,
	}

	if maskPath != "" {
		if proc.Mask, err = loadImage(maskPath); err != nil {
			return fmt.Errorf("could not load the mask file: %w", err)
		}
	}
	if cascade != "" {
		if proc.FaceDetector, err = seamcarve.LoadFaceDetector(cascade); err != nil {
			return err
		}
		proc.FaceDetector.Angle = angle
	}
	return execute(cmd, proc)
}

// energyFn returns the energy function selected by the --energy-fn flag.
func energyFn(cmd *cobra.Command) (seamcarve.EnergyFn, error) {
	name, _ := cmd.Flags().GetString("energy-fn")
	switch name {
	case "neighbor":
		return seamcarve.NeighborEnergy, nil
	case "sobel":
		return seamcarve.SobelEnergy, nil
	}
	return nil, fmt.Errorf("unknown energy function %q", name)
}

// execute runs the processor over the --in and --out flags, showing the
// progress indicator while the files are processed.
func execute(cmd *cobra.Command, proc *seamcarve.Processor) error {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")
	workers, _ := cmd.Flags().GetInt("conc")

	op := &seamcarve.Ops{
		Src:      in,
		Dst:      out,
		PipeName: pipeName,
		Workers:  workers,
	}

	status := utils.DecorateText("⚡ SEAMCARVE", utils.StatusMessage)
	proc.OnProgress = func(pr seamcarve.Progress) {
		spinner.Update(fmt.Sprintf("%s %s", status,
			utils.DecorateText(fmt.Sprintf("⇢ %s %d/%d...", pr.State, pr.Removed, pr.Total), utils.DefaultMessage),
		))
	}

	now := time.Now()
	spinner.Start()
	err := proc.Execute(cmd.Context(), op)
	if err != nil {
		spinner.StopMsg = fmt.Sprintf("%s %s %s\n", status,
			utils.DecorateText("processing failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		)
	} else {
		spinner.StopMsg = fmt.Sprintf("%s %s %s\n", status,
			utils.DecorateText("⇢", utils.DefaultMessage),
			utils.DecorateText("done ✔", utils.SuccessMessage),
		)
	}
	spinner.Stop()

	if err != nil {
		return err
	}
	log.Printf("\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	return nil
}

// loadImage decodes an image file into a pixel buffer.
func loadImage(path string) (*seamcarve.PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seamcarve.Decode(f)
}
