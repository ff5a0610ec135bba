package seamcarve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/esiegel/seamcarve/utils"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently processed files.
const maxWorkers = 20

// SourceExtensions lists the image file extensions picked up in batch mode.
var SourceExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp"}

// Ops describes the source and destination of a processing run.
// Src and Dst are file paths, directories or PipeName for stdin and stdout.
// Src may also be an image URL.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
}

// Execute runs the processor over the source. A directory source is
// processed recursively with up to Workers files at once; each file is still
// carved by a single goroutine.
func (p *Processor) Execute(ctx context.Context, op *Ops) error {
	src := op.Src

	// Check if the source path is a local image or URL.
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(ctx, src)
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		defer os.Remove(f.Name())
		if err := f.Close(); err != nil {
			return err
		}
		src = f.Name()
	}

	var (
		fs  os.FileInfo
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	switch mode := fs.Mode(); {
	case mode.IsDir():
		if op.Dst == op.PipeName {
			return errors.New("a directory source requires a destination directory")
		}
		if err := os.MkdirAll(op.Dst, 0755); err != nil {
			return fmt.Errorf("unable to create the destination directory: %w", err)
		}
		return p.executeDir(ctx, op, src)
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0:
		err := op.process(p, src, op.Dst)
		op.printOpStatus(op.Dst, err)
		return err
	}
	return fmt.Errorf("unsupported source %s", op.Src)
}

// executeDir processes the image files of the src tree concurrently.
func (p *Processor) executeDir(ctx context.Context, op *Ops, src string) error {
	workers := op.Workers
	// Limit the concurrently running workers to maxWorkers.
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	// Progress reports from concurrently processed files would interleave.
	proc := *p
	proc.OnProgress = nil

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// Destinations are assigned by this goroutine only, so no two workers
	// ever write the same file.
	seen := make(map[string]bool)

	paths, errc := walkDir(ctx.Done(), src, SourceExtensions)
	for path := range paths {
		path := path
		dst, err := destPath(op.Dst, src, path, seen)
		if err != nil {
			g.Go(func() error { return err })
			break
		}
		g.Go(func() error {
			if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
				return fmt.Errorf("unable to create the destination directory: %w", err)
			}
			err := op.process(&proc, path, dst)
			op.printOpStatus(dst, err)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return <-errc
}

// destPath returns the destination of a file processed in batch mode,
// mirroring its location relative to the source root under dir. Sources
// whose format cannot be encoded are written as png, with the original
// extension kept in the name. A destination already taken gets a numeric
// suffix.
func destPath(dir, root, src string, seen map[string]bool) (string, error) {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(dir, rel)
	ext := filepath.Ext(dst)
	if _, err := FormatFromExt(ext); err != nil {
		dst = strings.TrimSuffix(dst, ext) + "_" + strings.ToLower(strings.TrimPrefix(ext, ".")) + ".png"
		ext = ".png"
	}

	base := strings.TrimSuffix(dst, ext)
	for i := 1; seen[strings.ToLower(dst)]; i++ {
		dst = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	seen[strings.ToLower(dst)] = true

	return dst, nil
}

// process calls the processor over the source image and returns the error in case exists.
func (op *Ops) process(p *Processor, in, out string) error {
	format := JPEG
	if out != op.PipeName {
		var err error
		if format, err = FormatFromPath(out); err != nil {
			return err
		}
	}

	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return err
	}

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	err = p.Process(src, dst, format)
	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			// remove the generated image file in case of an error
			os.Remove(f.Name())
		}
	}
	return err
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			closeReader(src)
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			closeReader(src)
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

func closeReader(r io.Reader) {
	if f, ok := r.(*os.File); ok && f != os.Stdin {
		f.Close()
	}
}

// printOpStatus displays the relevant information about the image resizing process.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		log.Printf("%s%s",
			utils.DecorateText("\nError resizing the image: ", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		log.Printf("\nThe image has been saved as: %s\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !lo.Contains(srcExts, strings.ToLower(filepath.Ext(f.Name()))) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}
