package colorbook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/colorbook/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// Processor colors pages in batch: each page is loaded in its own Session,
// the script is replayed on it and the result is exported.
type Processor struct {
	Script
	Export     ExportOptions
	Marker  string
	DPR     float64
	Spinner *utils.Spinner
	Debug   bool
}

// Process colors the artwork read from r and writes the exported image to w.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	s := &Session{
		Marker: p.Marker,
		DPR:    p.DPR,
		Debug:  p.Debug,
	}
	if err := s.LoadArtwork(r); err != nil {
		return err
	}
	if err := p.Script.Apply(s); err != nil {
		return err
	}
	return s.Export(context.Background(), w, p.Export)
}

// Ops describes the source and the destination of a batch run.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
}

// result holds the outcome of coloring a single page.
type result struct {
	path string
	err  error
}

// Execute colors a single page, a page read from stdin, a page downloaded from
// a URL or, when the source is a directory, every page found in it.
func (p *Processor) Execute(op *Ops) error {
	var (
		fs  os.FileInfo
		src = op.Src
		err error
	)
	if p.Spinner == nil {
		p.Spinner = utils.NewSpinner(fmt.Sprintf("%s %s",
			utils.DecorateText("🖍 COLORBOOK", utils.StatusMessage),
			utils.DecorateText("⇢ coloring the artwork...", utils.DefaultMessage),
		), time.Millisecond*80, true)
	}

	// Check if source path is a local artwork or URL.
	if utils.IsValidUrl(op.Src) {
		var tmp *os.File
		tmp, err = utils.DownloadArtwork(op.Src)
		if tmp != nil {
			defer os.Remove(tmp.Name())
			tmp.Close()
		}
		if err != nil {
			return fmt.Errorf("failed to load the source artwork: %w", err)
		}
		src = tmp.Name()
		fs, err = os.Stat(src)
	} else if op.Src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(op.Src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source artwork: %w", err)
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		var wg sync.WaitGroup
		// Read destination file or directory.
		if _, err := os.Stat(op.Dst); err != nil {
			if err := os.Mkdir(op.Dst, 0755); err != nil {
				return fmt.Errorf("unable to get dir stats: %w", err)
			}
		}

		// Limit the concurrently running workers to maxWorkers.
		if op.Workers <= 0 || op.Workers > maxWorkers {
			op.Workers = runtime.NumCPU()
		}

		// Process recursively the pages from the specified directory concurrently.
		ch := make(chan result)
		done := make(chan interface{})
		defer close(done)

		paths, errc := walkDir(done, src, []string{".svg"})

		wg.Add(op.Workers)
		for i := 0; i < op.Workers; i++ {
			go func() {
				defer wg.Done()
				op.consumer(p, src, op.Dst, ch, done, paths)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		var failed int
		for res := range ch {
			if res.err != nil {
				failed++
			}
			op.printOpStatus(res.path, res.err)
		}

		if err = <-errc; err != nil {
			return err
		}
		if failed > 0 {
			err = fmt.Errorf("%d page(s) could not be colored", failed)
		}

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0: // check for regular files or pipe names
		if op.Dst != op.PipeName {
			ext := strings.ToLower(filepath.Ext(op.Dst))
			if !isValidExtension(ext, Extensions) {
				return fmt.Errorf("%v file type not supported", ext)
			}
		}
		err = op.process(p, src, op.Dst)
		op.printOpStatus(op.Dst, err)

	default:
		return errors.New("unsupported source")
	}

	if err == nil {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
	return err
}

// consumer reads the path names from the paths channel and colors each page.
// The pages are written under dest, mirroring their path relative to root.
func (op *Ops) consumer(
	p *Processor,
	root, dest string,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		out, err := destPath(root, dest, src, p.Export.Format)
		if err == nil {
			err = op.process(p, src, out)
		}

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// process colors a single page and removes the destination file on failure.
func (op *Ops) process(p *Processor, in, out string) error {
	successMsg := fmt.Sprintf("%s %s %s",
		utils.DecorateText("🖍 COLORBOOK", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the artwork has been colored successfully ✔", utils.SuccessMessage),
	)
	errorMsg := fmt.Sprintf("%s %s %s",
		utils.DecorateText("🖍 COLORBOOK", utils.StatusMessage),
		utils.DecorateText("coloring the artwork failed...", utils.DefaultMessage),
		utils.DecorateText("✘", utils.ErrorMessage),
	)

	pp := *p
	if out != op.PipeName {
		format, err := FormatFromPath(out)
		if err != nil {
			return err
		}
		pp.Export.Format = format
	}

	// Start the progress indicator.
	p.Spinner.Start()

	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		p.Spinner.StopMsg = errorMsg
		p.Spinner.Stop()
		return err
	}

	// Capture CTRL-C signal and restores back the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalChan)
		close(signalChan)
	}()
	go func() {
		if _, ok := <-signalChan; ok {
			p.Spinner.RestoreCursor()
			if f, ok := dst.(*os.File); ok && f != os.Stdout {
				os.Remove(f.Name())
			}
			os.Exit(1)
		}
	}()

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	err = pp.Process(src, dst)

	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			// remove the generated file in case of an error
			os.Remove(f.Name())
		}
	}

	if err != nil {
		p.Spinner.StopMsg = errorMsg
	} else {
		p.Spinner.StopMsg = successMsg
	}
	// Stop the progress indicator.
	p.Spinner.Stop()

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
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the relevant information about the coloring of a page.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		fmt.Fprint(os.Stderr,
			utils.DecorateText(fmt.Sprintf("\nError coloring %s", filepath.Base(fname)), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(os.Stderr, "\nThe artwork has been saved as: %s %s\n\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// destPath returns the output path of the page src found under root, creating
// the intermediate directories below dest.
func destPath(root, dest, src string, format Format) (string, error) {
	ext := ".png"
	if format != PNG {
		ext = "." + format.String()
	}
	rel, err := filepath.Rel(root, src)
	if err != nil {
		rel = filepath.Base(src)
	}
	dir := filepath.Join(dest, filepath.Dir(rel))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("unable to create the destination directory: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ext
	return filepath.Join(dir, name), nil
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
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
			if !isValidExtension(strings.ToLower(filepath.Ext(f.Name())), srcExts) {
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

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
