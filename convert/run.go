// Package convert implements batch subcommands applying sanitize, split, join
// and export actions to single files, directory trees and zip archives.
package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"pagemaker/archive"
	"pagemaker/common"
	"pagemaker/state"
)

// Run returns command action performing requested batch action.
func Run(action Action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) (err error) {
		if err := ctx.Err(); err != nil {
			return err
		}

		env := state.EnvFromContext(ctx)
		log := env.Log.Named(action.String())

		src := cmd.Args().Get(0)
		if len(src) == 0 {
			return errors.New("no input source has been specified")
		}
		src, err = filepath.Abs(src)
		if err != nil {
			return err
		}

		dst := cmd.Args().Get(1)
		if len(dst) == 0 {
			if dst, err = os.Getwd(); err != nil {
				return fmt.Errorf("unable to get working directory: %w", err)
			}
		}
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
		if cmd.Args().Len() > 2 {
			log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
		}

		applyFlags(cmd, env, log)

		log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
		defer func(start time.Time) {
			log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
		}(time.Now())

		return process(ctx, src, dst, action, log)
	}
}

// applyFlags overrides configuration with command line.
func applyFlags(cmd *cli.Command, env *state.LocalEnv, log *zap.Logger) {
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	if cmd.IsSet("target") {
		target, err := common.ParseTargetArea(cmd.String("target"))
		if err != nil {
			log.Warn("Unknown target area requested, keeping configured", zap.Stringer("target", env.Cfg.Sanitizer.Target), zap.Error(err))
		} else {
			env.Cfg.Sanitizer.Target = target
		}
	}
	if cmd.IsSet("mobile") {
		env.Cfg.Export.MobileMode = cmd.Bool("mobile")
	}
	if cmd.IsSet("full") {
		env.Cfg.Export.FullDocument = cmd.Bool("full")
	}
	if cmd.IsSet("minify") {
		env.Cfg.Export.Minify = cmd.Bool("minify")
	}

	env.CodePage = lookupCharset(cmd.String("force-zip-cp"), "Forcefully converting all non UTF-8 file names in archives", log)
	env.InputCharset = lookupCharset(cmd.String("charset"), "Forcefully decoding HTML sources", log)
}

func lookupCharset(cp, msg string, log *zap.Logger) encoding.Encoding {
	if len(cp) == 0 {
		return nil
	}
	e, err := ianaindex.IANA.Encoding(cp)
	if err != nil || e == nil {
		log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
		return nil
	}
	n, _ := ianaindex.IANA.Name(e)
	log.Debug(msg, zap.String("charset", n))
	return e
}

// process determines the input type (directory, archive, or single file) and
// processes accordingly.
func process(ctx context.Context, src, dst string, action Action, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, action, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", dst, action, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		kind, enc, err := isSourceFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if action.accepts(kind) && len(tail) == 0 {
			file, err := os.Open(head)
			if err != nil {
				return fmt.Errorf("unable to process file: %w", err)
			}
			defer file.Close()
			if err := processPage(ctx, selectReader(file, enc), filepath.Base(head), dst, kind, action, log); err != nil {
				return fmt.Errorf("unable to process file (%s): %w", head, err)
			}
			break
		}
		return fmt.Errorf("input was not recognized as %s source (%s)", action, head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding sources and processes them. Single
// failures are logged and collected, walking continues.
func processDir(ctx context.Context, dir, dst string, action Action, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	var failures error
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.IsDir() && path != dir && path == dst {
			// results written into source tree are not sources
			return filepath.SkipDir
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			if err := processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, action, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
				failures = multierr.Append(failures, err)
			}
			return nil
		}

		kind, enc, err := isSourceFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !action.accepts(kind) {
			log.Debug("Skipping file, not recognized as source or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			failures = multierr.Append(failures, err)
			return nil
		}
		defer file.Close()

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processPage(ctx, selectReader(file, enc), src, dst, kind, action, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			failures = multierr.Append(failures, err)
		}
		return nil
	})
	return multierr.Append(err, failures)
}

// processArchive walks all files inside archive, finds sources under
// "pathIn" and processes them.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, action Action, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	var failures error
	err = archive.Walk(path, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		kind, enc, err := isSourceInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if !action.accepts(kind) {
			log.Debug("Skipping file, not recognized as source", zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			failures = multierr.Append(failures, err)
			return nil
		}
		defer r.Close()

		cp := state.EnvFromContext(ctx).CodePage

		pathInArchive := f.FileHeader.Name
		if cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if err := processPage(ctx, selectReader(r, enc), filepath.Join(pathOut, filepath.FromSlash(pathInArchive)), dst, kind, action, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			failures = multierr.Append(failures, err)
		}
		return nil
	})
	return multierr.Append(err, failures)
}

// processPage processes single source. "src" is part of the source path
// (always including file name) relative to the original path. When actual
// file was specified it will be just base file name without a path. When
// looking inside archive or directory it will be relative path inside
// archive or directory. "dst" is the destination directory.
func processPage(ctx context.Context, r io.Reader, src, dst string, kind srcKind, action Action, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Processing source", zap.String("from", src), zap.Stringer("kind", kind))
	defer func(start time.Time) {
		// one broken page must not stop the batch
		if r := recover(); r != nil {
			log.Error("Processing ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("processing panic: %v", r)
		} else if rerr == nil {
			log.Info("Source processed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	c, err := prepareContent(ctx, r, src, kind, action, log)
	if err != nil {
		return err
	}

	outputName = buildOutputPath(c, src, dst, env)

	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, c.Output, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	// Store processing result for debugging
	if env.Rpt != nil {
		env.Rpt.StoreData(fmt.Sprintf("content-%s.txt", sourceBase(src)), []byte(c.String()))
		rel, err := filepath.Rel(dst, outputName)
		if err != nil {
			rel = filepath.Base(outputName)
		}
		env.Rpt.Store("result/"+filepath.ToSlash(rel), outputName)
	}
	return nil
}
