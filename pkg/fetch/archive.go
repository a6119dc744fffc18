package fetch

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"

	"github.com/younsl/jj/internal/errs"
)

// BuildOptions describe how to regenerate instances.json from a source tarball
type BuildOptions struct {
	// TarballURL serves a gzip-compressed tar of the repository
	TarballURL string
	// Shell and Recipe form the build command: <Shell> <Recipe> --run <Task>.
	// An empty Recipe is left out of the argument list.
	Shell  string
	Recipe string
	Task   string
	// Artifact is the built document, relative to the extracted repository
	Artifact string
	// Destination is where the artifact is written
	Destination string
	// TempRoot is the parent of the scratch directory, os.TempDir() when empty
	TempRoot string

	Stdout io.Writer
	Stderr io.Writer
}

// BuildInstances downloads the source tarball, runs the build inside the
// extracted repository and copies the resulting artifact to opts.Destination.
// The scratch directory is removed whether or not the build succeeds.
func (f *Fetcher) BuildInstances(ctx context.Context, opts BuildOptions) (int64, error) {
	const op = "fetch.BuildInstances"

	scratch, err := os.MkdirTemp(opts.TempRoot, "jj-build-*")
	if err != nil {
		return 0, errs.E(errs.KindIO, op, err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			f.logger.Warn().Err(err).Str("dir", scratch).Msg("Failed to remove scratch directory")
		}
	}()

	body, err := f.get(ctx, op, opts.TarballURL)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	err = extractTarGz(body, scratch)
	f.closeBody(body)
	if err != nil {
		return 0, err
	}
	f.logger.Debug().Str("dir", scratch).Dur("elapsed", time.Since(start)).Msg("Extracted source tarball")

	repoDir, err := singleEntry(scratch)
	if err != nil {
		return 0, err
	}

	if err := f.runBuild(ctx, repoDir, opts); err != nil {
		return 0, err
	}

	n, err := copyFileAtomic(filepath.Join(repoDir, opts.Artifact), opts.Destination)
	if err != nil {
		return 0, err
	}
	f.logger.Info().
		Str("path", opts.Destination).
		Str("size", humanize.Bytes(uint64(n))).
		Msg("Wrote instance document")
	return n, nil
}

func (f *Fetcher) runBuild(ctx context.Context, repoDir string, opts BuildOptions) error {
	const op = "fetch.runBuild"

	var args []string
	if opts.Recipe != "" {
		recipe := opts.Recipe
		// The command runs inside repoDir, so a relative recipe would stop resolving
		if !filepath.IsAbs(recipe) {
			abs, err := filepath.Abs(recipe)
			if err != nil {
				return errs.E(errs.KindIO, op, err)
			}
			recipe = abs
		}
		args = append(args, recipe)
	}
	args = append(args, "--run", opts.Task)

	cmd := exec.CommandContext(ctx, opts.Shell, args...)
	cmd.Dir = repoDir
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	f.logger.Info().Str("command", cmd.String()).Str("dir", repoDir).Msg("Running build")
	start := time.Now()
	if err := cmd.Run(); err != nil {
		return errs.Errorf(errs.KindSubprocess, op, "%s: %w", cmd.String(), err)
	}
	f.logger.Info().Dur("elapsed", time.Since(start)).Msg("Build finished")
	return nil
}

// extractTarGz unpacks a gzip-compressed tar stream into dst
func extractTarGz(r io.Reader, dst string) error {
	const op = "fetch.extractTarGz"

	zr, err := gzip.NewReader(r)
	if err != nil {
		return errs.Errorf(errs.KindArchiveShape, op, "open gzip stream: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errs.Errorf(errs.KindArchiveShape, op, "read tar entry: %w", err)
		}

		// GitHub tarballs lead with a pax global header carrying the commit id
		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		target, err := entryPath(dst, hdr.Name)
		if err != nil {
			return err
		}
		if err := rejectSymlinkedPath(dst, target); err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errs.E(errs.KindIO, op, err)
			}
		case tar.TypeReg:
			if err := writeEntry(tr, target, hdr.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errs.E(errs.KindIO, op, err)
			}
			if err := checkSymlinkTarget(dst, target, hdr.Linkname); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return errs.E(errs.KindIO, op, err)
			}
		case tar.TypeLink:
			source, err := entryPath(dst, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := rejectSymlinkedPath(dst, filepath.Dir(source)); err != nil {
				return err
			}
			if err := os.Link(source, target); err != nil {
				return errs.E(errs.KindIO, op, err)
			}
		}
	}
}

// entryPath resolves an archive member name below dst, rejecting names that escape it
func entryPath(dst, name string) (string, error) {
	target := filepath.Join(dst, name)
	rel, err := filepath.Rel(dst, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errs.Errorf(errs.KindArchiveShape, "fetch.entryPath", "archive member %q escapes the extraction directory", name)
	}
	return target, nil
}

// checkSymlinkTarget rejects links that are absolute or point outside dst
func checkSymlinkTarget(dst, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return errs.Errorf(errs.KindArchiveShape, "fetch.checkSymlinkTarget",
			"archive symlink %s points at absolute path %q", target, linkname)
	}
	resolved := filepath.Join(filepath.Dir(target), linkname)
	if rel, err := filepath.Rel(dst, resolved); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errs.Errorf(errs.KindArchiveShape, "fetch.checkSymlinkTarget",
			"archive symlink %s points outside the extraction directory (%q)", target, linkname)
	}
	return nil
}

// rejectSymlinkedPath fails when any existing component of path below dst is
// a symlink, so no member is written through a link extracted earlier.
func rejectSymlinkedPath(dst, path string) error {
	const op = "fetch.rejectSymlinkedPath"

	rel, err := filepath.Rel(dst, path)
	if err != nil || rel == "." {
		return nil
	}
	cur := dst
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		fi, err := os.Lstat(cur)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return errs.E(errs.KindIO, op, err)
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			return errs.Errorf(errs.KindArchiveShape, op,
				"archive member %s is written through symlink %s", path, cur)
		}
	}
	return nil
}

func writeEntry(r io.Reader, target string, perm os.FileMode) error {
	const op = "fetch.writeEntry"

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errs.E(errs.KindIO, op, err)
	}
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return errs.E(errs.KindIO, op, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errs.Errorf(errs.KindArchiveShape, op, "extract %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return errs.E(errs.KindIO, op, err)
	}
	return nil
}

// singleEntry returns the only top-level entry of dir
func singleEntry(dir string) (string, error) {
	const op = "fetch.singleEntry"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errs.E(errs.KindIO, op, err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return "", errs.Errorf(errs.KindArchiveShape, op,
			"expected exactly one top-level entry in tarball, found %d: %s", len(entries), strings.Join(names, ", "))
	}
	return filepath.Join(dir, entries[0].Name()), nil
}

// copyFileAtomic copies src to dst through a temp file in dst's directory
func copyFileAtomic(src, dst string) (int64, error) {
	const op = "fetch.copyFileAtomic"

	in, err := os.Open(src)
	if err != nil {
		return 0, errs.Errorf(errs.KindIO, op, "build artifact: %w", err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errs.E(errs.KindIO, op, err)
	}

	tmp, err := os.CreateTemp(dir, ".instances-*.json")
	if err != nil {
		return 0, errs.E(errs.KindIO, op, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, in)
	if err != nil {
		tmp.Close()
		return 0, errs.E(errs.KindIO, op, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, errs.E(errs.KindIO, op, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, errs.E(errs.KindIO, op, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return 0, errs.E(errs.KindIO, op, err)
	}
	return n, nil
}
