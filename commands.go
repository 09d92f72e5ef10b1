package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ossyrian/wadlumper/internal/archive"
	"github.com/ossyrian/wadlumper/internal/catalog"
	"github.com/ossyrian/wadlumper/internal/collect"
	"github.com/ossyrian/wadlumper/internal/config"
	"github.com/ossyrian/wadlumper/internal/wad2"
)

var listCmd = &cobra.Command{
	Use:   "list WAD",
	Short: "List the lumps of an archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cfg, afero.NewOsFs(), args[0], cmd.OutOrStdout())
	},
}

var packCmd = &cobra.Command{
	Use:   "pack -o OUT [--base WAD] [--remove NAME]... [PATH | NAME=PATH]...",
	Short: "Build an archive from lump files, optionally editing an existing one",
	Long: `Build an archive from lump files, optionally editing an existing one.

Lumps of --base are kept in their original order, minus any --remove names.
Each PATH is then appended: files as-is, directories walked for files with
the configured lump extension. NAME=PATH stores PATH under lump name NAME.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPack(cfg, afero.NewOsFs(), args, cmd.OutOrStdout())
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract WAD [NAME]...",
	Short: "Write lumps out as NAME.lmp files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cfg, afero.NewOsFs(), args[0], args[1:], cmd.OutOrStdout())
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify WAD",
	Short: "Check that every lump of an archive can be read back",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(afero.NewOsFs(), args[0], cmd.OutOrStdout())
	},
}

func init() {
	listCmd.Flags().Bool("sort", false, "order lumps by name instead of archive order")
	viper.BindPFlag("sort", listCmd.Flags().Lookup("sort"))

	packCmd.Flags().StringP("output", "o", "", "path to write the archive to (required)")
	packCmd.Flags().StringP("base", "b", "", "existing archive to start from")
	packCmd.Flags().StringSliceP("remove", "r", nil, "lump name to drop from the base archive (repeatable)")
	packCmd.Flags().String("lump-ext", ".lmp", "extension of lump files picked up from directories (empty for all files)")
	packCmd.Flags().Bool("dry-run", false, "build the archive in memory without writing it")
	packCmd.MarkFlagRequired("output")

	viper.BindPFlag("output", packCmd.Flags().Lookup("output"))
	viper.BindPFlag("base", packCmd.Flags().Lookup("base"))
	viper.BindPFlag("remove", packCmd.Flags().Lookup("remove"))
	viper.BindPFlag("lump_ext", packCmd.Flags().Lookup("lump-ext"))
	viper.BindPFlag("dry_run", packCmd.Flags().Lookup("dry-run"))

	extractCmd.Flags().StringP("dir", "d", ".", "directory to extract lumps into")
	viper.BindPFlag("extract_dir", extractCmd.Flags().Lookup("dir"))
}

// runList prints every lump of the archive at path
func runList(cfg *config.Config, fs afero.Fs, path string, out io.Writer) error {
	c, err := archive.NewReader(fs, slog.Default()).Open(path)
	if err != nil {
		return logFailure("list", err)
	}

	seq := c.List()
	if cfg.SortByName {
		seq = c.Sorted()
	}
	entries := slices.Collect(seq)

	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tOFFSET")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Name, e.Size, offsetOf(e.Source))
	}
	fmt.Fprintf(tw, "%d lumps\t%d\t\n", len(entries),
		lo.SumBy(entries, func(e catalog.Entry) int64 { return e.Size }))

	return tw.Flush()
}

func offsetOf(src catalog.Source) string {
	switch s := src.(type) {
	case catalog.ArchiveRange:
		return fmt.Sprintf("%d", s.Offset)
	case catalog.StandaloneFile:
		return s.Path
	default:
		panic(fmt.Sprintf("unknown lump source %T", src))
	}
}

// runPack loads the optional base archive, applies removals and additions,
// and saves the result
func runPack(cfg *config.Config, fs afero.Fs, args []string, out io.Writer) error {
	if cfg.Output == "" {
		return fmt.Errorf("no output archive given")
	}

	logger := slog.With("output", cfg.Output)

	c := catalog.New()
	if cfg.Base != "" {
		var err error
		c, err = archive.NewReader(fs, logger).Open(cfg.Base)
		if err != nil {
			return logFailure("pack", err)
		}
	}

	for _, name := range cfg.Remove {
		if !c.Remove(name) {
			logger.Warn("lump not in archive, nothing removed", "name", name)
			continue
		}
		logger.Debug("removed lump", "name", name)
	}

	items, err := collect.Paths(args, cfg.LumpExt)
	if err != nil {
		return logFailure("pack", err)
	}
	for _, it := range items {
		rec, err := c.Add(it.NameSource, it.Path)
		if err != nil {
			return logFailure("pack", fmt.Errorf("failed to add %s: %w", it.Path, err))
		}
		logger.Debug("added lump", "name", rec.Name, "path", it.Path)
	}

	writeFs := fs
	if cfg.DryRun {
		// writes land in memory, sources still come from fs
		writeFs = afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(fs), afero.NewMemMapFs())
	}

	h, err := archive.NewWriter(writeFs, logger).Save(c, cfg.Output)
	if err != nil {
		return logFailure("pack", err)
	}

	verb := "wrote"
	if cfg.DryRun {
		verb = "would write"
	}
	fmt.Fprintf(out, "%s %s: %d lumps, directory at offset %d\n", verb, cfg.Output, h.EntryCount, h.DirectoryOffset)
	return nil
}

// runExtract writes the named lumps (all when names is empty) to
// cfg.ExtractDir as NAME.lmp
func runExtract(cfg *config.Config, fs afero.Fs, path string, names []string, out io.Writer) error {
	r := archive.NewReader(fs, slog.Default())

	c, err := r.Open(path)
	if err != nil {
		return logFailure("extract", err)
	}

	recs := c.Records()
	if len(names) > 0 {
		recs = recs[:0]
		for _, n := range names {
			rec, ok := c.Get(n)
			if !ok {
				return logFailure("extract", fmt.Errorf("%w: no lump named %q in %s", wad2.ErrSourceUnavailable, n, path))
			}
			recs = append(recs, *rec)
		}
	}

	dir := cfg.ExtractDir
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return logFailure("extract", fmt.Errorf("%w: %w", wad2.ErrIO, err))
	}

	for _, rec := range recs {
		dest := filepath.Join(dir, lumpFileName(rec.Name))
		if err := extractLump(r, fs, rec, dest); err != nil {
			return logFailure("extract", err)
		}
		fmt.Fprintln(out, dest)
	}

	return nil
}

func extractLump(r *archive.Reader, fs afero.Fs, rec catalog.Record, dest string) error {
	rc, _, err := r.OpenLump(rec)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := afero.WriteReader(fs, dest, rc); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", wad2.ErrIO, dest, err)
	}
	return nil
}

// lumpFileName maps a lump name to a file name. Path separators are the
// only bytes that cannot appear in a file name.
func lumpFileName(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name) + ".lmp"
}

// runVerify re-reads every lump of the archive at path
func runVerify(fs afero.Fs, path string, out io.Writer) error {
	r := archive.NewReader(fs, slog.Default())

	c, err := r.Open(path)
	if err != nil {
		return logFailure("verify", err)
	}

	var total int64
	for _, rec := range c.Records() {
		rc, want, err := r.OpenLump(rec)
		if err != nil {
			return logFailure("verify", err)
		}
		n, err := io.Copy(io.Discard, rc)
		rc.Close()
		if err != nil {
			return logFailure("verify", fmt.Errorf("%w: lump %s: %w", wad2.ErrSourceUnavailable, rec.Name, err))
		}
		if n != want {
			return logFailure("verify", fmt.Errorf("%w: lump %s: read %d of %d bytes",
				wad2.ErrSourceUnavailable, rec.Name, n, want))
		}
		total += n
	}

	fmt.Fprintf(out, "%s: ok, %d lumps, %d bytes of lump data\n", path, c.Len(), total)
	return nil
}

// logFailure records err with its kind and hands it back for cobra to print
func logFailure(op string, err error) error {
	slog.Error(fmt.Sprintf("%s failed", op), "kind", wad2.Kind(err), "error", err)
	return err
}
