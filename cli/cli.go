package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"affy-calvin/calvin"
	"affy-calvin/calvin/cel"
	"affy-calvin/ds"
)

type (
	Args struct {
		Config   string       `help:"path to a YAML config file" placeholder:"config.yaml"`
		LogLevel string       `arg:"--log-level" help:"debug, info, warn, error or none"`
		Convert  *ConvertCmd  `arg:"subcommand:convert"`
		Batch    *BatchCmd    `arg:"subcommand:batch"`
		Channels *ChannelsCmd `arg:"subcommand:channels"`
	}
	ConvertCmd struct {
		From  string `arg:"required" help:"path to source file" placeholder:"in.cel"`
		To    string `arg:"required" help:"path to destination file" placeholder:"out.json"`
		Force bool   `help:"overwrite the destination file"`
		Full  bool   `help:"keep metadata types and parent headers in full"`
	}
	BatchCmd struct {
		Out   string   `arg:"required" help:"destination folder" placeholder:"DIR"`
		Force bool     `help:"overwrite existing destination files"`
		Full  bool     `help:"keep metadata types and parent headers in full"`
		Files []string `arg:"positional,required" placeholder:"FILE"`
	}
	ChannelsCmd struct {
		File string `arg:"positional,required" placeholder:"FILE"`
	}
	ChannelSummary struct {
		Index       int    `json:"index"`
		Name        string `json:"name"`
		Intensities int    `json:"intensities"`
		Outliers    int    `json:"outliers"`
		Masks       int    `json:"masks"`
	}
	FileSummary struct {
		File       string           `json:"file"`
		Dimensions *cel.Dimensions  `json:"dimensions,omitempty"`
		Channels   []ChannelSummary `json:"channels"`
	}
)

func (Args) Description() string {
	des := strings.Join(
		[]string{
			"A CLI utility to read Affymetrix Generic (Calvin) files,",
			"plain or gzip compressed, and convert them to ordered JSON.",
		},
		"\n",
	)
	des += "\n"
	return des
}

func CheckExistence(path string) bool {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil
}

// Convert decodes one file and writes its ordered JSON rendering to `to`.
func Convert(cfg Config, logger log.Logger, from string, to string, force bool) error {
	if !CheckExistence(from) {
		return errors.Errorf(`source file "%s" does not exist`, from)
	}
	if CheckExistence(to) && !force {
		return errors.Errorf(`destination file "%s" exists; use --force to overwrite`, to)
	}
	decodeConfig := cfg.DecodeConfig(log.With(logger, "file", from))
	file, err := calvin.Open(from, decodeConfig)
	if err != nil {
		return errors.Wrap(err, "Convert error")
	}
	lhm, err := calvin.ToLinkedHashMap(file, decodeConfig)
	if err != nil {
		return errors.Wrap(err, "Convert error")
	}
	bs, err := ds.DumpJSONIndent(lhm, cfg.Output.Indent)
	if err != nil {
		return errors.Wrap(err, "Convert error")
	}
	if err := os.WriteFile(to, bs, 0644); err != nil {
		return errors.Wrapf(err, `Convert error: write "%s"`, to)
	}
	level.Info(logger).Log("msg", "converted", "from", from, "to", to, "groups", len(file.DataGroups))
	return nil
}

// BatchTarget names the JSON file a source converts to inside dir.
func BatchTarget(dir string, source string) string {
	base := filepath.Base(source)
	for _, ext := range []string{".gz", filepath.Ext(strings.TrimSuffix(base, ".gz"))} {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(dir, base+".json")
}

// Batch converts files concurrently, each with its own stream. The first
// failure cancels files not started yet.
func Batch(ctx context.Context, cfg Config, logger log.Logger, cmd BatchCmd) error {
	if err := os.MkdirAll(cmd.Out, 0755); err != nil {
		return errors.Wrap(err, "Batch error")
	}
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.Workers)
	for _, source := range cmd.Files {
		source := source
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return Convert(cfg, logger, source, BatchTarget(cmd.Out, source), cmd.Force)
		})
	}
	if err := group.Wait(); err != nil {
		return errors.Wrap(err, "Batch error")
	}
	return nil
}

// Summarize lists the channels of a multichannel CEL file.
func Summarize(path string, file *calvin.File) (*FileSummary, error) {
	if !cel.IsMultiChannel(file) {
		return nil, errors.Errorf(`"%s" is "%s", not a multichannel CEL file`, path, file.DataHeader.DataTypeID)
	}
	summary := FileSummary{File: path}
	if dimensions, err := cel.GetDimensions(file); err == nil {
		summary.Dimensions = &dimensions
	}
	for i := 0; i < cel.ChannelCount(file); i++ {
		name, err := cel.ChannelName(file, i)
		if err != nil {
			return nil, errors.Wrap(err, "Summarize error")
		}
		intensities, err := cel.Intensities(file, i)
		if err != nil {
			return nil, errors.Wrap(err, "Summarize error")
		}
		channel := ChannelSummary{Index: i, Name: name, Intensities: len(intensities)}
		if outliers, err := cel.Outliers(file, i); err == nil {
			channel.Outliers = len(outliers)
		}
		if masks, err := cel.Masks(file, i); err == nil {
			channel.Masks = len(masks)
		}
		summary.Channels = append(summary.Channels, channel)
	}
	return &summary, nil
}

func Channels(cfg Config, logger log.Logger, path string) error {
	file, err := calvin.Open(path, cfg.DecodeConfig(logger))
	if err != nil {
		return errors.Wrap(err, "Channels error")
	}
	summary, err := Summarize(path, file)
	if err != nil {
		return errors.Wrap(err, "Channels error")
	}
	fmt.Println(ds.DumpJSON(summary))
	return nil
}

func Start() {
	args := Args{}
	parser := arg.MustParse(&args)

	cfg, err := LoadConfig(args.Config)
	if err != nil {
		parser.Fail(err.Error())
	}
	if args.LogLevel != "" {
		cfg.LogLevel = args.LogLevel
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		parser.Fail(err.Error())
	}

	switch {
	case args.Convert != nil:
		cfg = cfg.WithFull(args.Convert.Full)
		err = Convert(cfg, logger, args.Convert.From, args.Convert.To, args.Convert.Force)
	case args.Batch != nil:
		cfg = cfg.WithFull(args.Batch.Full)
		err = Batch(context.Background(), cfg, logger, *args.Batch)
	case args.Channels != nil:
		err = Channels(cfg, logger, args.Channels.File)
	default:
		parser.WriteHelp(os.Stdout)
		return
	}
	if err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}
