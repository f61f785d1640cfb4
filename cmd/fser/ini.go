package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"fser/persist/ini"
	"fser/state"
)

func iniFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"},
			Usage: "INI `FILE` to work with, default is program path with .ini extension (or its name under storage.base_dir)"},
		&cli.StringFlag{Name: "codepage", Aliases: []string{"cp"},
			Usage: "use `ENCODING` instead of configured formats.ini.codepage (see IANA.org for character set names)"},
	}
}

func iniCommand() *cli.Command {
	return &cli.Command{
		Name:         "ini",
		Usage:        "Reads and writes individual INI file keys",
		OnUsageError: usageErrorHandler,
		Commands: []*cli.Command{
			{
				Name:         "get",
				Usage:        "Prints value of the key, fails when key is absent or empty",
				ArgsUsage:    "SECTION KEY",
				Flags:        iniFlags(),
				OnUsageError: usageErrorHandler,
				Action:       iniGet,
			},
			{
				Name:         "set",
				Usage:        "Writes value of the key, creating file and section as needed",
				ArgsUsage:    "SECTION KEY VALUE",
				Flags:        iniFlags(),
				OnUsageError: usageErrorHandler,
				Action:       iniSet,
			},
			{
				Name:         "dump",
				Usage:        "Prints all sections and keys",
				Flags:        iniFlags(),
				OnUsageError: usageErrorHandler,
				Action:       iniDump,
			},
		},
	}
}

// iniTarget resolves file name and options from command line and configuration.
func iniTarget(ctx context.Context, cmd *cli.Command) (string, []ini.Option, error) {
	env := state.EnvFromContext(ctx)

	opts := slices.Clone(env.INI)
	if name := cmd.String("codepage"); len(name) > 0 {
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil || enc == nil {
			return "", nil, fmt.Errorf("unknown codepage '%s'", name)
		}
		opts = append(opts, ini.WithCodepage(enc))
	}

	fname := cmd.String("file")
	if len(fname) == 0 {
		fname = ini.DefaultFileName(opts...)
	}
	return fname, opts, nil
}

func iniGet(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() != 2 {
		return errors.New("SECTION and KEY are expected")
	}
	fname, opts, err := iniTarget(ctx, cmd)
	if err != nil {
		return err
	}
	section, key := cmd.Args().Get(0), cmd.Args().Get(1)

	value, err := ini.GetRaw(fname, section, key, opts...)
	if err != nil {
		return fmt.Errorf("unable to get value: %w", err)
	}
	env.Log.Debug("Key read", zap.String("file", fname), zap.String("section", section), zap.String("key", key))

	_, err = fmt.Fprintln(os.Stdout, value)
	return err
}

func iniSet(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() != 3 {
		return errors.New("SECTION, KEY and VALUE are expected")
	}
	fname, opts, err := iniTarget(ctx, cmd)
	if err != nil {
		return err
	}
	section, key, value := cmd.Args().Get(0), cmd.Args().Get(1), cmd.Args().Get(2)

	if err := ini.SetValue(fname, section, key, value, opts...); err != nil {
		return fmt.Errorf("unable to set value: %w", err)
	}
	env.Log.Info("Key written", zap.String("file", fname), zap.String("section", section), zap.String("key", key))
	return nil
}

func iniDump(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 0 {
		env.Log.Warn("Malformed command line, arguments are not expected", zap.Strings("ignoring", cmd.Args().Slice()))
	}
	fname, opts, err := iniTarget(ctx, cmd)
	if err != nil {
		return err
	}

	out, err := ini.Dump(fname, opts...)
	if err != nil {
		return fmt.Errorf("unable to dump: %w", err)
	}
	_, err = fmt.Fprint(os.Stdout, out)
	return err
}
