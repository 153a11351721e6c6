package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rob-gra/bufr/bufr"
	"github.com/rob-gra/bufr/tables"
)

func newDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <file> [file...]",
		Short: "Decode one or more BUFR message files and print their observations as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDecode,
	}
	return cmd
}

func runDecode(cmd *cobra.Command, args []string) error {
	cfg := bufr.Configuration{
		TableDirectory:     viper.GetString("table-dir"),
		VerboseDescriptors: viper.GetBool("verbose"),
	}

	provider := tables.NewProvider(cfg.TableDirectory)
	dec, err := bufr.NewDecoder(provider, cfg)
	if err != nil {
		return err
	}
	dec.LogMode(cfg.VerboseDescriptors)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	for _, path := range args {
		if err := decodeFile(dec, path, enc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func decodeFile(dec *bufr.Decoder, path string, enc *json.Encoder) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		msg, err := dec.DecodeMessage(f)
		if err != nil {
			if errors.Is(err, bufr.ErrNotBufr) {
				return nil
			}
			return err
		}
		if err := enc.Encode(msg.Output); err != nil {
			return err
		}
	}
}
