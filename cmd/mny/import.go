package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mny-engine/mny/internal/cli"
	"github.com/mny-engine/mny/internal/common"
	"github.com/mny-engine/mny/internal/importer"
	"github.com/mny-engine/mny/internal/ofx"
	"github.com/mny-engine/mny/internal/qif"
)

func importCmd() *cobra.Command {
	var (
		account string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import transactions from a QIF or OFX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer func() { _ = f.Close() }()

			records, err := parseImportFile(f, path, format)
			if err != nil {
				return err
			}

			store, _, user, err := ledgerFor(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := importer.New(store).Import(ctx, user.ID, account, records)
			if err != nil {
				return err
			}
			cmd.Println(cli.SuccessStyle.Render(fmt.Sprintf(
				"Imported %d transactions, skipped %d", result.Imported, result.Skipped,
			)))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account name (default: your default account)")
	cmd.Flags().StringVar(&format, "format", "", "file format: qif or ofx (default: by extension)")
	return cmd
}

func parseImportFile(r io.Reader, path, format string) ([]importer.Record, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".qif":
			format = "qif"
		case ".ofx", ".qfx":
			format = "ofx"
		}
	}

	switch format {
	case "qif":
		return qif.Parse(r)
	case "ofx":
		return ofx.Parse(r)
	default:
		return nil, common.NewUserError(
			fmt.Sprintf("cannot tell the format of %s; pass --format qif or --format ofx", filepath.Base(path)),
			common.ErrInvalidConfig,
		)
	}
}
