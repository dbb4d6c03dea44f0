package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cloudx-io/auctionsim/report"
)

func newKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a P-256 key pair for sealing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			privPath, _ := cmd.Flags().GetString("private-key")
			pubPath, _ := cmd.Flags().GetString("public-key")

			key, err := report.GenerateSealKey()
			if err != nil {
				return err
			}
			privPEM, err := report.EncodePrivateKeyPEM(key)
			if err != nil {
				return err
			}
			pubPEM, err := report.EncodePublicKeyPEM(&key.PublicKey)
			if err != nil {
				return err
			}

			if err := os.WriteFile(privPath, privPEM, 0600); err != nil {
				return fmt.Errorf("writing private key: %w", err)
			}
			if err := os.WriteFile(pubPath, pubPEM, 0644); err != nil {
				return fmt.Errorf("writing public key: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Private key: %s\nPublic key:  %s\n", privPath, pubPath)
			return nil
		},
	}

	cmd.Flags().String("private-key", "seal.pem", "Private key output path")
	cmd.Flags().String("public-key", "seal.pub.pem", "Public key output path")

	return cmd
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <sealed-file>",
		Short: "Verify a sealed table and print its contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pubPath, _ := cmd.Flags().GetString("public-key")
			formatName, _ := cmd.Flags().GetString("format")

			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}

			pubPEM, err := os.ReadFile(pubPath)
			if err != nil {
				return fmt.Errorf("reading public key: %w", err)
			}
			pub, err := report.ParsePublicKeyPEM(pubPEM)
			if err != nil {
				return err
			}

			sealed, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading sealed table: %w", err)
			}
			table, err := report.OpenSealed(sealed, pub)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Verified %s table %s (params %s)\n", table.Kind, table.ID, table.ParamsHash)
			return report.Encode(cmd.OutOrStdout(), table, format)
		},
	}

	cmd.Flags().String("public-key", "seal.pub.pem", "Public key used to verify the seal")

	return cmd
}

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Browse tables stored with --db",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			kind, _ := cmd.Flags().GetString("kind")
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}

			store, err := report.OpenStore(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			tables, err := store.List(cmd.Context(), kind)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tROWS\tRUNS\tSEED\tCREATED")
			for _, t := range tables {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
					t.ID, t.Kind, len(t.Rows), t.Runs, t.Seed, t.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().String("kind", "", "Only list tables of this kind")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			formatName, _ := cmd.Flags().GetString("format")
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid table id: %w", err)
			}
			format, err := report.ParseFormat(formatName)
			if err != nil {
				return err
			}

			store, err := report.OpenStore(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			table, err := store.Load(cmd.Context(), id)
			if err != nil {
				return err
			}
			return report.Encode(cmd.OutOrStdout(), table, format)
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}
