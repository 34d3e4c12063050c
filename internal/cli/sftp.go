package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hozaki45/NEXUS-ENA/internal/collector"
	"github.com/hozaki45/NEXUS-ENA/internal/config"
	"github.com/hozaki45/NEXUS-ENA/internal/storage"
)

var sftpTimeout time.Duration

// sftpCollectCmd represents the sftp-collect command
var sftpCollectCmd = &cobra.Command{
	Use:   "sftp-collect",
	Short: "Download today's vendor files from the SFTP server",
	Long: `Sftp-collect connects to the vendor SFTP endpoint with key-based
authentication, downloads today's CSV files, converts them to parquet
with provenance columns, and uploads them with metadata records.

Per-file failures are logged and skipped; a connection failure aborts
the whole run.`,
	RunE: runSFTPCollect,
}

func init() {
	rootCmd.AddCommand(sftpCollectCmd)
	sftpCollectCmd.Flags().DurationVar(&sftpTimeout, "timeout", 30*time.Minute, "overall collection timeout")
}

func runSFTPCollect(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sftpTimeout)
	defer cancel()

	log := newLogger()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if err := cfg.ValidateSFTP(); err != nil {
		return err
	}

	clients, err := storage.NewClients(ctx)
	if err != nil {
		return err
	}

	objects := storage.NewS3Store(clients.S3, cfg.Bucket)
	metadata := storage.NewMetadataTable(clients.DynamoDB, cfg.MetadataTable)
	params := storage.NewSSMParameters(clients.SSM)

	c := collector.NewSFTPCollector(objects, metadata, params, collector.SFTPConfig{
		Host:         cfg.SFTP.Host,
		Port:         cfg.SFTP.Port,
		Username:     cfg.SFTP.Username,
		RemotePath:   cfg.SFTP.RemotePath,
		KeyParameter: cfg.SFTP.KeyParameter,
	}, cfg.Environment, log)

	return c.Run(ctx)
}
