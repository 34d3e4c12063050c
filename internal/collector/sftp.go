package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"

	"github.com/hozaki45/NEXUS-ENA/internal/frame"
	"github.com/hozaki45/NEXUS-ENA/internal/model"
	"github.com/hozaki45/NEXUS-ENA/internal/storage"
)

const (
	sftpDialTimeout = 30 * time.Second
	sftpSourceName  = "lseg_sftp"
)

// SFTPConfig describes the vendor endpoint and where to find its key.
type SFTPConfig struct {
	Host         string
	Port         int
	Username     string
	RemotePath   string
	KeyParameter string
}

// SFTPCollector downloads the vendor's daily CSV files, converts them to
// parquet, and records one metadata entry per file.
type SFTPCollector struct {
	objects     storage.ObjectStore
	metadata    storage.MetadataStore
	params      storage.ParameterStore
	cfg         SFTPConfig
	environment string
	log         zerolog.Logger
	now         func() time.Time
}

// NewSFTPCollector wires an SFTP collector from explicit dependencies.
func NewSFTPCollector(objects storage.ObjectStore, metadata storage.MetadataStore, params storage.ParameterStore, cfg SFTPConfig, environment string, log zerolog.Logger) *SFTPCollector {
	if cfg.RemotePath == "" {
		cfg.RemotePath = "/data"
	}
	return &SFTPCollector{
		objects:     objects,
		metadata:    metadata,
		params:      params,
		cfg:         cfg,
		environment: environment,
		log:         log,
		now:         time.Now,
	}
}

// Run performs the daily collection. Connection failures abort the run and
// propagate; per-file failures are logged and skipped. Connections are
// closed on every exit path.
func (c *SFTPCollector) Run(ctx context.Context) error {
	c.log.Info().Str("host", c.cfg.Host).Msg("starting SFTP data collection")

	sshConn, client, err := c.connect(ctx)
	if err != nil {
		return fmt.Errorf("sftp connect: %w", err)
	}
	defer func() {
		client.Close()
		sshConn.Close()
		c.log.Info().Msg("SFTP connections closed")
	}()

	files, err := c.listTodaysFiles(client)
	if err != nil {
		return fmt.Errorf("list remote files: %w", err)
	}
	if len(files) == 0 {
		c.log.Warn().Msg("no files found for today")
		c.recordEmpty(ctx)
		return nil
	}

	processed := 0
	for _, name := range files {
		if err := c.processFile(ctx, client, name); err != nil {
			c.log.Error().Err(err).Str("file", name).Msg("failed to process file")
			continue
		}
		processed++
	}
	c.log.Info().Int("processed", processed).Int("found", len(files)).Msg("SFTP collection completed")
	return nil
}

// connect retrieves the private key from the parameter store and opens an
// authenticated SFTP session.
func (c *SFTPCollector) connect(ctx context.Context) (*ssh.Client, *sftp.Client, error) {
	keyPEM, err := c.params.Get(ctx, c.cfg.KeyParameter)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve SSH key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey([]byte(keyPEM))
	if err != nil {
		return nil, nil, fmt.Errorf("parse SSH key: %w", err)
	}

	sshCfg := &ssh.ClientConfig{
		User:            c.cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sftpDialTimeout,
	}

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	sshConn, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	client, err := sftp.NewClient(sshConn)
	if err != nil {
		sshConn.Close()
		return nil, nil, fmt.Errorf("open sftp session: %w", err)
	}

	c.log.Info().Str("host", c.cfg.Host).Msg("connected to SFTP server")
	return sshConn, client, nil
}

// listTodaysFiles returns the remote CSV files whose names carry today's
// date stamp.
func (c *SFTPCollector) listTodaysFiles(client *sftp.Client) ([]string, error) {
	today := c.now().UTC().Format("20060102")

	entries, err := client.ReadDir(c.cfg.RemotePath)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if strings.Contains(name, today) && strings.HasSuffix(name, ".csv") {
			files = append(files, name)
		}
	}
	c.log.Info().Int("count", len(files)).Str("date", today).Msg("listed remote files")
	return files, nil
}

// processFile downloads one CSV, attaches the provenance columns, and
// uploads the parquet conversion with its metadata record.
func (c *SFTPCollector) processFile(ctx context.Context, client *sftp.Client, name string) error {
	remote := path.Join(c.cfg.RemotePath, name)

	f, err := client.Open(remote)
	if err != nil {
		return fmt.Errorf("open %s: %w", remote, err)
	}
	defer f.Close()

	table, err := readCSV(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", remote, err)
	}
	if table.Len() == 0 {
		return fmt.Errorf("no rows in %s", remote)
	}

	now := c.now().UTC()
	table.SetColumn("collection_timestamp", now.Format(time.RFC3339))
	table.SetColumn("source_file", name)

	body, err := table.MarshalParquet()
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	key := fmt.Sprintf("raw-data/year=%04d/month=%02d/day=%02d/lseg_%s",
		now.Year(), now.Month(), now.Day(), strings.TrimSuffix(name, ".csv")+".parquet")

	metadata := map[string]string{
		"data_source":     sftpSourceName,
		"record_count":    strconv.Itoa(table.Len()),
		"collection_time": now.Format(time.RFC3339),
		"environment":     c.environment,
	}
	if err := c.objects.Put(ctx, key, body, "application/octet-stream", metadata); err != nil {
		return err
	}
	c.log.Info().Str("key", key).Int("records", table.Len()).Msg("uploaded vendor file")

	rec := model.NewMetadataRecord(sftpSourceName, now, c.environment)
	rec.Success = true
	rec.RecordCount = table.Len()
	rec.FileKey = key
	rec.DataHash = DataHash(sftpSourceName, rec.Timestamp, table.Len())
	if err := c.metadata.Put(ctx, rec); err != nil {
		c.log.Error().Err(err).Str("file", name).Msg("metadata update failed")
	}
	return nil
}

// recordEmpty writes the failure record for a run that found no files.
func (c *SFTPCollector) recordEmpty(ctx context.Context) {
	rec := model.NewMetadataRecord(sftpSourceName, c.now(), c.environment)
	rec.Success = false
	rec.ErrorMessage = "no files available for today"
	if err := c.metadata.Put(ctx, rec); err != nil {
		c.log.Error().Err(err).Msg("metadata update failed")
	}
}

// readCSV parses delimited text into a table of string cells, using the
// header row for column names.
func readCSV(r io.Reader) (*frame.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	table := frame.New(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		table.Append(row)
	}
	return table, nil
}
