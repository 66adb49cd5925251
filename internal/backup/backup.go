// Package backup snapshots the SQLite database to S3-compatible storage on
// a fixed interval and restores snapshots back to disk.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"
)

const (
	keyPrefix    = "backup-"
	plainSuffix  = ".db"
	cryptSuffix  = ".db.enc"
	keyTimestamp = "2006-01-02T150405Z"
)

var ErrDisabled = errors.New("backup not configured: S3 bucket or credentials missing")

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds backup manager configuration. An empty Passphrase uploads
// plain snapshots; a zero Retention keeps every snapshot.
type Config struct {
	S3         S3Config
	Prefix     string
	Interval   time.Duration
	Retention  time.Duration
	Passphrase string
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

// Status holds the current backup manager status.
type Status struct {
	State      State      `json:"state"`
	LastBackup *time.Time `json:"last_backup,omitempty"`
	LastKey    string     `json:"last_key,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Manager uploads database snapshots to S3-compatible storage.
type Manager struct {
	mu     sync.RWMutex
	run    sync.Mutex
	cfg    Config
	status Status

	db     *sql.DB
	client s3Client
	logger *slog.Logger
	now    func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager returns a manager that is disabled unless cfg names a bucket and
// credentials.
func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:    cfg,
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		status: Status{State: StateDisabled},
	}
	if cfg.S3.complete() {
		m.client = newS3Client(cfg.S3)
		m.status.State = StateIdle
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start runs a backup every cfg.Interval until ctx is cancelled or Stop is
// called. It is a no-op when the manager is disabled.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cfg.Interval <= 0 {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunNow(ctx); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the schedule and waits for an in-flight backup to finish.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current backup status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

func (m *Manager) fail(err error) error {
	prev := m.Status()
	m.setStatus(Status{State: StateError, LastBackup: prev.LastBackup, LastKey: prev.LastKey, Error: err.Error()})
	return err
}

// RunNow snapshots the database, uploads it and prunes expired snapshots.
// It returns the object key of the new snapshot.
func (m *Manager) RunNow(ctx context.Context) (string, error) {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return "", ErrDisabled
	}

	m.run.Lock()
	defer m.run.Unlock()

	prev := m.Status()
	m.setStatus(Status{State: StateRunning, LastBackup: prev.LastBackup, LastKey: prev.LastKey})

	tmpDir, err := os.MkdirTemp("", "inkwell-backup-")
	if err != nil {
		return "", m.fail(fmt.Errorf("create temp dir: %w", err))
	}
	defer os.RemoveAll(tmpDir)

	snapshot := filepath.Join(tmpDir, "snapshot.db")
	if err := Snapshot(ctx, m.db, snapshot); err != nil {
		return "", m.fail(err)
	}

	started := m.now()
	key := m.cfg.Prefix + keyPrefix + started.Format(keyTimestamp)
	upload := snapshot
	if m.cfg.Passphrase != "" {
		key += cryptSuffix
		upload = snapshot + ".enc"
		salt, err := GenerateSalt()
		if err != nil {
			return "", m.fail(err)
		}
		if err := EncryptFile(snapshot, upload, m.cfg.Passphrase, salt); err != nil {
			return "", m.fail(fmt.Errorf("encrypt: %w", err))
		}
	} else {
		key += plainSuffix
	}

	f, err := os.Open(upload)
	if err != nil {
		return "", m.fail(fmt.Errorf("open snapshot: %w", err))
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return "", m.fail(fmt.Errorf("stat snapshot: %w", err))
	}

	if _, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.S3.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
	}); err != nil {
		return "", m.fail(fmt.Errorf("upload to s3: %w", err))
	}

	m.setStatus(Status{State: StateIdle, LastBackup: &started, LastKey: key})
	m.logger.Info("backup uploaded", "key", key, "bytes", stat.Size())

	if pruned, err := m.Prune(ctx); err != nil {
		m.logger.Warn("backup prune failed", "error", err)
	} else if pruned > 0 {
		m.logger.Info("pruned old backups", "count", pruned)
	}
	return key, nil
}

// Snapshot writes a consistent copy of db to path, which must not exist.
func Snapshot(ctx context.Context, db *sql.DB, path string) error {
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return fmt.Errorf("vacuum into: %w", err)
	}
	return nil
}

// List returns the keys of stored snapshots, oldest first.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	objects, err := m.list(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(objects))
	for i, o := range objects {
		keys[i] = o.key
	}
	return keys, nil
}

type object struct {
	key      string
	modified time.Time
}

func (m *Manager) list(ctx context.Context) ([]object, error) {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return nil, ErrDisabled
	}

	var (
		out   []object
		token *string
	)
	for {
		page, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(m.cfg.S3.Bucket),
			Prefix:            aws.String(m.cfg.Prefix + keyPrefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, o := range page.Contents {
			out = append(out, object{key: aws.ToString(o.Key), modified: aws.ToTime(o.LastModified)})
		}
		if !aws.ToBool(page.IsTruncated) {
			break
		}
		token = page.NextContinuationToken
	}

	// keys embed a sortable timestamp
	slices.SortFunc(out, func(a, b object) int { return strings.Compare(a.key, b.key) })
	return out, nil
}

// Prune deletes snapshots older than the retention period and returns how
// many were removed.
func (m *Manager) Prune(ctx context.Context) (int, error) {
	if m.cfg.Retention <= 0 {
		return 0, nil
	}
	objects, err := m.list(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := m.now().Add(-m.cfg.Retention)
	pruned := 0
	for _, o := range objects {
		if !o.modified.Before(cutoff) {
			continue
		}
		if _, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(m.cfg.S3.Bucket),
			Key:    aws.String(o.key),
		}); err != nil {
			m.logger.Warn("failed to delete backup", "key", o.key, "error", err)
			continue
		}
		pruned++
	}
	return pruned, nil
}

// Restore downloads the snapshot stored under key, decrypts it when needed,
// checks its integrity and writes it to dst. The database at dst must not be
// open.
func (m *Manager) Restore(ctx context.Context, key, dst string) error {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()
	if client == nil {
		return ErrDisabled
	}

	tmpDir, err := os.MkdirTemp("", "inkwell-restore-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.S3.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	downloaded := filepath.Join(tmpDir, "download")
	if err := writeFile(downloaded, result.Body); err != nil {
		return fmt.Errorf("write download: %w", err)
	}

	restored := downloaded
	if strings.HasSuffix(key, cryptSuffix) {
		if m.cfg.Passphrase == "" {
			return errors.New("backup is encrypted but no passphrase is configured")
		}
		restored = filepath.Join(tmpDir, "restored.db")
		if err := DecryptFile(downloaded, restored, m.cfg.Passphrase); err != nil {
			return fmt.Errorf("decrypt backup: %w", err)
		}
	}

	if err := checkIntegrity(restored); err != nil {
		return err
	}

	if err := copyFile(restored, dst); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}
	os.Remove(dst + "-wal")
	os.Remove(dst + "-shm")
	return nil
}

func checkIntegrity(path string) error {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

func writeFile(path string, r io.Reader) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeFile(dst, in)
}
