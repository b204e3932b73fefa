package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"inkwell/app/repositories"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the users and sessions database",
	}
	cmd.PersistentFlags().BoolP("yes", "y", false, "answer yes to confirmation prompts")

	backup := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the database",
		Args:  cobra.NoArgs,
		RunE:  runBackup,
	}
	backup.Flags().String("dir", "data/backups", "directory for backup files")
	backup.Flags().String("s3-bucket", "", "also upload the backup to this S3 bucket")
	backup.Flags().String("s3-prefix", "inkwell/", "key prefix for S3 uploads")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Initialize a new empty database",
			Args:  cobra.NoArgs,
			RunE:  runInit,
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove the database",
			Args:  cobra.NoArgs,
			RunE:  runClean,
		},
		backup,
		&cobra.Command{
			Use:   "restore FILE",
			Short: "Restore the database from a backup",
			Args:  cobra.ExactArgs(1),
			RunE:  runRestore,
		},
	)
	return cmd
}

func dbPathFor(cmd *cobra.Command) (string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	return cfg.DBPath, nil
}

// runInit initializes a new empty database.
func runInit(cmd *cobra.Command, _ []string) error {
	dbPath, err := dbPathFor(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(dbPath); err == nil {
		printWarn(out, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return errors.Wrap(err, "create database directory")
	}

	db, err := repositories.Open(dbPath, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	printSuccess(out, "Database initialized successfully")
	return nil
}

// runClean removes the database after confirmation.
func runClean(cmd *cobra.Command, _ []string) error {
	dbPath, err := dbPathFor(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		printWarn(out, "Database is already clean (does not exist)")
		return nil
	}
	if !confirm(cmd, "Are you sure you want to clean the database? This cannot be undone.") {
		printWarn(out, "Operation cancelled")
		return nil
	}
	if err := os.RemoveAll(dbPath); err != nil {
		return errors.Wrap(err, "clean database")
	}

	printSuccess(out, "Database cleaned successfully")
	return nil
}

// runBackup writes a full backup and optionally uploads it to S3.
func runBackup(cmd *cobra.Command, _ []string) error {
	dbPath, err := dbPathFor(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		printWarn(out, "No database exists to backup")
		return nil
	}

	backupDir, _ := cmd.Flags().GetString("dir")
	backupFile, err := backupDatabase(dbPath, backupDir, time.Now())
	if err != nil {
		return err
	}
	printSuccess(out, "Database backed up successfully to %s", backupFile)

	bucket, _ := cmd.Flags().GetString("s3-bucket")
	if bucket == "" {
		return nil
	}
	prefix, _ := cmd.Flags().GetString("s3-prefix")

	awsCfg, err := config.LoadDefaultConfig(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "load AWS config")
	}
	key := prefix + filepath.Base(backupFile)
	if err := uploadBackup(cmd.Context(), s3.NewFromConfig(awsCfg), bucket, key, backupFile); err != nil {
		return err
	}
	printSuccess(out, "Uploaded backup to s3://%s/%s", bucket, key)
	return nil
}

func backupDatabase(dbPath, backupDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", errors.Wrap(err, "create backup directory")
	}

	db, err := repositories.Open(dbPath, nil)
	if err != nil {
		return "", err
	}
	defer db.Close()

	backupFile := filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", now.Unix()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", errors.Wrap(err, "create backup file")
	}
	defer f.Close()

	if _, err := db.Backup(f, 0); err != nil {
		return "", errors.Wrap(err, "backup database")
	}
	return backupFile, nil
}

// objectPutter is the part of the S3 client used for uploads.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

func uploadBackup(ctx context.Context, client objectPutter, bucket, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open backup file")
	}
	defer f.Close()

	contentType := "application/octet-stream"
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        f,
		ContentType: &contentType,
	})
	if err != nil {
		return errors.Wrapf(err, "upload backup to s3://%s/%s", bucket, key)
	}
	return nil
}

// runRestore loads a backup into a fresh database, replacing the existing
// one after confirmation.
func runRestore(cmd *cobra.Command, args []string) error {
	dbPath, err := dbPathFor(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	backupFile := args[0]

	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		return errors.Errorf("backup file does not exist: %s", backupFile)
	}
	if err != nil {
		return errors.Wrap(err, "stat backup file")
	}
	if fi.Size() == 0 {
		return errors.Errorf("backup file is empty: %s", backupFile)
	}

	if _, err := os.Stat(dbPath); err == nil {
		if !confirm(cmd, "Existing database found. Do you want to replace it?") {
			printWarn(out, "Operation cancelled")
			return nil
		}
		if err := os.RemoveAll(dbPath); err != nil {
			return errors.Wrap(err, "remove existing database")
		}
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return errors.Wrap(err, "create database directory")
	}

	db, err := repositories.Open(dbPath, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return errors.Wrap(err, "open backup file")
	}
	defer f.Close()

	if err := loadBackup(db.Load, f); err != nil {
		return err
	}

	printSuccess(out, "Database restored successfully")
	return nil
}

// loadBackup runs load, turning a panic on a corrupt backup into an error.
func loadBackup(load func(io.Reader, int) error, r io.Reader) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("panic occurred during restore: %v", p)
		}
	}()
	if err := load(r, 4); err != nil {
		return errors.Wrap(err, "restore database")
	}
	return nil
}
