// Package updater replaces the keycolor binary with the latest GitHub
// release, keeping one backup of the previous binary for rollback.
package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/smazurov/keycolor/internal/logging"
	"github.com/smazurov/keycolor/internal/version"
)

// DefaultRepository is the GitHub slug releases are fetched from.
const DefaultRepository = "smazurov/keycolor"

// Options configures an Updater.
type Options struct {
	Repository string // GitHub repo slug, e.g. "smazurov/keycolor"
	Prerelease bool
	BackupDir  string // defaults to ~/.cache/keycolor/backup
}

// Info describes the latest release relative to the running binary.
type Info struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	ReleaseNotes    string    `json:"release_notes,omitempty"`
	ReleaseURL      string    `json:"release_url,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
	AssetSize       int       `json:"asset_size"`
	UpdateAvailable bool      `json:"update_available"`
}

// releaseSource is the part of selfupdate.Updater used here.
type releaseSource interface {
	DetectLatest(ctx context.Context, repository selfupdate.Repository) (*selfupdate.Release, bool, error)
	UpdateTo(ctx context.Context, rel *selfupdate.Release, cmdPath string) error
}

// Updater checks for and applies releases.
type Updater struct {
	repository selfupdate.Repository
	source     releaseSource
	backups    *backupStore
	current    string
	logger     logging.Logger
}

// New creates an Updater backed by the GitHub releases API.
func New(opts Options, logger logging.Logger) (*Updater, error) {
	if opts.Repository == "" {
		opts.Repository = DefaultRepository
	}

	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub source: %w", err)
	}
	up, err := selfupdate.NewUpdater(selfupdate.Config{
		Source:     source,
		Prerelease: opts.Prerelease,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create updater: %w", err)
	}

	dir := opts.BackupDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "keycolor", "backup")
	}
	backups, err := newBackupStore(dir, logger)
	if err != nil {
		logger.Warn("Backups disabled", "error", err)
	}

	return &Updater{
		repository: selfupdate.ParseSlug(opts.Repository),
		source:     up,
		backups:    backups,
		current:    version.Version,
		logger:     logger,
	}, nil
}

// Check queries the latest release without downloading it.
func (u *Updater) Check(ctx context.Context) (Info, error) {
	_, info, err := u.latest(ctx)
	return info, err
}

func (u *Updater) latest(ctx context.Context) (*selfupdate.Release, Info, error) {
	info := Info{CurrentVersion: u.current}

	release, found, err := u.source.DetectLatest(ctx, u.repository)
	if err != nil {
		return nil, info, newError(ErrCodeCheckFailed, "failed to check for updates", err)
	}
	if !found {
		return nil, info, newError(ErrCodeNotFound, "repository not found or has no releases", nil)
	}

	info.LatestVersion = release.Version()
	info.ReleaseNotes = release.ReleaseNotes
	info.ReleaseURL = release.URL
	info.PublishedAt = release.PublishedAt
	info.AssetSize = release.AssetByteSize
	// dev builds are always considered outdated
	info.UpdateAvailable = u.current == "dev" || release.GreaterThan(u.current)
	return release, info, nil
}

// Apply backs up the running binary and replaces it with the latest
// release. A failed replacement restores the backup.
func (u *Updater) Apply(ctx context.Context) (Info, error) {
	release, info, err := u.latest(ctx)
	if err != nil {
		return info, err
	}
	if !info.UpdateAvailable {
		return info, newError(ErrCodeNoUpdate, "already running the latest version "+info.LatestVersion, nil)
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return info, newError(ErrCodeApplyFailed, "failed to get executable path", err)
	}
	if ok, reason := checkWritePermission(filepath.Dir(exe)); !ok {
		return info, newError(ErrCodeDisabled, reason, nil)
	}

	if u.backups != nil {
		if err := u.backups.create(exe, u.current); err != nil {
			return info, newError(ErrCodeBackupFailed, "failed to create backup", err)
		}
	}

	if err := u.source.UpdateTo(ctx, release, exe); err != nil {
		if u.backups != nil {
			if restoreErr := u.backups.restore(); restoreErr != nil {
				u.logger.Error("Failed to restore backup", "error", restoreErr)
			}
		}
		return info, newError(ErrCodeApplyFailed, "failed to apply update", err)
	}

	u.logger.Info("Update applied", "from", u.current, "to", info.LatestVersion)
	return info, nil
}

// Rollback restores the binary saved by the last Apply and returns its
// version.
func (u *Updater) Rollback() (string, error) {
	if u.backups == nil || !u.backups.hasBackup() {
		return "", newError(ErrCodeNoBackup, "no backup available for rollback", nil)
	}
	if err := u.backups.restore(); err != nil {
		return "", newError(ErrCodeRollbackFailed, "failed to restore backup", err)
	}
	return u.backups.backupVersion(), nil
}

// checkWritePermission probes dir with a temporary file.
func checkWritePermission(dir string) (bool, string) {
	tmp := filepath.Join(dir, ".keycolor.update.test")
	f, err := os.Create(tmp)
	if err != nil {
		return false, fmt.Sprintf("no write permission to %s: %v", dir, err)
	}
	f.Close()
	os.Remove(tmp)
	return true, ""
}
