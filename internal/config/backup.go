package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MaxBackups is the number of user config backups kept.
	MaxBackups = 3

	// BackupSuffix separates the config name from the backup timestamp.
	BackupSuffix = ".bak"

	backupStamp = "20060102-150405.000"
)

// BackupUserConfig copies the user config to <config>.bak.<timestamp> and
// prunes older backups. It returns "" when there is no user config.
func BackupUserConfig() (string, error) {
	src := GetUserConfigPath()
	if !fileExists(src) {
		return "", nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read config for backup: %w", err)
	}

	dst := src + BackupSuffix + "." + time.Now().Format(backupStamp)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	pruneBackups()
	return dst, nil
}

// ListUserConfigBackups returns the user config backups, newest first.
func ListUserConfigBackups() ([]string, error) {
	src := GetUserConfigPath()
	dir := filepath.Dir(src)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list config directory: %w", err)
	}

	prefix := filepath.Base(src) + BackupSuffix + "."
	var backups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			backups = append(backups, filepath.Join(dir, e.Name()))
		}
	}

	// Timestamps sort lexically.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// pruneBackups keeps the newest MaxBackups backups. Failures are ignored.
func pruneBackups() {
	backups, err := ListUserConfigBackups()
	if err != nil || len(backups) <= MaxBackups {
		return
	}
	for _, old := range backups[MaxBackups:] {
		_ = os.Remove(old)
	}
}

// RestoreUserConfig replaces the user config with backupPath. An empty
// backupPath restores the newest backup. The current config is backed up
// first.
func RestoreUserConfig(backupPath string) (string, error) {
	if backupPath == "" {
		backups, err := ListUserConfigBackups()
		if err != nil {
			return "", err
		}
		if len(backups) == 0 {
			return "", fmt.Errorf("no backups found in %s", GetUserConfigDir())
		}
		backupPath = backups[0]
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to read backup: %w", err)
	}

	if _, err := BackupUserConfig(); err != nil {
		return "", fmt.Errorf("failed to backup current config before restore: %w", err)
	}

	if err := os.MkdirAll(GetUserConfigDir(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(GetUserConfigPath(), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write restored config: %w", err)
	}
	return backupPath, nil
}
