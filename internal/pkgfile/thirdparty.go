// SPDX-License-Identifier: MPL-2.0

package pkgfile

import (
	"os"
	"path/filepath"

	"buildforge/internal/errs"

	"github.com/pelletier/go-toml/v2"
)

// ThirdPartyLockFileName is the name of the exact-version lockfile written
// alongside package.cue, recording the result of a package's Npm.depends()
// call.
const ThirdPartyLockFileName = "thirdparty.lock.toml"

// ThirdPartyLock is the decoded contents of thirdparty.lock.toml: an exact
// name -> version map, identical in spirit to the depends() map it mirrors.
type ThirdPartyLock struct {
	Entries map[string]string `toml:"entries"`
}

// NewThirdPartyLock builds a lock from a package's validated Depends map.
func NewThirdPartyLock(depends map[string]string) *ThirdPartyLock {
	entries := make(map[string]string, len(depends))
	for k, v := range depends {
		entries[k] = v
	}
	return &ThirdPartyLock{Entries: entries}
}

// LoadThirdPartyLock reads path, returning an empty lock (not an error) if
// the file does not exist yet.
func LoadThirdPartyLock(path string) (*ThirdPartyLock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ThirdPartyLock{Entries: map[string]string{}}, nil
		}
		return nil, errs.NewIOError("read third-party lockfile", path, err)
	}

	var lock ThirdPartyLock
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, errs.NewConfigurationError("parse third-party lockfile", path, err)
	}
	if lock.Entries == nil {
		lock.Entries = map[string]string{}
	}
	return &lock, nil
}

// Save writes the lockfile atomically (temp file + rename), matching the
// write discipline the bundle writer uses for its own output.
func (l *ThirdPartyLock) Save(path string) error {
	data, err := toml.Marshal(l)
	if err != nil {
		return errs.NewIOError("encode third-party lockfile", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.NewIOError("create lockfile directory", filepath.Dir(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.NewIOError("write third-party lockfile", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errs.NewIOError("rename third-party lockfile", path, err)
	}
	return nil
}
