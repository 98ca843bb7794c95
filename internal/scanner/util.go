// SPDX-License-Identifier: MPL-2.0

package scanner

import (
	"errors"
	"os"
)

var errEscapesRoot = errors.New("resolved path escapes the scan root")

func isNotExist(err error) bool {
	return os.IsNotExist(err)
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}
