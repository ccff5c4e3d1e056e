package model

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
)

const (
	// ManifestFileName is the fixed manifest location at the top of every root
	ManifestFileName = "manifest.json"

	// DataDir is the fixed subdirectory holding tracked content under every root
	DataDir = "data"

	// LockFileName is the root-local advisory lock marker
	LockFileName = ".parkeep.lock"

	// ParityExt is the extension of parity artifacts produced by the external tool
	ParityExt = ".par2"
)

// parity volume artifacts look like name.vol000+01.par2, the index artifact is name.par2
var parityRe = regexp.MustCompile(`^(.*?)(?:\.vol\d+\+\d+)?\.par2$`)

// GetManifestPath returns the root-relative key of the manifest document
func GetManifestPath() string {
	return ManifestFileName
}

// GetLockPath returns the root-relative key of the advisory lock marker
func GetLockPath() string {
	return LockFileName
}

// GetParityPath returns the root-relative key of the main parity artifact for a tracked path
func GetParityPath(trackedPath string) string {
	return trackedPath + ParityExt
}

// IsParityPath indicates whether a root-relative key names a parity artifact
func IsParityPath(p string) bool {
	return strings.HasSuffix(p, ParityExt)
}

// ParityBasePath maps a parity artifact key to the tracked path it protects
func ParityBasePath(p string) (string, bool) {
	dir, name := path.Split(p)
	m := parityRe.FindStringSubmatch(name)
	if m == nil || m[1] == "" {
		return "", false
	}
	return dir + m[1], true
}

// InDataDir indicates whether a clean root-relative path lies under the data directory
func InDataDir(p string) bool {
	return strings.HasPrefix(p, DataDir+"/")
}

// GetLabel returns the label of the index-th root of a backup set (1-based, invocation order at init)
func GetLabel(baseName string, index int) string {
	return fmt.Sprintf("%s_%d", baseName, index)
}

// LabelIndex extracts the root index from a label, given the base name of the set
func LabelIndex(baseName, label string) (int, bool) {
	suffix, found := strings.CutPrefix(label, baseName+"_")
	if !found {
		return 0, false
	}
	idx, err := strconv.Atoi(suffix)
	if err != nil || idx < 1 {
		return 0, false
	}
	return idx, true
}
