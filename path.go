package beastwords

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/n2code/beastwords/internal"
)

const dot string = "."
const dirSeparator = string(filepath.Separator)
const dotDirSeparator = dot + dirSeparator
const doubleDot = dot + dot
const doubleDotDirSeparator = doubleDot + dirSeparator

func isChildOf(child string, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	internal.AssertNoError(err, "paths should both be absolute")
	return !(rel == dot || rel == doubleDot || strings.HasPrefix(rel, doubleDotDirSeparator))
}

// pleasantPath turns an absolute path into something easily understandable from the working directory.
// Paths below the working directory are emitted relative with a leading "./" to stress relativity,
// all other paths are reflected unchanged.
func pleasantPath(absolute string, wd string) string {
	if !isChildOf(absolute, wd) {
		return absolute
	}
	relative, _ := filepath.Rel(wd, absolute) //error impossible because both are rooted
	return dotDirSeparator + relative
}

func displayablePath(path string) string {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return absolute
	}
	return pleasantPath(filepath.Clean(absolute), wd)
}

// sameFile reports whether both paths exist and denote the same file.
func sameFile(a string, b string) bool {
	statA, errA := os.Stat(a)
	statB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(statA, statB)
}
