package store

import (
	"regexp"
	"strings"
)

var htmlExt = regexp.MustCompile(`(?i)\.html?$`)

// PracticeDir is the directory that holds task sets next to lesson pages.
const PracticeDir = "practice"

// PracticePath maps a lesson page path to its task-set path: the final
// segment's .html/.htm extension becomes .json and a practice directory is
// inserted before it. A final segment that is not an HTML file maps to
// practice/index.json.
func PracticePath(pagePath string) string {
	dir, file := "", pagePath
	if i := strings.LastIndex(pagePath, "/"); i >= 0 {
		dir, file = pagePath[:i+1], pagePath[i+1:]
	}
	if file == "" || !htmlExt.MatchString(file) {
		file = "index.html"
	}
	return dir + PracticeDir + "/" + htmlExt.ReplaceAllString(file, ".json")
}
