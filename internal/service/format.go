package service

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// FileTypeUnknown is reported for names without an extension.
const FileTypeUnknown = "unknown"

// DetectFileType returns the extension of filename without the dot. The
// extension is lower-cased so "Report.DOCX" and "report.docx" share a type.
func DetectFileType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) <= 1 {
		return FileTypeUnknown
	}
	return ext[1:]
}

// FormatFileSize renders a byte count as megabytes with one decimal, e.g. "2.0 MB".
func FormatFileSize(size int64) string {
	return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
}

// TotalPages is ceil(total/size); zero when size is not positive.
func TotalPages(total, size int) int {
	if size < 1 || total <= 0 {
		return 0
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// PageOffset is the index of the first item of page. Pages whose offset
// does not fit in an int start at math.MaxInt, past any collection.
func PageOffset(page, size int) int {
	if page < 1 || size < 1 {
		return 0
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}
