package blob

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ImageRules constrains uploaded images.
type ImageRules struct {
	MaxBytes   int64
	Extensions []string
	MIMETypes  []string
}

// ProfileImageRules accepts jpg, jpeg and png up to 2048 KiB.
var ProfileImageRules = ImageRules{
	MaxBytes:   2048 * 1024,
	Extensions: []string{"jpg", "jpeg", "png"},
	MIMETypes:  []string{"image/jpeg", "image/png"},
}

// CheckImage returns the normalised extension for a valid image, or the
// list of rule violations.
func (r ImageRules) CheckImage(filename string, data []byte) (string, []string) {
	var problems []string

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !contains(r.Extensions, ext) {
		problems = append(problems, "profile_img must be a file of type: "+strings.Join(r.Extensions, ", "))
	}

	mtype := mimetype.Detect(data)
	if !contains(r.MIMETypes, mtype.String()) {
		problems = append(problems, "profile_img must be an image")
	}

	if r.MaxBytes > 0 && int64(len(data)) > r.MaxBytes {
		problems = append(problems, fmt.Sprintf("profile_img must not be greater than %d kilobytes", r.MaxBytes/1024))
	}

	return ext, problems
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
