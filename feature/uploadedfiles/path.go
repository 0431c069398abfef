package uploadedfiles

import (
	"fmt"
	"path"
	"strings"

	"upload-manager/core/validation"

	"github.com/google/uuid"
)

const (
	// MaxNameLength is the longest object key a record can hold.
	MaxNameLength = 512

	suffixLength = 7
)

// UploadPrefix returns the key prefix every file of username lives under.
func UploadPrefix(username string) string {
	return username + "/uploads/"
}

// ValidateUploadPath trims surrounding spaces from p and checks it names a file under
// the user's upload prefix. It returns the key to store the file under.
func ValidateUploadPath(username, p string) (string, error) {
	p = strings.Trim(p, " ")
	prefix := UploadPrefix(username)

	if !strings.HasPrefix(p, prefix) {
		return "", validation.Field("upload_path", fmt.Sprintf("File path must start with '%s'.", prefix))
	}
	if p == prefix || strings.HasSuffix(p, "/") || path.Clean(p) != p {
		return "", validation.Field("upload_path", "File path must name a file.")
	}
	if len(p) > MaxNameLength {
		return "", validation.Field("upload_path", fmt.Sprintf("Ensure this path has no more than %d characters.", MaxNameLength))
	}
	return p, nil
}

// AlternativeName derives a sibling key for name by inserting an underscore and a
// random suffix before the extension, e.g. a/b/report_3f9c2a1.txt. The stem is cut
// when the result would exceed MaxNameLength.
func AlternativeName(name string) (string, error) {
	dir, file := path.Split(name)
	ext := path.Ext(file)
	root := strings.TrimSuffix(file, ext)
	suffix := "_" + randomSuffix()

	if over := len(dir) + len(root) + len(suffix) + len(ext) - MaxNameLength; over > 0 {
		if over >= len(root) {
			return "", fmt.Errorf("no room for an alternative name of %q", name)
		}
		root = root[:len(root)-over]
	}
	return dir + root + suffix + ext, nil
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]
}
