package tool

import "runtime"

// BinaryExt returns the platform executable extension. Injectable call
// sites keep this overridable for cross-targeted builds.
func BinaryExt() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}

	return ""
}
