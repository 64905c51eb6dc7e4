package deps

import (
	"fmt"
	"os"
	"strings"

	"ankisync/internal/config"
)

// Requirements lists the external binaries the configured toolchain needs.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "espeak",
			Command:     cfg.Espeak.Binary,
			Description: "Produces IPA transcriptions",
		},
	}
}

// CheckEspeakData reports whether the configured voice data directory is
// usable. An empty directory means espeak falls back to its compiled-in
// default, which always counts as available.
func CheckEspeakData(dataDir string) Status {
	status := Status{
		Name:        "espeak voice data",
		Description: "Voice data directory (ESPEAK_DATA_PATH)",
		Optional:    true,
	}

	dir := strings.TrimSpace(dataDir)
	if dir == "" {
		status.Available = true
		status.Detail = "using espeak's default voice data"
		return status
	}

	status.Command = dir
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		status.Detail = fmt.Sprintf("directory %q not accessible: %v", dir, err)
	case !info.IsDir():
		status.Detail = fmt.Sprintf("%q is not a directory", dir)
	default:
		status.Available = true
	}
	return status
}
