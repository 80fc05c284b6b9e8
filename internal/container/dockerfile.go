package container

import (
	"fmt"
	"os"
	"path/filepath"

	"gibdrop/internal/config"
)

// Dockerfile renders the image definition: the miner's upstream image with the
// patched entry script as entrypoint. The script itself is bind mounted at run
// time, only its name is baked in.
func Dockerfile(cfg config.Config) string {
	c := cfg.Container
	return fmt.Sprintf(`FROM %s

WORKDIR %s

COPY %s /tmp/gibdrop-requirements.txt
RUN pip install --no-cache-dir -r /tmp/gibdrop-requirements.txt

ENTRYPOINT ["python", %q]
`, c.BaseImage, c.AppDir, filepath.ToSlash(c.Requirements), filepath.Base(cfg.Patch.EntryScript))
}

// EnsureDockerfile writes the Dockerfile and an empty requirements file if they
// are missing, it returns true if the Dockerfile was created.
func (m *Manager) EnsureDockerfile() (bool, error) {
	requirements := m.cfg.Path(m.cfg.Container.Requirements)
	if _, err := os.Stat(requirements); os.IsNotExist(err) {
		err = os.WriteFile(requirements, nil, 0644)
		if err != nil {
			return false, err
		}
		m.tel.ReportDebug("created requirements file", requirements)
	}

	path := m.cfg.Path(m.cfg.Container.Dockerfile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	err := os.WriteFile(path, []byte(Dockerfile(m.cfg)), 0644)
	if err != nil {
		return false, err
	}
	m.tel.ReportDebug("created dockerfile", path)
	return true, nil
}
